package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ── Cards ───────────────────────────────────────────────────────────────

// RegisterCard registers a new card and returns its id. Any principal may
// register cards; the ledger records the caller as the registrant.
func (c *Client) RegisterCard(ctx context.Context, in CardInput) (uint64, error) {
	var resp struct {
		ID uint64 `json:"id"`
	}
	if err := c.call(ctx, http.MethodPost, "/api/v1/cards", in, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

// GetCard fetches a card by id.
func (c *Client) GetCard(ctx context.Context, id uint64) (*Card, bool, error) {
	var card Card
	found, err := c.lookup(ctx, fmt.Sprintf("/api/v1/cards/%d", id), &card)
	if !found || err != nil {
		return nil, false, err
	}
	return &card, true, nil
}

// CardAdmin returns the card registry admin.
func (c *Client) CardAdmin(ctx context.Context) (string, error) {
	return c.admin(ctx, "cards")
}

// TransferCardAdmin hands the card registry admin role to newAdmin.
func (c *Client) TransferCardAdmin(ctx context.Context, newAdmin string) error {
	return c.transferAdmin(ctx, "cards", newAdmin)
}

// ── Grading ─────────────────────────────────────────────────────────────

// AddGrader marks grader as verified. The caller must be the grading admin.
func (c *Client) AddGrader(ctx context.Context, grader string) error {
	return c.call(ctx, http.MethodPost, "/api/v1/grading/graders", map[string]string{"grader": grader}, nil)
}

// RemoveGrader revokes grader's verification.
func (c *Client) RemoveGrader(ctx context.Context, grader string) error {
	return c.call(ctx, http.MethodDelete, "/api/v1/grading/graders/"+url.PathEscape(grader), nil, nil)
}

// IsVerifiedGrader reports whether grader is currently verified.
func (c *Client) IsVerifiedGrader(ctx context.Context, grader string) (bool, error) {
	var resp struct {
		Verified bool `json:"verified"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/grading/graders/"+url.PathEscape(grader), nil, &resp); err != nil {
		return false, err
	}
	return resp.Verified, nil
}

// Graders lists the verified graders.
func (c *Client) Graders(ctx context.Context) ([]string, error) {
	var resp struct {
		Graders []string `json:"graders"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/grading/graders", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Graders, nil
}

// GradeCard records a grade for cardID and returns the grading date the
// ledger stamped. The caller must be a verified grader.
func (c *Client) GradeCard(ctx context.Context, cardID uint64, grade uint32, notes string) (uint64, error) {
	req := struct {
		Grade uint32 `json:"grade"`
		Notes string `json:"notes"`
	}{grade, notes}
	var resp struct {
		GradingDate uint64 `json:"grading_date"`
	}
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/api/v1/grading/cards/%d", cardID), req, &resp); err != nil {
		return 0, err
	}
	return resp.GradingDate, nil
}

// GetGrading fetches the grade recorded for cardID.
func (c *Client) GetGrading(ctx context.Context, cardID uint64) (*GradingRecord, bool, error) {
	var rec GradingRecord
	found, err := c.lookup(ctx, fmt.Sprintf("/api/v1/grading/cards/%d", cardID), &rec)
	if !found || err != nil {
		return nil, false, err
	}
	return &rec, true, nil
}

// GradingAdmin returns the grading registry admin.
func (c *Client) GradingAdmin(ctx context.Context) (string, error) {
	return c.admin(ctx, "grading")
}

// TransferGradingAdmin hands the grading registry admin role to newAdmin.
func (c *Client) TransferGradingAdmin(ctx context.Context, newAdmin string) error {
	return c.transferAdmin(ctx, "grading", newAdmin)
}

// ── Ownership ───────────────────────────────────────────────────────────

// RegisterOwnership records the caller as the first owner of cardID.
func (c *Client) RegisterOwnership(ctx context.Context, cardID uint64) error {
	return c.call(ctx, http.MethodPost, fmt.Sprintf("/api/v1/ownership/cards/%d", cardID), nil, nil)
}

// TransferOwnership moves cardID from the caller to newOwner and returns the
// transfer date the ledger stamped.
func (c *Client) TransferOwnership(ctx context.Context, cardID uint64, newOwner string) (uint64, error) {
	var resp struct {
		TransferDate uint64 `json:"transfer_date"`
	}
	err := c.call(ctx, http.MethodPost, fmt.Sprintf("/api/v1/ownership/cards/%d/transfer", cardID),
		map[string]string{"new_owner": newOwner}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.TransferDate, nil
}

// Owner fetches the current owner of cardID.
func (c *Client) Owner(ctx context.Context, cardID uint64) (*OwnerRecord, bool, error) {
	var rec OwnerRecord
	found, err := c.lookup(ctx, fmt.Sprintf("/api/v1/ownership/cards/%d", cardID), &rec)
	if !found || err != nil {
		return nil, false, err
	}
	return &rec, true, nil
}

// History fetches every transfer of cardID, oldest first.
func (c *Client) History(ctx context.Context, cardID uint64) (*History, error) {
	var h History
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/v1/ownership/cards/%d/history", cardID), nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// HistoryEntry fetches transfer index of cardID.
func (c *Client) HistoryEntry(ctx context.Context, cardID, index uint64) (*HistoryEntry, bool, error) {
	var e HistoryEntry
	found, err := c.lookup(ctx, fmt.Sprintf("/api/v1/ownership/cards/%d/history/%d", cardID, index), &e)
	if !found || err != nil {
		return nil, false, err
	}
	return &e, true, nil
}

// ── Journal ─────────────────────────────────────────────────────────────

// Journal returns the audit journal length and root hash.
func (c *Client) Journal(ctx context.Context) (*JournalOverview, error) {
	var o JournalOverview
	if err := c.call(ctx, http.MethodGet, "/api/v1/journal", nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// VerifyJournal asks the ledger to walk the audit chain. A nil error means
// the chain is intact.
func (c *Client) VerifyJournal(ctx context.Context) error {
	var resp struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/journal/verify", nil, &resp); err != nil {
		return err
	}
	if !resp.Valid {
		return errors.New("journal integrity check failed: " + resp.Error)
	}
	return nil
}

// JournalEntry fetches the journal entry at idx.
func (c *Client) JournalEntry(ctx context.Context, idx int) (*JournalEntry, bool, error) {
	var e JournalEntry
	found, err := c.lookup(ctx, fmt.Sprintf("/api/v1/journal/entries/%d", idx), &e)
	if !found || err != nil {
		return nil, false, err
	}
	return &e, true, nil
}

// JournalEntries lists journal entries matching f, oldest first.
func (c *Client) JournalEntries(ctx context.Context, f JournalFilter) (*JournalPage, error) {
	q := url.Values{}
	for k, v := range map[string]string{
		"component": f.Component,
		"action":    f.Action,
		"actor":     f.Actor,
		"subject":   f.Subject,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	if f.After > 0 {
		q.Set("after", strconv.Itoa(f.After))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	path := "/api/v1/journal/entries"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var page JournalPage
	if err := c.call(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CardTrail returns every journal entry recorded for cardID: its
// registration, grading and ownership changes.
func (c *Client) CardTrail(ctx context.Context, cardID uint64) (*JournalPage, error) {
	var page JournalPage
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/v1/journal/cards/%d", cardID), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) admin(ctx context.Context, component string) (string, error) {
	var resp struct {
		Admin string `json:"admin"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/admin/"+component, nil, &resp); err != nil {
		return "", err
	}
	return resp.Admin, nil
}

func (c *Client) transferAdmin(ctx context.Context, component, newAdmin string) error {
	return c.call(ctx, http.MethodPost, "/api/v1/admin/"+component+"/transfer",
		map[string]string{"new_admin": newAdmin}, nil)
}
