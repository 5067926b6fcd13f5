package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/cardledger/internal/journal"
	"go.uber.org/zap"
)

// JournalHandler serves the audit journal: chain status, filtered listings
// and the audit trail of a single card across all three components.
type JournalHandler struct {
	journal journal.Journal
	logger  *zap.Logger
}

// NewJournalHandler creates a new JournalHandler.
func NewJournalHandler(j journal.Journal, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{journal: j, logger: logger}
}

// Register mounts the journal routes on the given router group.
func (h *JournalHandler) Register(rg *gin.RouterGroup) {
	j := rg.Group("/journal")
	{
		j.GET("", h.Status)
		j.GET("/verify", h.Verify)
		j.GET("/entries", h.ListEntries)
		j.GET("/entries/:idx", h.GetEntry)
		j.GET("/cards/:id", h.CardTrail)
	}
}

type journalStatus struct {
	Entries    int            `json:"entries"`
	Root       string         `json:"root"`
	Components map[string]int `json:"components"`
}

// Status handles GET /journal. Components counts recorded mutations per
// ledger component.
func (h *JournalHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()

	n, err := h.journal.Len(ctx)
	if err != nil {
		respondError(c, h.logger, "journal length", err)
		return
	}
	root, err := h.journal.Root(ctx)
	if err != nil {
		respondError(c, h.logger, "journal root", err)
		return
	}
	counts, err := h.journal.Counts(ctx)
	if err != nil {
		respondError(c, h.logger, "journal counts", err)
		return
	}
	c.JSON(http.StatusOK, journalStatus{Entries: n, Root: root, Components: counts})
}

type verifyResponse struct {
	Valid bool   `json:"valid"`
	Root  string `json:"root,omitempty"`
	Error string `json:"error,omitempty"`
}

// Verify handles GET /journal/verify. A broken chain is a result, not a
// request failure, so it is reported with 200 and valid=false.
func (h *JournalHandler) Verify(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.journal.Verify(ctx); err != nil {
		h.logger.Warn("journal chain broken", zap.Error(err))
		c.JSON(http.StatusOK, verifyResponse{Error: err.Error()})
		return
	}
	root, err := h.journal.Root(ctx)
	if err != nil {
		respondError(c, h.logger, "journal root", err)
		return
	}
	c.JSON(http.StatusOK, verifyResponse{Valid: true, Root: root})
}

type entriesResponse struct {
	Entries []*journal.Entry `json:"entries"`
	Count   int              `json:"count"`
	// NextAfter is the "after" value for the next page, omitted on the last page.
	NextAfter int `json:"next_after,omitempty"`
}

// ListEntries handles GET /journal/entries with optional component, action,
// actor, subject, after and limit query parameters.
func (h *JournalHandler) ListEntries(c *gin.Context) {
	f := journal.Filter{
		Component: c.Query("component"),
		Action:    c.Query("action"),
		Actor:     c.Query("actor"),
		Subject:   c.Query("subject"),
	}
	var ok bool
	if f.After, ok = intQuery(c, "after"); !ok {
		return
	}
	if f.Limit, ok = intQuery(c, "limit"); !ok {
		return
	}
	h.respondEntries(c, f)
}

// CardTrail handles GET /journal/cards/:id: every recorded registration,
// grading and ownership change of one card, oldest first.
func (h *JournalHandler) CardTrail(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	after, ok := intQuery(c, "after")
	if !ok {
		return
	}
	h.respondEntries(c, journal.Filter{Subject: journal.CardSubject(id), After: after, Limit: journal.MaxLimit})
}

func (h *JournalHandler) respondEntries(c *gin.Context, f journal.Filter) {
	entries, err := h.journal.Query(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.logger, "journal query", err)
		return
	}
	resp := entriesResponse{Entries: entries, Count: len(entries)}
	limit := f.Limit
	if limit <= 0 {
		limit = journal.DefaultLimit
	}
	if len(entries) > 0 && len(entries) >= min(limit, journal.MaxLimit) {
		resp.NextAfter = entries[len(entries)-1].Index
	}
	c.JSON(http.StatusOK, resp)
}

// GetEntry handles GET /journal/entries/:idx.
func (h *JournalHandler) GetEntry(c *gin.Context) {
	idx, ok := uintParam(c, "idx")
	if !ok {
		return
	}
	entry, err := h.journal.Get(c.Request.Context(), int(idx))
	if errors.Is(err, journal.ErrEntryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "journal entry not found"})
		return
	}
	if err != nil {
		respondError(c, h.logger, "journal entry", err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// intQuery parses an optional non-negative integer query parameter, writing
// 400 on failure. A missing parameter reads as 0.
func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a non-negative integer"})
		return 0, false
	}
	return v, true
}
