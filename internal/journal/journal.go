// Package journal implements a hash-chained audit log of every accepted ledger
// mutation, across the card, grading and ownership components.
//
// The chain begins with a well-known genesis entry whose Hash equals GenesisHash
// (64 hex zeros). Every subsequent entry records the SHA-256 of its predecessor,
// making any tampering detectable via Verify.
//
// Two implementations of the Journal interface are provided:
//   - MemoryJournal: in-process, for testing and development.
//   - PostgresJournal: durable, for production use.
package journal

import (
	"context"
	"errors"
	"fmt"
)

// ErrEntryNotFound is returned by Get for an index past the chain tip.
var ErrEntryNotFound = errors.New("journal entry not found")

// Actions recorded in the journal.
const (
	ActionGenesis              = "genesis"
	ActionCardRegistered       = "card.registered"
	ActionCardGraded           = "card.graded"
	ActionGraderAdded          = "grader.added"
	ActionGraderRemoved        = "grader.removed"
	ActionAdminTransferred     = "admin.transferred"
	ActionOwnershipRegistered  = "ownership.registered"
	ActionOwnershipTransferred = "ownership.transferred"
)

// Record describes a mutation to append.
type Record struct {
	Component string // cards, grading, ownership
	Action    string
	Actor     string // the calling principal
	Subject   string // e.g. "card:7" or "grader:SP1..."
	Height    uint64 // clock reading, 0 when the mutation is not timestamped
	Payload   any    // JSON-marshalled; only its hash is kept
}

// Query limits.
const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Filter selects entries for Query. Empty string fields match anything.
type Filter struct {
	Component string
	Action    string
	Actor     string
	Subject   string
	After     int // only entries with Index > After; 0 skips the genesis entry
	Limit     int // 0 means DefaultLimit; capped at MaxLimit
}

func (f Filter) limit() int {
	switch {
	case f.Limit <= 0:
		return DefaultLimit
	case f.Limit > MaxLimit:
		return MaxLimit
	}
	return f.Limit
}

func (f Filter) matches(e *Entry) bool {
	return e.Index > f.After &&
		(f.Component == "" || e.Component == f.Component) &&
		(f.Action == "" || e.Action == f.Action) &&
		(f.Actor == "" || e.Actor == f.Actor) &&
		(f.Subject == "" || e.Subject == f.Subject)
}

// CardSubject is the subject recorded for mutations of a single card.
func CardSubject(id uint64) string {
	return fmt.Sprintf("card:%d", id)
}

// Journal is the interface for the append-only audit chain.
type Journal interface {
	// Append adds a new entry chained to the previous one.
	Append(ctx context.Context, rec Record) (*Entry, error)

	// Get returns the entry at the given zero-based index.
	Get(ctx context.Context, index int) (*Entry, error)

	// Len returns the total number of entries (including the genesis entry).
	Len(ctx context.Context) (int, error)

	// Verify walks the entire chain and checks hash consistency.
	// Returns nil if the chain is intact.
	Verify(ctx context.Context) error

	// Root returns the hash of the most recent entry (the chain tip).
	Root(ctx context.Context) (string, error)

	// Query returns entries matching f in index order.
	Query(ctx context.Context, f Filter) ([]*Entry, error)

	// Counts returns the number of recorded mutations per component. The
	// genesis entry is not counted.
	Counts(ctx context.Context) (map[string]int, error)
}
