// Package events publishes accepted ledger mutations to downstream consumers.
// Publishing happens after the mutation has been applied and never changes
// its outcome.
package events

import (
	"context"
	"time"
)

// Event types. They match the journal action names.
const (
	TypeCardRegistered       = "card.registered"
	TypeCardGraded           = "card.graded"
	TypeGraderAdded          = "grader.added"
	TypeGraderRemoved        = "grader.removed"
	TypeAdminTransferred     = "admin.transferred"
	TypeOwnershipRegistered  = "ownership.registered"
	TypeOwnershipTransferred = "ownership.transferred"
)

// Event is a single published mutation.
type Event struct {
	Type       string    `json:"type"`
	Component  string    `json:"component"`
	Actor      string    `json:"actor"`
	Subject    string    `json:"subject"`
	Height     uint64    `json:"height,omitempty"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}
