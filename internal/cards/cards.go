// Package cards implements the card registry: it issues sequential card
// identifiers and stores each card's static attributes exactly once.
//
// Two implementations of the Registry interface are provided:
//   - MemoryRegistry: in-process, for tests and single-process deployments.
//   - PostgresRegistry: durable, for production use.
package cards

import (
	"context"

	"github.com/jmerrifield20/cardledger/internal/errcode"
	"github.com/jmerrifield20/cardledger/internal/principal"
)

// Error codes for the card registry.
var (
	ErrNotAuthorized = errcode.New(100, errcode.KindNotAuthorized, "caller is not the card registry admin")
	ErrCardExists    = errcode.New(101, errcode.KindExists, "card already exists")
)

// Card is a registered card. All fields are immutable once issued.
type Card struct {
	ID           uint64              `json:"id"`
	Name         string              `json:"name"`
	Series       string              `json:"series"`
	Manufacturer string              `json:"manufacturer"`
	Rarity       string              `json:"rarity"`
	IssueDate    uint64              `json:"issue_date"`
	RegisteredBy principal.Principal `json:"registered_by"`
}

// CardInput holds the descriptive attributes supplied at registration.
// Content is not deduplicated: two identical inputs yield two cards.
type CardInput struct {
	Name         string `json:"name"`
	Series       string `json:"series"`
	Manufacturer string `json:"manufacturer"`
	Rarity       string `json:"rarity"`
	IssueDate    uint64 `json:"issue_date"`
}

// Registry is the card registry contract.
type Registry interface {
	// Register stores a new card and returns its identifier. The nth
	// successful registration receives identifier n.
	Register(ctx context.Context, caller principal.Principal, in CardInput) (uint64, error)

	// Get returns the card with the given id. ok is false for unknown ids.
	Get(ctx context.Context, id uint64) (card Card, ok bool, err error)

	// TransferAdmin hands the registry admin role from caller to newAdmin.
	TransferAdmin(ctx context.Context, caller, newAdmin principal.Principal) error

	// Admin returns the current registry admin.
	Admin(ctx context.Context) (principal.Principal, error)
}
