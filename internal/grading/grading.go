// Package grading implements the grading registry: an admin-managed allowlist
// of graders, and at most one immutable grading record per card id.
//
// Card ids are taken as given; the registry does not check them against the
// card registry.
package grading

import (
	"context"

	"github.com/jmerrifield20/cardledger/internal/errcode"
	"github.com/jmerrifield20/cardledger/internal/principal"
)

// Error codes for the grading registry.
var (
	ErrNotAuthorized     = errcode.New(100, errcode.KindNotAuthorized, "caller is not the grading registry admin")
	ErrAlreadyGraded     = errcode.New(101, errcode.KindAlreadyGraded, "card already graded")
	ErrNotVerifiedGrader = errcode.New(102, errcode.KindNotVerifiedGrader, "caller is not a verified grader")
)

// Record is the grading certificate for one card.
type Record struct {
	CardID      uint64              `json:"card_id"`
	Grade       uint32              `json:"grade"`
	Grader      principal.Principal `json:"grader"`
	GradingDate uint64              `json:"grading_date"`
	Notes       string              `json:"notes"`
}

// Registry is the grading registry contract.
type Registry interface {
	// AddGrader puts grader on the allowlist. Adding a present grader is a no-op.
	AddGrader(ctx context.Context, caller, grader principal.Principal) error

	// RemoveGrader takes grader off the allowlist. Removing an absent grader is a no-op.
	RemoveGrader(ctx context.Context, caller, grader principal.Principal) error

	// IsVerifiedGrader reports allowlist membership.
	IsVerifiedGrader(ctx context.Context, grader principal.Principal) (bool, error)

	// Graders lists the allowlist in ascending order.
	Graders(ctx context.Context) ([]principal.Principal, error)

	// GradeCard records caller's grade for cardID, stamped with now.
	// The allowlist check happens before the duplicate check.
	GradeCard(ctx context.Context, caller principal.Principal, cardID uint64, grade uint32, notes string, now uint64) error

	// GetGrading returns the grading record for cardID. ok is false if ungraded.
	GetGrading(ctx context.Context, cardID uint64) (rec Record, ok bool, err error)

	// TransferAdmin hands the registry admin role from caller to newAdmin.
	TransferAdmin(ctx context.Context, caller, newAdmin principal.Principal) error

	// Admin returns the current registry admin.
	Admin(ctx context.Context) (principal.Principal, error)
}
