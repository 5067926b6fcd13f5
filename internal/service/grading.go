package service

import (
	"context"

	"github.com/jmerrifield20/cardledger/internal/events"
	"github.com/jmerrifield20/cardledger/internal/grading"
	"github.com/jmerrifield20/cardledger/internal/journal"
	"github.com/jmerrifield20/cardledger/internal/principal"
)

// AddGrader puts grader on the allowlist.
func (s *LedgerService) AddGrader(ctx context.Context, caller, grader principal.Principal) error {
	err := s.grading.AddGrader(ctx, caller, grader)
	return s.finish(ctx, mutation{
		component: ComponentGrading,
		operation: "add_grader",
		action:    journal.ActionGraderAdded,
		event:     events.TypeGraderAdded,
		actor:     caller,
		subject:   graderSubject(grader),
	}, err)
}

// RemoveGrader takes grader off the allowlist.
func (s *LedgerService) RemoveGrader(ctx context.Context, caller, grader principal.Principal) error {
	err := s.grading.RemoveGrader(ctx, caller, grader)
	return s.finish(ctx, mutation{
		component: ComponentGrading,
		operation: "remove_grader",
		action:    journal.ActionGraderRemoved,
		event:     events.TypeGraderRemoved,
		actor:     caller,
		subject:   graderSubject(grader),
	}, err)
}

// IsVerifiedGrader reports allowlist membership.
func (s *LedgerService) IsVerifiedGrader(ctx context.Context, grader principal.Principal) (bool, error) {
	return s.grading.IsVerifiedGrader(ctx, grader)
}

// Graders lists the allowlist.
func (s *LedgerService) Graders(ctx context.Context) ([]principal.Principal, error) {
	return s.grading.Graders(ctx)
}

// GradeCard records caller's grade for cardID stamped with the clock, and
// returns the stamp. A rejected grading does not consume a height.
func (s *LedgerService) GradeCard(ctx context.Context, caller principal.Principal, cardID uint64, grade uint32, notes string) (uint64, error) {
	now, err := s.clock.Stamp(func(now uint64) error {
		return s.grading.GradeCard(ctx, caller, cardID, grade, notes, now)
	})
	return now, s.finish(ctx, mutation{
		component: ComponentGrading,
		operation: "grade_card",
		action:    journal.ActionCardGraded,
		event:     events.TypeCardGraded,
		actor:     caller,
		subject:   journal.CardSubject(cardID),
		height:    now,
		payload:   map[string]any{"grade": grade, "notes": notes},
	}, err)
}

// GetGrading returns the grading record for cardID.
func (s *LedgerService) GetGrading(ctx context.Context, cardID uint64) (grading.Record, bool, error) {
	return s.grading.GetGrading(ctx, cardID)
}

// TransferGradingAdmin hands the grading registry admin role to newAdmin.
func (s *LedgerService) TransferGradingAdmin(ctx context.Context, caller, newAdmin principal.Principal) error {
	err := s.grading.TransferAdmin(ctx, caller, newAdmin)
	return s.finish(ctx, mutation{
		component: ComponentGrading,
		operation: "transfer_admin",
		action:    journal.ActionAdminTransferred,
		event:     events.TypeAdminTransferred,
		actor:     caller,
		subject:   "admin:" + ComponentGrading,
		payload:   map[string]string{"new_admin": string(newAdmin)},
	}, err)
}

// GradingAdmin returns the grading registry admin.
func (s *LedgerService) GradingAdmin(ctx context.Context) (principal.Principal, error) {
	return s.grading.Admin(ctx)
}
