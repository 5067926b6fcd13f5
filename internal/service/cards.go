package service

import (
	"context"

	"github.com/jmerrifield20/cardledger/internal/cards"
	"github.com/jmerrifield20/cardledger/internal/events"
	"github.com/jmerrifield20/cardledger/internal/journal"
	"github.com/jmerrifield20/cardledger/internal/principal"
)

// RegisterCard registers a new card and returns its id.
func (s *LedgerService) RegisterCard(ctx context.Context, caller principal.Principal, in cards.CardInput) (uint64, error) {
	id, err := s.cards.Register(ctx, caller, in)
	return id, s.finish(ctx, mutation{
		component: ComponentCards,
		operation: "register",
		action:    journal.ActionCardRegistered,
		event:     events.TypeCardRegistered,
		actor:     caller,
		subject:   journal.CardSubject(id),
		payload:   in,
	}, err)
}

// GetCard returns a registered card.
func (s *LedgerService) GetCard(ctx context.Context, id uint64) (cards.Card, bool, error) {
	return s.cards.Get(ctx, id)
}

// TransferCardAdmin hands the card registry admin role to newAdmin.
func (s *LedgerService) TransferCardAdmin(ctx context.Context, caller, newAdmin principal.Principal) error {
	err := s.cards.TransferAdmin(ctx, caller, newAdmin)
	return s.finish(ctx, mutation{
		component: ComponentCards,
		operation: "transfer_admin",
		action:    journal.ActionAdminTransferred,
		event:     events.TypeAdminTransferred,
		actor:     caller,
		subject:   "admin:" + ComponentCards,
		payload:   map[string]string{"new_admin": string(newAdmin)},
	}, err)
}

// CardAdmin returns the card registry admin.
func (s *LedgerService) CardAdmin(ctx context.Context) (principal.Principal, error) {
	return s.cards.Admin(ctx)
}
