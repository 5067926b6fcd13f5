package service

import (
	"context"

	"github.com/jmerrifield20/cardledger/internal/events"
	"github.com/jmerrifield20/cardledger/internal/journal"
	"github.com/jmerrifield20/cardledger/internal/ownership"
	"github.com/jmerrifield20/cardledger/internal/principal"
)

// RegisterOwnership makes caller the first owner of cardID.
func (s *LedgerService) RegisterOwnership(ctx context.Context, caller principal.Principal, cardID uint64) error {
	err := s.owners.RegisterOwnership(ctx, caller, cardID)
	return s.finish(ctx, mutation{
		component: ComponentOwnership,
		operation: "register_ownership",
		action:    journal.ActionOwnershipRegistered,
		event:     events.TypeOwnershipRegistered,
		actor:     caller,
		subject:   journal.CardSubject(cardID),
	}, err)
}

// TransferOwnership moves cardID from caller to newOwner stamped with the
// clock, and returns the stamp. A rejected transfer does not consume a height.
func (s *LedgerService) TransferOwnership(ctx context.Context, caller principal.Principal, cardID uint64, newOwner principal.Principal) (uint64, error) {
	now, err := s.clock.Stamp(func(now uint64) error {
		return s.owners.TransferOwnership(ctx, caller, cardID, newOwner, now)
	})
	return now, s.finish(ctx, mutation{
		component: ComponentOwnership,
		operation: "transfer_ownership",
		action:    journal.ActionOwnershipTransferred,
		event:     events.TypeOwnershipTransferred,
		actor:     caller,
		subject:   journal.CardSubject(cardID),
		height:    now,
		payload:   map[string]string{"previous_owner": string(caller), "new_owner": string(newOwner)},
	}, err)
}

// Owner returns the current owner of cardID.
func (s *LedgerService) Owner(ctx context.Context, cardID uint64) (ownership.OwnerRecord, bool, error) {
	return s.owners.Owner(ctx, cardID)
}

// HistoryEntry returns one transfer of cardID.
func (s *LedgerService) HistoryEntry(ctx context.Context, cardID, index uint64) (ownership.HistoryEntry, bool, error) {
	return s.owners.HistoryEntry(ctx, cardID, index)
}

// HistoryCount returns the number of transfers of cardID.
func (s *LedgerService) HistoryCount(ctx context.Context, cardID uint64) (uint64, error) {
	return s.owners.HistoryCount(ctx, cardID)
}

// History returns every transfer of cardID in order.
func (s *LedgerService) History(ctx context.Context, cardID uint64) ([]ownership.HistoryEntry, error) {
	return s.owners.History(ctx, cardID)
}
