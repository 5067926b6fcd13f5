// Package ownership tracks the current owner of each card and an append-only,
// per-card history of transfers.
//
// A card enters the ledger through an explicit RegisterOwnership call; there
// is no implicit registration on first transfer. Card ids are not checked
// against the card registry.
//
// For each card the ledger moves through
//
//	unregistered -> registered(owner, count=0) -> registered(owner', count=k)
//
// with k growing by exactly one per successful transfer. Nothing is ever
// deleted.
package ownership

import (
	"context"

	"github.com/jmerrifield20/cardledger/internal/errcode"
	"github.com/jmerrifield20/cardledger/internal/principal"
)

// Error codes for the ownership ledger.
//
// ErrAlreadyRegistered and ErrCardNotFound share code 101 on the wire; they
// are distinct values so callers can still tell them apart.
var (
	ErrAlreadyRegistered = errcode.New(101, errcode.KindAlreadyRegistered, "card ownership already registered")
	ErrCardNotFound      = errcode.New(101, errcode.KindNotFound, "card ownership not found")
	ErrNotOwner          = errcode.New(102, errcode.KindNotOwner, "caller is not the card owner")
)

// OwnerRecord is the current owner of a card.
type OwnerRecord struct {
	CardID uint64              `json:"card_id"`
	Owner  principal.Principal `json:"owner"`
}

// HistoryEntry is one completed transfer. Index is the zero-based sequence
// number within the card's history.
type HistoryEntry struct {
	CardID        uint64              `json:"card_id"`
	Index         uint64              `json:"index"`
	PreviousOwner principal.Principal `json:"previous_owner"`
	NewOwner      principal.Principal `json:"new_owner"`
	TransferDate  uint64              `json:"transfer_date"`
}

// Ledger is the ownership ledger contract.
type Ledger interface {
	// RegisterOwnership makes caller the first owner of cardID.
	RegisterOwnership(ctx context.Context, caller principal.Principal, cardID uint64) error

	// TransferOwnership moves cardID from caller to newOwner and appends a
	// history entry stamped with now. Owner, history and count change together
	// or not at all.
	TransferOwnership(ctx context.Context, caller principal.Principal, cardID uint64, newOwner principal.Principal, now uint64) error

	// Owner returns the current owner. ok is false for unregistered cards.
	Owner(ctx context.Context, cardID uint64) (rec OwnerRecord, ok bool, err error)

	// HistoryEntry returns the transfer at index. ok is false past the end.
	HistoryEntry(ctx context.Context, cardID, index uint64) (entry HistoryEntry, ok bool, err error)

	// HistoryCount returns the number of completed transfers, 0 for
	// unregistered cards.
	HistoryCount(ctx context.Context, cardID uint64) (uint64, error)

	// History returns every transfer of cardID in order.
	History(ctx context.Context, cardID uint64) ([]HistoryEntry, error)
}
