package ownership

import (
	"context"
	"sync"

	"github.com/jmerrifield20/cardledger/internal/principal"
)

type cardState struct {
	owner   principal.Principal
	history []HistoryEntry // len(history) is the history counter
}

// MemoryLedger is an in-memory, thread-safe Ledger.
type MemoryLedger struct {
	mu    sync.RWMutex
	cards map[uint64]*cardState
}

// NewMemoryLedger creates an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{cards: make(map[uint64]*cardState)}
}

// RegisterOwnership implements Ledger.
func (l *MemoryLedger) RegisterOwnership(_ context.Context, caller principal.Principal, cardID uint64) error {
	if !caller.Valid() {
		return principal.ErrInvalid
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.cards[cardID]; exists {
		return ErrAlreadyRegistered
	}
	l.cards[cardID] = &cardState{owner: caller}
	return nil
}

// TransferOwnership implements Ledger.
func (l *MemoryLedger) TransferOwnership(_ context.Context, caller principal.Principal, cardID uint64, newOwner principal.Principal, now uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.cards[cardID]
	if !ok {
		return ErrCardNotFound
	}
	if caller != st.owner {
		return ErrNotOwner
	}
	if !newOwner.Valid() {
		return principal.ErrInvalid
	}

	st.history = append(st.history, HistoryEntry{
		CardID:        cardID,
		Index:         uint64(len(st.history)),
		PreviousOwner: st.owner,
		NewOwner:      newOwner,
		TransferDate:  now,
	})
	st.owner = newOwner
	return nil
}

// Owner implements Ledger.
func (l *MemoryLedger) Owner(_ context.Context, cardID uint64) (OwnerRecord, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st, ok := l.cards[cardID]
	if !ok {
		return OwnerRecord{}, false, nil
	}
	return OwnerRecord{CardID: cardID, Owner: st.owner}, true, nil
}

// HistoryEntry implements Ledger.
func (l *MemoryLedger) HistoryEntry(_ context.Context, cardID, index uint64) (HistoryEntry, bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st, ok := l.cards[cardID]
	if !ok || index >= uint64(len(st.history)) {
		return HistoryEntry{}, false, nil
	}
	return st.history[index], true, nil
}

// HistoryCount implements Ledger.
func (l *MemoryLedger) HistoryCount(_ context.Context, cardID uint64) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st, ok := l.cards[cardID]
	if !ok {
		return 0, nil
	}
	return uint64(len(st.history)), nil
}

// History implements Ledger.
func (l *MemoryLedger) History(_ context.Context, cardID uint64) ([]HistoryEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st, ok := l.cards[cardID]
	if !ok {
		return []HistoryEntry{}, nil
	}
	out := make([]HistoryEntry, len(st.history))
	copy(out, st.history)
	return out, nil
}
