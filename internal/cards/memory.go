package cards

import (
	"context"
	"errors"
	"sync"

	"github.com/jmerrifield20/cardledger/internal/admin"
	"github.com/jmerrifield20/cardledger/internal/principal"
)

// MemoryRegistry is an in-memory, thread-safe Registry.
type MemoryRegistry struct {
	mu     sync.RWMutex
	cards  map[uint64]Card
	nextID uint64
	admin  *admin.Authority
}

// NewMemoryRegistry creates an empty registry administered by bootstrapAdmin.
func NewMemoryRegistry(bootstrapAdmin principal.Principal) (*MemoryRegistry, error) {
	auth, err := admin.New(bootstrapAdmin)
	if err != nil {
		return nil, err
	}
	return &MemoryRegistry{
		cards:  make(map[uint64]Card),
		nextID: 1,
		admin:  auth,
	}, nil
}

// Register implements Registry.
func (r *MemoryRegistry) Register(_ context.Context, caller principal.Principal, in CardInput) (uint64, error) {
	if !caller.Valid() {
		return 0, principal.ErrInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	// Allocation and storage are separate steps; never overwrite an issued id.
	if _, exists := r.cards[id]; exists {
		return 0, ErrCardExists
	}

	r.cards[id] = Card{
		ID:           id,
		Name:         in.Name,
		Series:       in.Series,
		Manufacturer: in.Manufacturer,
		Rarity:       in.Rarity,
		IssueDate:    in.IssueDate,
		RegisteredBy: caller,
	}
	r.nextID++
	return id, nil
}

// Get implements Registry.
func (r *MemoryRegistry) Get(_ context.Context, id uint64) (Card, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.cards[id]
	return c, ok, nil
}

// TransferAdmin implements Registry.
func (r *MemoryRegistry) TransferAdmin(_ context.Context, caller, newAdmin principal.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.admin.Transfer(caller, newAdmin); err != nil {
		if errors.Is(err, admin.ErrNotAdmin) {
			return ErrNotAuthorized
		}
		return err
	}
	return nil
}

// Admin implements Registry.
func (r *MemoryRegistry) Admin(_ context.Context) (principal.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.admin.Current(), nil
}
