package grading

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jmerrifield20/cardledger/internal/admin"
	"github.com/jmerrifield20/cardledger/internal/principal"
)

// MemoryRegistry is an in-memory, thread-safe Registry.
type MemoryRegistry struct {
	mu       sync.RWMutex
	graders  map[principal.Principal]struct{}
	gradings map[uint64]Record
	admin    *admin.Authority
}

// NewMemoryRegistry creates an empty registry administered by bootstrapAdmin.
func NewMemoryRegistry(bootstrapAdmin principal.Principal) (*MemoryRegistry, error) {
	auth, err := admin.New(bootstrapAdmin)
	if err != nil {
		return nil, err
	}
	return &MemoryRegistry{
		graders:  make(map[principal.Principal]struct{}),
		gradings: make(map[uint64]Record),
		admin:    auth,
	}, nil
}

// AddGrader implements Registry.
func (r *MemoryRegistry) AddGrader(_ context.Context, caller, grader principal.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.admin.IsAdmin(caller) {
		return ErrNotAuthorized
	}
	if !grader.Valid() {
		return principal.ErrInvalid
	}
	r.graders[grader] = struct{}{}
	return nil
}

// RemoveGrader implements Registry.
func (r *MemoryRegistry) RemoveGrader(_ context.Context, caller, grader principal.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.admin.IsAdmin(caller) {
		return ErrNotAuthorized
	}
	delete(r.graders, grader)
	return nil
}

// IsVerifiedGrader implements Registry.
func (r *MemoryRegistry) IsVerifiedGrader(_ context.Context, grader principal.Principal) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.graders[grader]
	return ok, nil
}

// Graders implements Registry.
func (r *MemoryRegistry) Graders(_ context.Context) ([]principal.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]principal.Principal, 0, len(r.graders))
	for g := range r.graders {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// GradeCard implements Registry.
func (r *MemoryRegistry) GradeCard(_ context.Context, caller principal.Principal, cardID uint64, grade uint32, notes string, now uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.graders[caller]; !ok {
		return ErrNotVerifiedGrader
	}
	if _, graded := r.gradings[cardID]; graded {
		return ErrAlreadyGraded
	}

	r.gradings[cardID] = Record{
		CardID:      cardID,
		Grade:       grade,
		Grader:      caller,
		GradingDate: now,
		Notes:       notes,
	}
	return nil
}

// GetGrading implements Registry.
func (r *MemoryRegistry) GetGrading(_ context.Context, cardID uint64) (Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.gradings[cardID]
	return rec, ok, nil
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
