package journal

import (
	"context"
	"fmt"
	"sync"
)

// MemoryJournal is an in-memory, thread-safe Journal implementation.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemory creates a MemoryJournal initialised with the genesis entry.
func NewMemory() *MemoryJournal {
	return &MemoryJournal{entries: []*Entry{genesisEntry()}}
}

// Append implements Journal.
func (j *MemoryJournal) Append(_ context.Context, rec Record) (*Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	prev := j.entries[len(j.entries)-1]
	entry, err := newEntry(prev.Index, prev.Hash, rec)
	if err != nil {
		return nil, err
	}
	j.entries = append(j.entries, entry)
	cp := *entry
	return &cp, nil
}

// Get implements Journal.
func (j *MemoryJournal) Get(_ context.Context, index int) (*Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if index < 0 || index >= len(j.entries) {
		return nil, fmt.Errorf("index %d: %w", index, ErrEntryNotFound)
	}
	cp := *j.entries[index]
	return &cp, nil
}

// Len implements Journal.
func (j *MemoryJournal) Len(_ context.Context) (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries), nil
}

// Verify implements Journal.
func (j *MemoryJournal) Verify(_ context.Context) error {
	j.mu.RLock()
	defer j.mu.RUnlock()

	for i, curr := range j.entries {
		if i == 0 {
			if curr.Hash != GenesisHash {
				return fmt.Errorf("genesis entry has wrong hash: got %q", curr.Hash)
			}
			continue
		}
		if err := checkLink(j.entries[i-1], curr); err != nil {
			return err
		}
	}
	return nil
}

// Root implements Journal.
func (j *MemoryJournal) Root(_ context.Context) (string, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.entries[len(j.entries)-1].Hash, nil
}

// Query implements Journal.
func (j *MemoryJournal) Query(_ context.Context, f Filter) ([]*Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	limit := f.limit()
	out := make([]*Entry, 0)
	for _, e := range j.entries {
		if !f.matches(e) {
			continue
		}
		cp := *e
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Counts implements Journal.
func (j *MemoryJournal) Counts(_ context.Context) (map[string]int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	counts := make(map[string]int)
	for _, e := range j.entries[1:] {
		counts[e.Component]++
	}
	return counts, nil
}
