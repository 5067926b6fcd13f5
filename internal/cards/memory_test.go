package cards_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jmerrifield20/cardledger/internal/cards"
	"github.com/jmerrifield20/cardledger/internal/errcode"
	"github.com/jmerrifield20/cardledger/internal/principal"
)

var ctx = context.Background()

const (
	adminP       principal.Principal = "SP1ADMIN000000000000000000000000000"
	manufacturer                     = "SP1MANUF000000000000000000000000001"
	user1        principal.Principal = "SP1USER0000000000000000000000000001"
	user2        principal.Principal = "SP1USER0000000000000000000000000002"
)

func newRegistry(t *testing.T) *cards.MemoryRegistry {
	t.Helper()
	r, err := cards.NewMemoryRegistry(adminP)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRegister_storesCard(t *testing.T) {
	r := newRegistry(t)

	id, err := r.Register(ctx, user1, cards.CardInput{
		Name:         "Rare Dragon",
		Series:       "Fantasy Series 1",
		Manufacturer: manufacturer,
		Rarity:       "Mythic Rare",
		IssueDate:    1625097600,
	})
	if err != nil {
		t.Fatal(err)
	}
	if id != 1 {
		t.Fatalf("expected id 1, got %d", id)
	}

	card, ok, err := r.Get(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("Get(1): ok=%v err=%v", ok, err)
	}
	want := cards.Card{
		ID:           1,
		Name:         "Rare Dragon",
		Series:       "Fantasy Series 1",
		Manufacturer: manufacturer,
		Rarity:       "Mythic Rare",
		IssueDate:    1625097600,
		RegisteredBy: user1,
	}
	if card != want {
		t.Errorf("card mismatch:\n got %+v\nwant %+v", card, want)
	}
}

func TestRegister_sequentialIDsAcrossCallers(t *testing.T) {
	r := newRegistry(t)
	callers := []principal.Principal{user1, user2, adminP, user1}

	for i, caller := range callers {
		// Identical content is not deduplicated.
		id, err := r.Register(ctx, caller, cards.CardInput{Name: "Card", Series: "Series 1", Rarity: "Common"})
		if err != nil {
			t.Fatal(err)
		}
		if want := uint64(i + 1); id != want {
			t.Errorf("registration %d: got id %d, want %d", i+1, id, want)
		}
	}
}

func TestRegister_emptyCaller(t *testing.T) {
	r := newRegistry(t)
	if _, err := r.Register(ctx, "", cards.CardInput{Name: "x"}); !errors.Is(err, principal.ErrInvalid) {
		t.Fatalf("expected principal.ErrInvalid, got %v", err)
	}
	id, err := r.Register(ctx, user1, cards.CardInput{Name: "x"})
	if err != nil || id != 1 {
		t.Errorf("rejected registration must not consume an id: got %d, %v", id, err)
	}
}

func TestGet_unknown(t *testing.T) {
	r := newRegistry(t)
	_, ok, err := r.Get(ctx, 999)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected no card for unknown id")
	}
}

func TestTransferAdmin(t *testing.T) {
	r := newRegistry(t)

	if err := r.TransferAdmin(ctx, adminP, user1); err != nil {
		t.Fatalf("admin transfer: %v", err)
	}

	// Old admin can no longer transfer.
	err := r.TransferAdmin(ctx, adminP, user2)
	if !errors.Is(err, cards.ErrNotAuthorized) {
		t.Fatalf("old admin: expected ErrNotAuthorized, got %v", err)
	}
	if code, _ := errcode.CodeOf(err); code != 100 {
		t.Errorf("old admin: expected code 100, got %d", code)
	}

	// New admin can.
	if err := r.TransferAdmin(ctx, user1, user2); err != nil {
		t.Fatalf("new admin transfer: %v", err)
	}
	current, _ := r.Admin(ctx)
	if current != user2 {
		t.Errorf("admin: got %q, want %q", current, user2)
	}
}

func TestTransferAdmin_nonAdmin(t *testing.T) {
	r := newRegistry(t)
	if err := r.TransferAdmin(ctx, user1, user1); !errors.Is(err, cards.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	current, _ := r.Admin(ctx)
	if current != adminP {
		t.Errorf("admin changed after rejected transfer: %q", current)
	}
}
