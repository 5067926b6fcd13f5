package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenesisHash is the canonical well-known hash of the genesis entry.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// genesisTime is fixed so the memory and Postgres genesis entries are identical.
var genesisTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Entry is a single audit record in the journal.
type Entry struct {
	Index     int       `json:"index"`
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Height    uint64    `json:"height"`
	Component string    `json:"component"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Subject   string    `json:"subject"`
	DataHash  string    `json:"data_hash"` // SHA-256 of the associated payload
	PrevHash  string    `json:"prev_hash"`
	Hash      string    `json:"hash"`
}

func genesisEntry() *Entry {
	return &Entry{
		Index:     0,
		ID:        uuid.Nil,
		Timestamp: genesisTime,
		Action:    ActionGenesis,
		Actor:     "cardledger",
		DataHash:  GenesisHash,
		PrevHash:  GenesisHash,
		Hash:      GenesisHash, // well-known constant, not computed
	}
}

// newEntry builds the entry that follows prev. Timestamps are truncated to
// microseconds so they survive a round trip through timestamptz unchanged.
func newEntry(prevIndex int, prevHash string, rec Record) (*Entry, error) {
	payloadJSON, err := json.Marshal(rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	e := &Entry{
		Index:     prevIndex + 1,
		ID:        uuid.New(),
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
		Height:    rec.Height,
		Component: rec.Component,
		Action:    rec.Action,
		Actor:     rec.Actor,
		Subject:   rec.Subject,
		DataHash:  sha256Sum(payloadJSON),
		PrevHash:  prevHash,
	}
	e.Hash = hashEntry(e)
	return e, nil
}

// hashEntry computes a deterministic SHA-256 hash over an entry's fields.
// This function must never be called on the genesis entry (index 0).
func hashEntry(e *Entry) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|%d|%s|%s|%s|%s|%s|%s",
		e.Index, e.ID, e.Timestamp.Format(time.RFC3339Nano), e.Height,
		e.Component, e.Action, e.Actor, e.Subject, e.DataHash, e.PrevHash,
	)
	return hex.EncodeToString(h.Sum(nil))
}

// checkLink validates curr against its predecessor.
func checkLink(prev, curr *Entry) error {
	if curr.PrevHash != prev.Hash {
		return fmt.Errorf("hash chain broken at index %d", curr.Index)
	}
	if curr.Hash != hashEntry(curr) {
		return fmt.Errorf("entry %d has invalid hash", curr.Index)
	}
	return nil
}

// sha256Sum returns the hex-encoded SHA-256 digest of data.
func sha256Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
