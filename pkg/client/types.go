package client

import "time"

// CardInput is the metadata supplied when registering a card.
type CardInput struct {
	Name         string `json:"name"`
	Series       string `json:"series"`
	Manufacturer string `json:"manufacturer"`
	Rarity       string `json:"rarity"`
	IssueDate    uint64 `json:"issue_date"`
}

// Card is a registered card.
type Card struct {
	ID           uint64 `json:"id"`
	Name         string `json:"name"`
	Series       string `json:"series"`
	Manufacturer string `json:"manufacturer"`
	Rarity       string `json:"rarity"`
	IssueDate    uint64 `json:"issue_date"`
	RegisteredBy string `json:"registered_by"`
}

// GradingRecord is the grade recorded for a card.
type GradingRecord struct {
	CardID      uint64 `json:"card_id"`
	Grade       uint32 `json:"grade"`
	Grader      string `json:"grader"`
	GradingDate uint64 `json:"grading_date"`
	Notes       string `json:"notes"`
}

// OwnerRecord is the current owner of a card.
type OwnerRecord struct {
	CardID uint64 `json:"card_id"`
	Owner  string `json:"owner"`
}

// HistoryEntry is one ownership transfer.
type HistoryEntry struct {
	CardID        uint64 `json:"card_id"`
	Index         uint64 `json:"index"`
	PreviousOwner string `json:"previous_owner"`
	NewOwner      string `json:"new_owner"`
	TransferDate  uint64 `json:"transfer_date"`
}

// History is the full transfer history of a card.
type History struct {
	CardID  uint64         `json:"card_id"`
	Count   uint64         `json:"count"`
	Entries []HistoryEntry `json:"entries"`
}

// JournalOverview summarises the audit journal.
type JournalOverview struct {
	Entries    int            `json:"entries"`
	Root       string         `json:"root"`
	Components map[string]int `json:"components"`
}

// JournalFilter narrows JournalEntries. Zero fields are not sent.
type JournalFilter struct {
	Component string
	Action    string
	Actor     string
	Subject   string
	After     int
	Limit     int
}

// JournalPage is one page of journal entries. NextAfter is 0 on the last page.
type JournalPage struct {
	Entries   []JournalEntry `json:"entries"`
	Count     int            `json:"count"`
	NextAfter int            `json:"next_after"`
}

// JournalEntry is one audit journal entry.
type JournalEntry struct {
	Index     int       `json:"index"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Height    uint64    `json:"height"`
	Component string    `json:"component"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Subject   string    `json:"subject"`
	DataHash  string    `json:"data_hash"`
	PrevHash  string    `json:"prev_hash"`
	Hash      string    `json:"hash"`
}
