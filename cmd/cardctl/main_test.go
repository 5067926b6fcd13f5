package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/cardledger/internal/cards"
	"github.com/jmerrifield20/cardledger/internal/clock"
	"github.com/jmerrifield20/cardledger/internal/grading"
	"github.com/jmerrifield20/cardledger/internal/handler"
	"github.com/jmerrifield20/cardledger/internal/journal"
	"github.com/jmerrifield20/cardledger/internal/ownership"
	"github.com/jmerrifield20/cardledger/internal/service"
	"go.uber.org/zap"
)

const (
	adminP = "SP1ADMIN000000000000000000000000000"
	ownerA = "SP1OWNER000000000000000000000000001"
	ownerB = "SP1OWNER000000000000000000000000002"
)

func testServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cr, _ := cards.NewMemoryRegistry(adminP)
	gr, _ := grading.NewMemoryRegistry(adminP)
	logger := zap.NewNop()
	svc := service.NewLedgerService(cr, gr, ownership.NewMemoryLedger(), clock.NewHeight(100), logger)
	j := journal.NewMemory()
	svc.SetJournal(j)

	r := gin.New()
	r.Use(handler.Principal())
	v1 := r.Group("/api/v1")
	handler.NewCardHandler(svc, logger).Register(v1)
	handler.NewGradingHandler(svc, logger).Register(v1)
	handler.NewOwnershipHandler(svc, logger).Register(v1)
	handler.NewJournalHandler(j, logger).Register(v1)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}

// run executes cardctl with args and returns its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	principalArg, serverURL, outputFormat = "", "", "text"
	historyIndex = 0
	ownerHistoryCmd.Flags().Lookup("index").Changed = false
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCardctl_Flow(t *testing.T) {
	url := testServer(t)
	cfg := filepath.Join(t.TempDir(), "missing.yaml")
	base := []string{"--config", cfg, "--server", url}

	out, err := run(t, append(base, "--as", adminP, "card", "register", "--name", "Charizard", "--series", "Base Set")...)
	if err != nil {
		t.Fatalf("card register: %v", err)
	}
	if !strings.Contains(out, "Registered card 1") {
		t.Errorf("unexpected output: %q", out)
	}

	out, err = run(t, append(base, "card", "get", "1")...)
	if err != nil {
		t.Fatalf("card get: %v", err)
	}
	if !strings.Contains(out, "Charizard") {
		t.Errorf("unexpected output: %q", out)
	}

	if _, err := run(t, append(base, "--as", ownerA, "owner", "register", "1")...); err != nil {
		t.Fatalf("owner register: %v", err)
	}
	if _, err := run(t, append(base, "--as", ownerA, "owner", "transfer", "1", ownerB)...); err != nil {
		t.Fatalf("owner transfer: %v", err)
	}

	out, err = run(t, append(base, "-o", "json", "owner", "history", "1")...)
	if err != nil {
		t.Fatalf("owner history: %v", err)
	}
	if !strings.Contains(out, `"count": 1`) {
		t.Errorf("expected one transfer in history, got %q", out)
	}

	out, err = run(t, append(base, "owner", "history", "1", "--index", "0")...)
	if err != nil {
		t.Fatalf("owner history --index: %v", err)
	}
	if !strings.Contains(out, ownerA+" -> "+ownerB) {
		t.Errorf("unexpected entry output: %q", out)
	}

	if _, err := run(t, append(base, "owner", "history", "1", "--index", "5")...); err == nil {
		t.Error("expected error for index past the end")
	}

	out, err = run(t, append(base, "journal", "card", "1")...)
	if err != nil {
		t.Fatalf("journal card: %v", err)
	}
	for _, action := range []string{"card.registered", "ownership.registered", "ownership.transferred"} {
		if !strings.Contains(out, action) {
			t.Errorf("card trail missing %s: %q", action, out)
		}
	}

	out, err = run(t, append(base, "journal", "show")...)
	if err != nil {
		t.Fatalf("journal show: %v", err)
	}
	if !strings.Contains(out, "ownership: 2") {
		t.Errorf("expected two ownership mutations: %q", out)
	}
}

func TestCardctl_MutationNeedsPrincipal(t *testing.T) {
	url := testServer(t)
	cfg := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := run(t, "--config", cfg, "--server", url, "grader", "add", ownerA)
	if err == nil || !strings.Contains(err.Error(), "no principal set") {
		t.Errorf("expected missing principal error, got %v", err)
	}
}

func TestCardctl_RejectionKeepsCode(t *testing.T) {
	url := testServer(t)
	cfg := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := run(t, "--config", cfg, "--server", url, "--as", ownerA, "admin", "transfer", "cards", ownerB)
	if err == nil || !strings.Contains(err.Error(), "ledger error 100") {
		t.Errorf("expected ledger error 100, got %v", err)
	}
}

func TestParseID(t *testing.T) {
	if _, err := parseID("-3", "card id"); err == nil {
		t.Error("expected error for negative id")
	}
	if v, err := parseID("42", "card id"); err != nil || v != 42 {
		t.Errorf("expected 42, got %d (%v)", v, err)
	}
}
