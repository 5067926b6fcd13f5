package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
	adminP  = "SP1ADMIN000000000000000000000000000"
	graderP = "SP1GRADER000000000000000000000000001"
	ownerA  = "SP1OWNER000000000000000000000000001"
	ownerB  = "SP1OWNER000000000000000000000000002"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cr, err := cards.NewMemoryRegistry(adminP)
	if err != nil {
		t.Fatalf("cards registry: %v", err)
	}
	gr, err := grading.NewMemoryRegistry(adminP)
	if err != nil {
		t.Fatalf("grading registry: %v", err)
	}
	logger := zap.NewNop()
	svc := service.NewLedgerService(cr, gr, ownership.NewMemoryLedger(), clock.NewHeight(100), logger)
	j := journal.NewMemory()
	svc.SetJournal(j)

	r := gin.New()
	r.Use(handler.RequestID(), handler.Principal())
	v1 := r.Group("/api/v1")
	handler.NewCardHandler(svc, logger).Register(v1)
	handler.NewGradingHandler(svc, logger).Register(v1)
	handler.NewOwnershipHandler(svc, logger).Register(v1)
	handler.NewJournalHandler(j, logger).Register(v1)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, as string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set(handler.PrincipalHeader, as)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return resp
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func expectCode(t *testing.T, w *httptest.ResponseRecorder, want float64) {
	t.Helper()
	resp := decode(t, w)
	if resp["code"] != want {
		t.Errorf("expected error code %v, got %v (%s)", want, resp["code"], w.Body.String())
	}
}

var sampleCard = map[string]any{
	"name":         "Charizard",
	"series":       "Base Set",
	"manufacturer": "Wizards",
	"rarity":       "Holo Rare",
	"issue_date":   19990109,
}

// ── Cards ───────────────────────────────────────────────────────────────

func TestRegisterCard_201(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/cards", adminP, sampleCard)
	expectStatus(t, w, http.StatusCreated)
	if id := decode(t, w)["id"]; id != float64(1) {
		t.Errorf("expected id 1, got %v", id)
	}

	w = do(t, r, http.MethodPost, "/api/v1/cards", adminP, sampleCard)
	if id := decode(t, w)["id"]; id != float64(2) {
		t.Errorf("expected id 2, got %v", id)
	}

	w = do(t, r, http.MethodGet, "/api/v1/cards/1", "", nil)
	expectStatus(t, w, http.StatusOK)
	resp := decode(t, w)
	if resp["name"] != "Charizard" || resp["registered_by"] != adminP {
		t.Errorf("unexpected card: %v", resp)
	}
}

func TestRegisterCard_AnyCaller(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/cards", ownerA, sampleCard)
	expectStatus(t, w, http.StatusCreated)

	w = do(t, r, http.MethodGet, "/api/v1/cards/1", "", nil)
	if got := decode(t, w)["registered_by"]; got != ownerA {
		t.Errorf("expected registered_by %s, got %v", ownerA, got)
	}
}

func TestRegisterCard_MissingPrincipal401(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/cards", "", sampleCard)
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestGetCard_Unknown404(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/cards/999", "", nil)
	expectStatus(t, w, http.StatusNotFound)
}

func TestGetCard_BadID400(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/cards/-1", "", nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestTransferCardAdmin(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/admin/cards/transfer", adminP, map[string]string{"new_admin": ownerA})
	expectStatus(t, w, http.StatusOK)

	w = do(t, r, http.MethodGet, "/api/v1/admin/cards", "", nil)
	if got := decode(t, w)["admin"]; got != ownerA {
		t.Errorf("expected admin %s, got %v", ownerA, got)
	}

	// The old admin lost its rights; grading admin is untouched.
	w = do(t, r, http.MethodPost, "/api/v1/admin/cards/transfer", adminP, map[string]string{"new_admin": adminP})
	expectStatus(t, w, http.StatusForbidden)
	expectCode(t, w, 100)

	w = do(t, r, http.MethodGet, "/api/v1/admin/grading", "", nil)
	if got := decode(t, w)["admin"]; got != adminP {
		t.Errorf("expected grading admin %s, got %v", adminP, got)
	}
}

func TestTransferCardAdmin_MissingNewAdmin400(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/admin/cards/transfer", adminP, map[string]string{})
	expectStatus(t, w, http.StatusBadRequest)
}

// ── Grading ─────────────────────────────────────────────────────────────

func TestGradeCard_Flow(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/grading/cards/1", graderP, map[string]any{"grade": 9})
	expectStatus(t, w, http.StatusForbidden)
	expectCode(t, w, 102)

	w = do(t, r, http.MethodPost, "/api/v1/grading/graders", adminP, map[string]string{"grader": graderP})
	expectStatus(t, w, http.StatusOK)

	w = do(t, r, http.MethodGet, "/api/v1/grading/graders/"+graderP, "", nil)
	if decode(t, w)["verified"] != true {
		t.Errorf("expected grader to be verified")
	}

	w = do(t, r, http.MethodPost, "/api/v1/grading/cards/1", graderP, map[string]any{"grade": 9, "notes": "Near mint"})
	expectStatus(t, w, http.StatusCreated)
	// The rejected attempt above did not consume height 100.
	if got := decode(t, w)["grading_date"]; got != float64(100) {
		t.Errorf("expected grading_date 100, got %v", got)
	}

	w = do(t, r, http.MethodPost, "/api/v1/grading/cards/1", graderP, map[string]any{"grade": 10})
	expectStatus(t, w, http.StatusConflict)
	expectCode(t, w, 101)

	w = do(t, r, http.MethodGet, "/api/v1/grading/cards/1", "", nil)
	expectStatus(t, w, http.StatusOK)
	resp := decode(t, w)
	if resp["grade"] != float64(9) || resp["grader"] != graderP || resp["notes"] != "Near mint" {
		t.Errorf("unexpected record: %v", resp)
	}
}

func TestGradeCard_ZeroGradeAccepted(t *testing.T) {
	r := setupRouter(t)
	do(t, r, http.MethodPost, "/api/v1/grading/graders", adminP, map[string]string{"grader": graderP})

	w := do(t, r, http.MethodPost, "/api/v1/grading/cards/5", graderP, map[string]any{"grade": 0})
	expectStatus(t, w, http.StatusCreated)
}

func TestGradeCard_MissingGrade400(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/grading/cards/1", graderP, map[string]any{"notes": "x"})
	expectStatus(t, w, http.StatusBadRequest)
}

func TestRemoveGrader(t *testing.T) {
	r := setupRouter(t)
	do(t, r, http.MethodPost, "/api/v1/grading/graders", adminP, map[string]string{"grader": graderP})

	w := do(t, r, http.MethodDelete, "/api/v1/grading/graders/"+graderP, ownerA, nil)
	expectStatus(t, w, http.StatusForbidden)
	expectCode(t, w, 100)

	w = do(t, r, http.MethodDelete, "/api/v1/grading/graders/"+graderP, adminP, nil)
	expectStatus(t, w, http.StatusOK)

	w = do(t, r, http.MethodGet, "/api/v1/grading/graders", "", nil)
	if got := decode(t, w)["count"]; got != float64(0) {
		t.Errorf("expected 0 graders, got %v", got)
	}
}

func TestGetGrading_Unknown404(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/grading/cards/42", "", nil)
	expectStatus(t, w, http.StatusNotFound)
}

// ── Ownership ───────────────────────────────────────────────────────────

func TestOwnership_Flow(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/ownership/cards/1", ownerA, nil)
	expectStatus(t, w, http.StatusCreated)

	w = do(t, r, http.MethodPost, "/api/v1/ownership/cards/1", ownerB, nil)
	expectStatus(t, w, http.StatusConflict)
	expectCode(t, w, 101)

	w = do(t, r, http.MethodPost, "/api/v1/ownership/cards/1/transfer", ownerB, map[string]string{"new_owner": ownerB})
	expectStatus(t, w, http.StatusForbidden)
	expectCode(t, w, 102)

	w = do(t, r, http.MethodPost, "/api/v1/ownership/cards/1/transfer", ownerA, map[string]string{"new_owner": ownerB})
	expectStatus(t, w, http.StatusOK)
	if got := decode(t, w)["transfer_date"]; got != float64(100) {
		t.Errorf("expected transfer_date 100, got %v", got)
	}

	w = do(t, r, http.MethodGet, "/api/v1/ownership/cards/1", "", nil)
	if got := decode(t, w)["owner"]; got != ownerB {
		t.Errorf("expected owner %s, got %v", ownerB, got)
	}

	w = do(t, r, http.MethodGet, "/api/v1/ownership/cards/1/history", "", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode(t, w)["count"]; got != float64(1) {
		t.Errorf("expected history count 1, got %v", got)
	}

	w = do(t, r, http.MethodGet, "/api/v1/ownership/cards/1/history/0", "", nil)
	expectStatus(t, w, http.StatusOK)
	resp := decode(t, w)
	if resp["previous_owner"] != ownerA || resp["new_owner"] != ownerB {
		t.Errorf("unexpected history entry: %v", resp)
	}

	w = do(t, r, http.MethodGet, "/api/v1/ownership/cards/1/history/1", "", nil)
	expectStatus(t, w, http.StatusNotFound)
}

// counterLedger reports a fixed history counter so tests can tell it apart
// from the length of the stored history.
type counterLedger struct {
	*ownership.MemoryLedger
	count uint64
	calls int
}

func (l *counterLedger) HistoryCount(context.Context, uint64) (uint64, error) {
	l.calls++
	return l.count, nil
}

func TestHistory_CountComesFromCounter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cr, _ := cards.NewMemoryRegistry(adminP)
	gr, _ := grading.NewMemoryRegistry(adminP)
	owners := &counterLedger{MemoryLedger: ownership.NewMemoryLedger(), count: 7}
	svc := service.NewLedgerService(cr, gr, owners, clock.NewHeight(100), zap.NewNop())

	r := gin.New()
	r.Use(handler.Principal())
	handler.NewOwnershipHandler(svc, zap.NewNop()).Register(r.Group("/api/v1"))

	w := do(t, r, http.MethodGet, "/api/v1/ownership/cards/1/history", "", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode(t, w)["count"]; got != float64(7) {
		t.Errorf("expected count from the history counter (7), got %v", got)
	}
	if owners.calls != 1 {
		t.Errorf("expected one HistoryCount call, got %d", owners.calls)
	}
}

func TestTransferOwnership_Unregistered404(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/ownership/cards/7/transfer", ownerA, map[string]string{"new_owner": ownerB})
	expectStatus(t, w, http.StatusNotFound)
	expectCode(t, w, 101)
}

func TestHistory_UnregisteredCardIsEmpty(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/ownership/cards/7/history", "", nil)
	expectStatus(t, w, http.StatusOK)
	resp := decode(t, w)
	if resp["count"] != float64(0) {
		t.Errorf("expected count 0, got %v", resp["count"])
	}
	if entries, ok := resp["entries"].([]any); !ok || len(entries) != 0 {
		t.Errorf("expected empty entries array, got %v", resp["entries"])
	}

	w = do(t, r, http.MethodGet, "/api/v1/ownership/cards/7", "", nil)
	expectStatus(t, w, http.StatusNotFound)
}

// ── Journal ─────────────────────────────────────────────────────────────

func TestJournal_RecordsAcceptedMutations(t *testing.T) {
	r := setupRouter(t)

	do(t, r, http.MethodPost, "/api/v1/cards", adminP, sampleCard)
	do(t, r, http.MethodPost, "/api/v1/ownership/cards/1", ownerA, nil)
	do(t, r, http.MethodPost, "/api/v1/ownership/cards/1", ownerB, nil) // rejected

	w := do(t, r, http.MethodGet, "/api/v1/journal", "", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode(t, w)["entries"]; got != float64(3) { // genesis + 2
		t.Errorf("expected 3 entries, got %v", got)
	}

	w = do(t, r, http.MethodGet, "/api/v1/journal/verify", "", nil)
	if decode(t, w)["valid"] != true {
		t.Errorf("expected journal to verify: %s", w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/v1/journal/entries/1", "", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode(t, w)["action"]; got != journal.ActionCardRegistered {
		t.Errorf("expected action %s, got %v", journal.ActionCardRegistered, got)
	}

	w = do(t, r, http.MethodGet, "/api/v1/journal/entries/99", "", nil)
	expectStatus(t, w, http.StatusNotFound)
}

func TestJournal_StatusCountsComponents(t *testing.T) {
	r := setupRouter(t)

	do(t, r, http.MethodPost, "/api/v1/cards", adminP, sampleCard)
	do(t, r, http.MethodPost, "/api/v1/grading/graders", adminP, map[string]string{"grader": graderP})
	do(t, r, http.MethodPost, "/api/v1/ownership/cards/1", ownerA, nil)
	do(t, r, http.MethodPost, "/api/v1/ownership/cards/1/transfer", ownerA, map[string]string{"new_owner": ownerB})

	w := do(t, r, http.MethodGet, "/api/v1/journal", "", nil)
	expectStatus(t, w, http.StatusOK)
	components, _ := decode(t, w)["components"].(map[string]any)
	if components["cards"] != float64(1) || components["grading"] != float64(1) || components["ownership"] != float64(2) {
		t.Errorf("unexpected component counts: %v", components)
	}
}

func TestJournal_ListEntriesFiltersAndPages(t *testing.T) {
	r := setupRouter(t)

	for i := 0; i < 3; i++ {
		do(t, r, http.MethodPost, "/api/v1/cards", ownerA, sampleCard)
	}
	do(t, r, http.MethodPost, "/api/v1/ownership/cards/2", ownerB, nil)

	w := do(t, r, http.MethodGet, "/api/v1/journal/entries?component=cards&limit=2", "", nil)
	expectStatus(t, w, http.StatusOK)
	resp := decode(t, w)
	if resp["count"] != float64(2) || resp["next_after"] != float64(2) {
		t.Fatalf("first page: %v", resp)
	}

	w = do(t, r, http.MethodGet, "/api/v1/journal/entries?component=cards&limit=2&after=2", "", nil)
	resp = decode(t, w)
	if resp["count"] != float64(1) {
		t.Errorf("second page: %v", resp)
	}
	if _, more := resp["next_after"]; more {
		t.Errorf("last page should not carry next_after: %v", resp)
	}

	w = do(t, r, http.MethodGet, "/api/v1/journal/entries?actor="+ownerB, "", nil)
	resp = decode(t, w)
	entries, _ := resp["entries"].([]any)
	if len(entries) != 1 || entries[0].(map[string]any)["action"] != journal.ActionOwnershipRegistered {
		t.Errorf("actor filter: %v", resp)
	}

	w = do(t, r, http.MethodGet, "/api/v1/journal/entries?limit=-1", "", nil)
	expectStatus(t, w, http.StatusBadRequest)
}

func TestJournal_CardTrail(t *testing.T) {
	r := setupRouter(t)

	do(t, r, http.MethodPost, "/api/v1/cards", ownerA, sampleCard)
	do(t, r, http.MethodPost, "/api/v1/cards", ownerA, sampleCard)
	do(t, r, http.MethodPost, "/api/v1/grading/graders", adminP, map[string]string{"grader": graderP})
	do(t, r, http.MethodPost, "/api/v1/grading/cards/1", graderP, map[string]any{"grade": 9})
	do(t, r, http.MethodPost, "/api/v1/ownership/cards/1", ownerA, nil)
	do(t, r, http.MethodPost, "/api/v1/ownership/cards/2", ownerA, nil)

	w := do(t, r, http.MethodGet, "/api/v1/journal/cards/1", "", nil)
	expectStatus(t, w, http.StatusOK)
	entries, _ := decode(t, w)["entries"].([]any)
	want := []string{journal.ActionCardRegistered, journal.ActionCardGraded, journal.ActionOwnershipRegistered}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries for card 1, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if got := e.(map[string]any)["action"]; got != want[i] {
			t.Errorf("entry %d: action %v, want %s", i, got, want[i])
		}
	}

	w = do(t, r, http.MethodGet, "/api/v1/journal/cards/42", "", nil)
	expectStatus(t, w, http.StatusOK)
	if decode(t, w)["count"] != float64(0) {
		t.Errorf("unknown card should have an empty trail")
	}
}

func TestRequestID_Echoed(t *testing.T) {
	r := setupRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/admin/cards", "", nil)
	if w.Header().Get(handler.RequestIDHeader) == "" {
		t.Error("expected a generated request id header")
	}
}
