package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/cardledger/internal/handler"
	"github.com/jmerrifield20/cardledger/internal/health"
	"go.uber.org/zap"
)

func TestReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	checker := health.New(health.Config{}, zap.NewNop())
	var probeErr error
	checker.Register("journal", func(context.Context) error { return probeErr })

	r := gin.New()
	handler.NewHealthHandler(checker).Register(r)

	get := func(path string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w.Code
	}

	if code := get("/healthz"); code != http.StatusOK {
		t.Errorf("healthz: expected 200, got %d", code)
	}
	if code := get("/readyz"); code != http.StatusOK {
		t.Errorf("readyz: expected 200, got %d", code)
	}

	probeErr = errors.New("chain broken")
	if code := get("/readyz"); code != http.StatusServiceUnavailable {
		t.Errorf("readyz with failing probe: expected 503, got %d", code)
	}
}
