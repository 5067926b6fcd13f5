package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmerrifield20/cardledger/internal/handler"
)

func limitedRouter(mw ...gin.HandlerFunc) func(as string) int {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	return func(as string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		if as != "" {
			req.Header.Set(handler.PrincipalHeader, as)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
}

func TestRateLimiter_PerPrincipal(t *testing.T) {
	hit := limitedRouter(handler.Principal(), handler.RateLimiter(1, 2))

	for i := 0; i < 2; i++ {
		if code := hit(ownerA); code != http.StatusNoContent {
			t.Fatalf("request %d: expected 204, got %d", i, code)
		}
	}
	if code := hit(ownerA); code != http.StatusTooManyRequests {
		t.Fatalf("third request: expected 429, got %d", code)
	}
	// A different principal has its own bucket.
	if code := hit(ownerB); code != http.StatusNoContent {
		t.Fatalf("other principal: expected 204, got %d", code)
	}
}

func TestRateLimiter_RotatingPrincipalsShareIPBudget(t *testing.T) {
	hit := limitedRouter(handler.Principal(), handler.RateLimiter(1, 2))

	// Two new principals fit the IP's allowance, the next two fall back to
	// the IP bucket, and the fifth finds it empty.
	for i := 0; i < 4; i++ {
		if code := hit("SP1ROTATE" + strconv.Itoa(i)); code != http.StatusNoContent {
			t.Fatalf("principal %d: expected 204, got %d", i, code)
		}
	}
	if code := hit("SP1ROTATE4"); code != http.StatusTooManyRequests {
		t.Errorf("fifth fresh principal: expected 429, got %d", code)
	}
}

func TestRateLimiter_IgnoresUnvalidatedHeader(t *testing.T) {
	// Without the Principal middleware the header is not trusted.
	hit := limitedRouter(handler.RateLimiter(1, 1))

	if code := hit(ownerA); code != http.StatusNoContent {
		t.Fatalf("first request: expected 204, got %d", code)
	}
	if code := hit(ownerB); code != http.StatusTooManyRequests {
		t.Errorf("second request from the same IP: expected 429, got %d", code)
	}
}
