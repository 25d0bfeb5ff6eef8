package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 2)
	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1002"))

	// у другого адреса собственный лимит
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1000"))
}

func TestIPRateLimiterCleanup(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1)
	for i := 0; i <= cleanupThreshold; i++ {
		limiter.GetLimiter(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	limiter.mu.Lock()
	for _, e := range limiter.ips {
		e.lastSeen = time.Now().Add(-2 * maxIdleAge)
	}
	limiter.mu.Unlock()

	limiter.GetLimiter("fresh")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Len(t, limiter.ips, 1)
	assert.Contains(t, limiter.ips, "fresh")
}
