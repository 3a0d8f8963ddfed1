package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type ctxKey struct{}

// copyingMiddleware swaps the request for a copy the way request loggers and
// tracing handlers do.
func copyingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, "x")))
	})
}

func TestMiddleware_PathLabel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := Middleware(mux)(copyingMiddleware(mux))

	tests := []struct {
		name    string
		method  string
		target  string
		code    string
		pattern string
	}{
		{"Routed request uses the registered pattern", http.MethodGet, "/api/v1/orders/abc", "200", "GET /api/v1/orders/{id}"},
		{"Unknown path is unmatched", http.MethodGet, "/nowhere", "404", "unmatched"},
		{"Wrong method is unmatched", http.MethodPost, "/api/v1/orders/abc", "405", "unmatched"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			counter := httpRequestsTotal.WithLabelValues(tt.code, tt.method, tt.pattern)
			before := testutil.ToFloat64(counter)

			req := httptest.NewRequest(tt.method, tt.target, nil)
			rr := httptest.NewRecorder()

			// Act
			handler.ServeHTTP(rr, req)

			// Assert
			assert.Equal(t, tt.code, strconv.Itoa(rr.Code))
			assert.InDelta(t, before+1, testutil.ToFloat64(counter), 0.0001)
		})
	}

	t.Run("Raw paths never become labels", func(t *testing.T) {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/orders/def", nil))

		assert.Zero(t, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("200", http.MethodGet, "/api/v1/orders/def")))
	})
}
