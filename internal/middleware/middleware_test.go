package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrnf-scores/internal/metrics"
)

func TestRequestID(t *testing.T) {
	m := metrics.New()
	var seen string

	r := chi.NewRouter()
	r.Use(RequestID(zerolog.Nop(), m))
	r.Get("/boards/{id}", func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/boards/8-jFwF", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boards/Yg67aT", nil))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	// both requests share one route label
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPDuration))
}
