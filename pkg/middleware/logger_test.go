package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chris/funding-ledger/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(NewStructuredLogger(logger))
	r.Get("/accounts/{accountId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	counter := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/accounts/{accountId}", "418")
	before := testutil.ToFloat64(counter)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/accounts/acc-42", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
	assert.Contains(t, buf.String(), `"route":"/accounts/{accountId}"`)
	assert.Contains(t, buf.String(), `"msg":"request completed"`)

	buf.Reset()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
}
