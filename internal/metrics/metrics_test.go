package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveParse(3)
	m.ObserveParse(2)
	m.ObserveExport("ok", 5*time.Millisecond)
	m.ObserveExport("empty", 0)
	m.ObserveExport("empty", 0)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.recordsParsed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exports.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.exports.WithLabelValues("empty")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveExport("error", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `bundlesheet_exports_total{result="error"} 1`), body)
}
