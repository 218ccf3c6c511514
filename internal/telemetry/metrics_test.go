package telemetry

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecordAndServe(t *testing.T) {
	m := NewMetrics()
	m.TierProbe("web_search", "hit")
	m.TierProbe("web_search", "hit")
	m.SubAnalysis("fact_check", "failed")
	m.ObserveGeneration("answer", 1500*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.tierResults.WithLabelValues("web_search", "hit")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.subAnalysis.WithLabelValues("fact_check", "failed")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	require.True(t, strings.Contains(string(body), "newsdesk_generation_seconds_bucket"))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.TierProbe("headlines", "error")
	m.SubAnalysis("bias", "succeeded")
	m.ObserveGeneration("report", time.Second)
}
