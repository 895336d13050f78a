package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFramesProcessedCounter(t *testing.T) {
	before := testutil.ToFloat64(FramesProcessed.WithLabelValues(FrameSkipped))
	FramesProcessed.WithLabelValues(FrameSkipped).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(FramesProcessed.WithLabelValues(FrameSkipped)))
}

func TestMetricsHandler(t *testing.T) {
	SessionsAnalyzed.Inc()

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "canine_sessions_analyzed_total"))
}
