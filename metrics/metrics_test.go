package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCacheCounters(t *testing.T) {
	before := testutil.ToFloat64(cacheHits.WithLabelValues("metrics-test"))
	IncCacheHit("metrics-test")
	IncCacheHit("metrics-test")
	assert.Equal(t, before+2, testutil.ToFloat64(cacheHits.WithLabelValues("metrics-test")))

	IncCacheError("metrics-test", "get")
	assert.Equal(t, float64(1), testutil.ToFloat64(cacheErrors.WithLabelValues("metrics-test", "get")))
}

func TestAuthDecisions(t *testing.T) {
	before := testutil.ToFloat64(authDecisions.WithLabelValues("rejected"))
	IncAuthDecision("rejected")
	assert.Equal(t, before+1, testutil.ToFloat64(authDecisions.WithLabelValues("rejected")))
}

func TestHandlerExposesRegisteredCollectors(t *testing.T) {
	Init()
	Init()
	ObserveAuthority("signature", "ok", 15*time.Millisecond)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "coregate_authority_request_duration_seconds")
}
