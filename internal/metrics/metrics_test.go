package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New(prometheus.NewRegistry())
	b := New(prometheus.NewRegistry())

	a.Events.WithLabelValues(EventClick).Inc()
	a.Events.WithLabelValues(EventClick).Inc()
	b.Events.WithLabelValues(EventClick).Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(a.Events.WithLabelValues(EventClick)))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.Events.WithLabelValues(EventClick)))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.PairsServed.WithLabelValues(PairServed).Inc()
	m.BlacklistHits.Inc()
	m.ObserveReport("overview", time.Now())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `ads_pairs_served_total{result="served"} 1`)
	assert.Contains(t, body, "ads_blacklist_hits_total 1")
	assert.Contains(t, body, `ads_report_duration_seconds_count{report="overview"} 1`)
}
