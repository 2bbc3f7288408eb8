package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404"))
	ObserveHTTP("GET", "", 404, 3*time.Millisecond)
	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404"))
	assert.Equal(t, before+1, after)
}

func TestTrackInFlight(t *testing.T) {
	before := testutil.ToFloat64(httpInFlight)
	done := TrackInFlight()
	assert.Equal(t, before+1, testutil.ToFloat64(httpInFlight))
	done()
	assert.Equal(t, before, testutil.ToFloat64(httpInFlight))
}

func TestEventCounters(t *testing.T) {
	ok := events.WithLabelValues("processed", "expense.created", "ok")
	failed := events.WithLabelValues("processed", "expense.created", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	EventProcessed("expense.created", nil)
	EventProcessed("expense.created", errors.New("boom"))
	EventProcessed("expense.created", nil)

	assert.Equal(t, okBefore+2, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}

func TestHandlerExposesCollectors(t *testing.T) {
	MaintenanceRun("purge_sessions", nil)
	LedgerAppend(nil)
	RateLimited()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "conti_maintenance_runs_total")
	assert.Contains(t, string(body), "conti_ledger_rows_total")
	assert.Contains(t, string(body), "conti_http_rate_limited_total")
}
