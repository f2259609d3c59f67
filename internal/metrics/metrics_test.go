package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCallback_ByOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCallback("success")
	c.RecordCallback("success")
	c.RecordCallback("invalid_state")

	if got := testutil.ToFloat64(c.callbacks.WithLabelValues("success")); got != 2 {
		t.Errorf("success callbacks = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.callbacks.WithLabelValues("invalid_state")); got != 1 {
		t.Errorf("invalid_state callbacks = %v, want 1", got)
	}
}

func TestRecordSweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSweep(3, 1)
	c.RecordSweep(0, 2)

	if got := testutil.ToFloat64(c.sweepRuns); got != 2 {
		t.Errorf("sweep runs = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.sweepPublished); got != 3 {
		t.Errorf("published = %v, want 3", got)
	}
	if got := testutil.ToFloat64(c.sweepFailed); got != 3 {
		t.Errorf("failed = %v, want 3", got)
	}
}

func TestRecordProviderLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordProviderLatency("publish", 120*time.Millisecond)
	c.RecordStatesCleaned(4)

	if n := testutil.CollectAndCount(c.providerLatency); n != 1 {
		t.Errorf("latency series = %d, want 1", n)
	}
	if got := testutil.ToFloat64(c.statesCleaned); got != 4 {
		t.Errorf("states cleaned = %v, want 4", got)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordPublish("success")

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `linkedin_broker_publishes_total{outcome="success"} 1`) {
		t.Errorf("publishes_total missing from output:\n%s", body)
	}
}

func TestNewCollector_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewCollector(reg)
}
