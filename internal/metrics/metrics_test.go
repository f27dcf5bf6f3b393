package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newCollectors(t *testing.T) *Collectors {
	t.Helper()
	c, err := New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestCollectors_Observers(t *testing.T) {
	c := newCollectors(t)

	c.EventDispatched("change")
	c.EventDispatched("change")
	c.ListenerPanicked("change")
	c.ThrottleFlushed(3)
	c.ThrottleFlushed(2)
	c.DebounceFired(false)
	c.DebounceFired(true)
	c.DebounceFired(true)

	tests := []struct {
		name string
		col  prometheus.Collector
		want float64
	}{
		{"dispatched", c.eventsDispatched.WithLabelValues("change"), 2},
		{"panics", c.listenerPanics.WithLabelValues("change"), 1},
		{"flushes", c.throttleFlushes, 2},
		{"callbacks", c.throttleCallbacks, 5},
		{"idle", c.debounceFires.WithLabelValues("idle"), 1},
		{"max", c.debounceFires.WithLabelValues("max"), 2},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.col); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCollectors_LoadStarted(t *testing.T) {
	c := newCollectors(t)

	done := c.LoadStarted("GRAPH")
	if got := testutil.ToFloat64(c.dataInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	done(nil)
	c.LoadStarted("GRAPH")(errors.New("boom"))

	if got := testutil.ToFloat64(c.dataInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(c.dataLoads.WithLabelValues("GRAPH", "success")); got != 1 {
		t.Errorf("success loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.dataLoads.WithLabelValues("GRAPH", "failure")); got != 1 {
		t.Errorf("failed loads = %v, want 1", got)
	}
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Error("New() on the same registry should fail")
	}
}

func TestCollectors_Handler(t *testing.T) {
	c := newCollectors(t)
	c.SetContexts(4)

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "chartflow_chart_contexts 4") {
		t.Errorf("metrics output missing contexts gauge:\n%s", body)
	}
}
