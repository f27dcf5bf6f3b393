package data

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/chartflow/internal/chart"
	"github.com/dshills/chartflow/internal/event"
	"github.com/dshills/chartflow/internal/logging"
	"github.com/dshills/chartflow/internal/schedule"
)

type fakeFetcher struct {
	calls   []string
	options []map[string]any
	err     error
}

func (f *fakeFetcher) Fetch(_ context.Context, dataType string, options map[string]any) (any, error) {
	f.calls = append(f.calls, dataType)
	f.options = append(f.options, options)
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{"call": float64(len(f.calls))}, nil
}

func newLoaderFixture(t *testing.T) (*schedule.ManualLoop, *chart.Context, *fakeFetcher, *Loader) {
	t.Helper()
	loop := schedule.NewManualLoop(time.Time{})
	ctx := chart.New(nil, nil, chart.WithLoop(loop), chart.WithLogger(logging.Null()))
	f := &fakeFetcher{}
	l := NewLoader(ctx, f, WithLoaderLoop(loop), WithLoaderLogger(logging.Null()))
	return loop, ctx, f, l
}

func TestLoader_InitialLoad(t *testing.T) {
	loop, ctx, f, l := newLoaderFixture(t)
	defer ctx.Destroy()

	var updates []any
	var loadings []any
	l.AddListener(TypeDataUpdated, func(e *event.Event) { updates = append(updates, e.Data) })
	l.AddListener(TypeLoadingChanged, func(e *event.Event) { loadings = append(loadings, e.Data) })

	loop.Advance(DefaultLoadInterval - time.Millisecond)
	if len(f.calls) != 0 {
		t.Fatalf("loaded before the session closed: %v", f.calls)
	}
	loop.Advance(time.Millisecond)

	if diff := cmp.Diff([]string{chart.DataGraph}, f.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(ctx.ChartOptions(), f.options[0]); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{map[string]any{"call": 1.0}}, updates); diff != "" {
		t.Errorf("updates mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{1, 0}, loadings); diff != "" {
		t.Errorf("loadings mismatch (-want +got):\n%s", diff)
	}
	if l.Loading() {
		t.Error("Loading() = true after completion")
	}
}

func TestLoader_DataTermsSession(t *testing.T) {
	loop, ctx, f, _ := newLoaderFixture(t)
	defer ctx.Destroy()
	loop.Advance(DefaultLoadInterval)

	// Changes keep extending the session until the maximum.
	for i := 0; i < 6; i++ {
		ctx.Filter("region").Set([]any{float64(i)})
		loop.Advance(300 * time.Millisecond)
	}
	if len(f.calls) != 2 {
		t.Errorf("calls = %d, want a forced load after the session maximum", len(f.calls))
	}

	loop.Advance(DefaultLoadInterval)
	if len(f.calls) != 2 {
		t.Errorf("calls = %d after the forced load, want 2", len(f.calls))
	}
	last := f.options[len(f.options)-1]
	if diff := cmp.Diff(map[string]any{"region": []any{5.0}}, last["FILTERS"]); diff != "" {
		t.Errorf("last load FILTERS mismatch (-want +got):\n%s", diff)
	}

	// Non data-affecting changes do not reload.
	n := len(f.calls)
	ctx.Set(chart.ChartHeight, 500.0)
	loop.Advance(time.Second)
	if len(f.calls) != n {
		t.Errorf("CHART_HEIGHT change triggered a load")
	}
}

func TestLoader_Visibility(t *testing.T) {
	loop, ctx, f, l := newLoaderFixture(t)
	defer ctx.Destroy()
	loop.Advance(DefaultLoadInterval)

	ctx.Set(chart.Visible, false)
	ctx.Set(chart.DataField, chart.DataMap)
	loop.Advance(time.Second)
	if len(f.calls) != 1 {
		t.Fatalf("hidden context loaded: %v", f.calls)
	}

	ctx.Set(chart.Visible, true)
	loop.Advance(DefaultLoadInterval)
	if diff := cmp.Diff([]string{chart.DataGraph, chart.DataMap}, f.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}

	l.SetAutoLoad(false)
	ctx.Set(chart.DataField, chart.DataTable)
	loop.Advance(time.Second)
	if len(f.calls) != 2 || l.AutoLoad() {
		t.Errorf("disabled auto load still loads: %v", f.calls)
	}

	l.Reload()
	loop.Advance(DefaultLoadInterval)
	if len(f.calls) != 3 || f.calls[2] != chart.DataTable {
		t.Errorf("Reload() calls = %v", f.calls)
	}
}

func TestLoader_Failure(t *testing.T) {
	loop, ctx, f, l := newLoaderFixture(t)
	defer ctx.Destroy()
	boom := errors.New("boom")
	f.err = boom

	var failures []any
	l.AddListener(TypeLoadFailed, func(e *event.Event) { failures = append(failures, e.Data) })
	loop.Advance(DefaultLoadInterval)

	if len(failures) != 1 || failures[0] != boom {
		t.Errorf("failures = %v, want [boom]", failures)
	}
	if l.Data() != nil || l.Loadings() != 0 {
		t.Errorf("Data() = %v, Loadings() = %d after failure", l.Data(), l.Loadings())
	}
}

func TestLoader_DestroyedWithContext(t *testing.T) {
	loop, ctx, f, l := newLoaderFixture(t)

	ctx.Destroy()
	if !l.Destroyed() {
		t.Fatal("loader not destroyed with its context")
	}
	loop.Advance(time.Second)
	if len(f.calls) != 0 {
		t.Errorf("destroyed loader fetched: %v", f.calls)
	}
}

func TestLoader_SetData(t *testing.T) {
	_, ctx, _, l := newLoaderFixture(t)
	defer ctx.Destroy()

	count := 0
	l.AddListener(TypeDataUpdated, func(*event.Event) { count++ })

	v := []any{1.0}
	l.SetData(v)
	l.SetData(v)
	if count != 1 {
		t.Errorf("DataUpdated dispatched %d times for the same value, want 1", count)
	}
}

func TestLoader_DefaultsToContextLoop(t *testing.T) {
	ctx := chart.New(nil, nil, chart.WithLogger(logging.Null()))
	defer ctx.Destroy()
	loop := ctx.Loop().(*schedule.ManualLoop)

	f := &fakeFetcher{}
	NewLoader(ctx, f, WithLoaderLogger(logging.Null()))

	loop.Advance(DefaultLoadInterval)
	if diff := cmp.Diff([]string{chart.DataGraph}, f.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}
