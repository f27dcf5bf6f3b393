package event

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/chartflow/internal/logging"
	"github.com/google/go-cmp/cmp"
)

func newTestDispatcher(opts ...Option) *Dispatcher {
	return NewDispatcher(append([]Option{WithLogger(logging.Null())}, opts...)...)
}

func types(events []*Event) []Type {
	out := make([]Type, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestNewDispatcher(t *testing.T) {
	d := newTestDispatcher()
	if d == nil {
		t.Fatal("NewDispatcher() returned nil")
	}
	if !d.Initiated() {
		t.Error("expected dispatcher to be initiated after construction")
	}
	if !strings.HasPrefix(d.ID(), "event-dispatcher-") {
		t.Errorf("ID() = %q, want prefix event-dispatcher-", d.ID())
	}
}

func TestDispatcher_Order(t *testing.T) {
	d := newTestDispatcher()
	typ := NewType("order")

	var got []string
	d.AddListener(Any, func(*Event) { got = append(got, "any") })
	d.AddListener(typ, func(*Event) { got = append(got, "first") })
	d.AddListener(typ, func(*Event) { got = append(got, "second") })

	d.Dispatch(New(typ, nil), false)

	want := []string{"first", "second", "any"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("delivery order mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcher_TargetAndOldData(t *testing.T) {
	owner := &struct{ name string }{"owner"}
	d := newTestDispatcher(WithTarget(owner))
	typ := NewType("old data")

	var seen []*Event
	d.AddListener(typ, func(e *Event) { seen = append(seen, e) })

	d.Dispatch(New(typ, 1), false)
	d.Dispatch(New(typ, 2), false)

	if len(seen) != 2 {
		t.Fatalf("got %d events, want 2", len(seen))
	}
	if seen[0].OldData != nil {
		t.Errorf("first OldData = %v, want nil", seen[0].OldData)
	}
	if seen[1].OldData != 1 {
		t.Errorf("second OldData = %v, want 1", seen[1].OldData)
	}
	if seen[1].Target != owner {
		t.Errorf("Target = %v, want owner", seen[1].Target)
	}
	if seen[1].Bubbled() {
		t.Error("locally originated event reported as bubbled")
	}
}

func TestDispatcher_Remember(t *testing.T) {
	d := newTestDispatcher()
	typ := NewType("remember")
	d.Remember(typ, "initial")

	var old any
	d.AddListener(typ, func(e *Event) { old = e.OldData })
	d.Dispatch(New(typ, "next"), false)

	if old != "initial" {
		t.Errorf("OldData = %v, want initial", old)
	}
}

func TestDispatcher_Forwarded(t *testing.T) {
	child := newTestDispatcher()
	parent := newTestDispatcher()
	typ := NewType("forward")

	child.AddListener(Any, func(e *Event) { parent.Dispatch(e, false) })

	var local, forwarded *Event
	child.AddListener(Any, func(e *Event) { local = e })
	parent.AddListener(typ, func(e *Event) { forwarded = e })

	child.Dispatch(New(typ, "x"), false)

	if forwarded == nil {
		t.Fatal("parent did not receive forwarded event")
	}
	if !forwarded.Bubbled() {
		t.Error("forwarded event not marked bubbled")
	}
	if forwarded.Target != child {
		t.Errorf("forwarded Target = %v, want child", forwarded.Target)
	}
	if local == nil || local.Bubbled() {
		t.Error("child listeners must see the original, unbubbled event")
	}
}

func TestDispatcher_RemoveListener(t *testing.T) {
	d := newTestDispatcher()
	typ := NewType("remove")

	calls := 0
	unsubscribe := d.AddListener(typ, func(*Event) { calls++ })
	d.Dispatch(New(typ, nil), false)
	unsubscribe()
	unsubscribe()
	d.Dispatch(New(typ, nil), false)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if n := d.ListenerCount(typ); n != 0 {
		t.Errorf("ListenerCount() = %d, want 0", n)
	}
}

func TestDispatcher_RemoveDuringDispatch(t *testing.T) {
	d := newTestDispatcher()
	typ := NewType("remove during")

	var second func()
	var got []string
	d.AddListener(typ, func(*Event) {
		got = append(got, "first")
		second()
	})
	second = d.AddListener(typ, func(*Event) { got = append(got, "second") })

	d.Dispatch(New(typ, nil), false)

	if diff := cmp.Diff([]string{"first"}, got); diff != "" {
		t.Errorf("removed listener still called (-want +got):\n%s", diff)
	}
}

func TestDispatcher_Listen_Invalid(t *testing.T) {
	d := newTestDispatcher()

	if _, err := d.Listen(NewType("nil"), nil); !errors.Is(err, ErrNilListener) {
		t.Errorf("Listen(nil) error = %v, want ErrNilListener", err)
	}
	if _, err := d.Listen("", func(*Event) {}); !errors.Is(err, ErrInvalidType) {
		t.Errorf("Listen(\"\") error = %v, want ErrInvalidType", err)
	}

	// Must be a harmless no-op.
	d.AddListener("", nil)()
}

func TestDispatcher_PanicIsolation(t *testing.T) {
	var perr *PanicError
	d := newTestDispatcher(WithPanicHandler(func(err *PanicError) { perr = err }))
	typ := NewType("panic")

	sibling := false
	d.AddListener(typ, func(*Event) { panic("boom") })
	d.AddListener(typ, func(*Event) { sibling = true })

	d.Dispatch(New(typ, nil), false)

	if !sibling {
		t.Error("sibling listener did not run after panic")
	}
	if perr == nil {
		t.Fatal("panic handler not called")
	}
	if !errors.Is(perr, ErrListenerPanic) {
		t.Error("PanicError does not match ErrListenerPanic")
	}
	if perr.Value != "boom" {
		t.Errorf("PanicError.Value = %v, want boom", perr.Value)
	}
}

func TestDedup(t *testing.T) {
	a, b, c := NewType("dedup a"), NewType("dedup b"), NewType("dedup c")
	first := New(a, 1)
	second := New(a, 2)

	got := Dedup([]*Event{first, New(b, nil), second, New(c, nil)})

	if diff := cmp.Diff([]Type{b, a, c}, types(got)); diff != "" {
		t.Errorf("Dedup() order mismatch (-want +got):\n%s", diff)
	}
	if got[1] != second {
		t.Error("Dedup() kept the first occurrence instead of the last")
	}
	if Dedup(nil) != nil {
		t.Error("Dedup(nil) should be nil")
	}
}

func TestDispatcher_Silent(t *testing.T) {
	d := newTestDispatcher()
	a, b, c := NewType("silent a"), NewType("silent b"), NewType("silent c")

	delivered := 0
	d.AddListener(a, func(*Event) { delivered++ })

	var flushes []*Event
	d.AddListener(TypeChangeSilence, func(e *Event) { flushes = append(flushes, e) })

	d.SetSilent(true)
	d.SetSilent(true)
	if !d.Silent() {
		t.Fatal("expected Silent() true")
	}

	d.Dispatch(New(a, 1), false)
	d.Dispatch(New(b, nil), false)
	d.Dispatch(New(a, 2), false)
	d.Dispatch(New(c, nil), false)

	if delivered != 0 {
		t.Errorf("delivered %d events while silent, want 0", delivered)
	}

	d.SetSilent(false)

	if len(flushes) != 2 {
		t.Fatalf("got %d silence events, want 2", len(flushes))
	}
	if flushes[0].Data != nil {
		t.Errorf("silence start Data = %v, want nil", flushes[0].Data)
	}
	queued, ok := flushes[1].Data.([]*Event)
	if !ok {
		t.Fatalf("silence end Data has type %T, want []*Event", flushes[1].Data)
	}
	if diff := cmp.Diff([]Type{b, a, c}, types(queued)); diff != "" {
		t.Errorf("flushed order mismatch (-want +got):\n%s", diff)
	}
	if queued[1].Data != 2 {
		t.Errorf("flushed A data = %v, want 2", queued[1].Data)
	}
}

func TestDispatcher_ForceWhileSilent(t *testing.T) {
	d := newTestDispatcher()
	typ := NewType("force")

	calls := 0
	d.AddListener(typ, func(*Event) { calls++ })

	d.SetSilent(true)
	d.Dispatch(New(typ, nil), true)

	if calls != 1 {
		t.Errorf("forced dispatch calls = %d, want 1", calls)
	}
}

func TestDispatcher_DispatchAfterDestroy(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(WithLogger(logging.New(logging.Config{Level: logging.LevelWarn, Output: &buf})))
	typ := NewType("after destroy")

	d.Destroy()
	d.Dispatch(New(typ, nil), false)

	if !strings.Contains(buf.String(), "destroyed dispatcher") {
		t.Errorf("expected warning, got %q", buf.String())
	}
	if d.ListenerCount(typ) != 0 {
		t.Error("expected listeners to be cleared on Destroy()")
	}
}

type countingObserver struct {
	dispatched int
	panicked   int
}

func (o *countingObserver) EventDispatched(string)  { o.dispatched++ }
func (o *countingObserver) ListenerPanicked(string) { o.panicked++ }

func TestDispatcher_Observer(t *testing.T) {
	obs := &countingObserver{}
	d := newTestDispatcher(WithObserver(obs))
	typ := NewType("observed")

	d.AddListener(typ, func(*Event) { panic("x") })
	d.Dispatch(New(typ, nil), false)
	d.Dispatch(New(typ, nil), false)

	if obs.dispatched != 2 {
		t.Errorf("dispatched = %d, want 2", obs.dispatched)
	}
	if obs.panicked != 2 {
		t.Errorf("panicked = %d, want 2", obs.panicked)
	}
}
