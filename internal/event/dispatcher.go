package event

import (
	"runtime/debug"

	"github.com/dshills/chartflow/internal/component"
	"github.com/dshills/chartflow/internal/logging"
)

// Listener handles an event.
type Listener func(e *Event)

// ListenerID identifies a registered listener.
type ListenerID uint64

type registration struct {
	id     ListenerID
	fn     Listener
	active bool
}

// Dispatcher is a synchronous publish/subscribe bus owned by one component.
// It is not safe for concurrent use; callers confine it to one goroutine.
type Dispatcher struct {
	component.Base

	kind         string
	logger       *logging.Logger
	target       any
	panicHandler PanicHandler
	observer     Observer

	listeners map[Type][]*registration
	nextID    ListenerID
	lastData  map[Type]any

	silent bool
	queue  []*Event
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		kind:      "event dispatcher",
		listeners: make(map[Type][]*registration),
		lastData:  make(map[Type]any),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.Base = component.NewBase(d.kind, d.logger)
	if d.target == nil {
		d.target = d
	}
	d.FinishInit()
	return d
}

// Listen registers fn for events of type t and returns its id.
func (d *Dispatcher) Listen(t Type, fn Listener) (ListenerID, error) {
	if fn == nil {
		return 0, ErrNilListener
	}
	if t == "" {
		return 0, ErrInvalidType
	}

	d.nextID++
	reg := &registration{id: d.nextID, fn: fn, active: true}
	d.listeners[t] = append(d.listeners[t], reg)
	return reg.id, nil
}

// AddListener registers fn for events of type t and returns a function
// that removes it. The returned function is idempotent. Invalid arguments
// register nothing and return a no-op.
func (d *Dispatcher) AddListener(t Type, fn Listener) func() {
	id, err := d.Listen(t, fn)
	if err != nil {
		d.Logger().Warn("add listener for %q: %v", t, err)
		return func() {}
	}
	return func() {
		d.RemoveListener(t, id)
	}
}

// RemoveListener removes the listener with the given id. It reports
// whether a listener was removed.
func (d *Dispatcher) RemoveListener(t Type, id ListenerID) bool {
	regs := d.listeners[t]
	for i, reg := range regs {
		if reg.id != id {
			continue
		}
		reg.active = false
		d.listeners[t] = append(regs[:i:i], regs[i+1:]...)
		if len(d.listeners[t]) == 0 {
			delete(d.listeners, t)
		}
		return true
	}
	return false
}

// ListenerCount returns the number of listeners registered for t.
func (d *Dispatcher) ListenerCount(t Type) int {
	return len(d.listeners[t])
}

// Remember seeds the data reported as OldData for the next locally
// originated event of type t.
func (d *Dispatcher) Remember(t Type, data any) {
	d.lastData[t] = data
}

// Dispatch delivers e to the listeners of e.Type and then to wildcard
// listeners. While silent the event is queued unless force is set.
//
// An event without a Target is stamped with this dispatcher's target and
// the previous data of its type. An event that already has a Target was
// forwarded from elsewhere; it is delivered as a bubbled copy.
func (d *Dispatcher) Dispatch(e *Event, force bool) {
	if e == nil {
		return
	}
	if d.Destroyed() {
		d.Logger().Warn("dispatch %s from destroyed dispatcher %s", e.Type, d.ID())
	}

	if !force && d.silent {
		d.queue = append(d.queue, e)
		return
	}

	if e.Target == nil {
		e.Target = d.target
		e.OldData = d.lastData[e.Type]
		d.lastData[e.Type] = e.Data
	} else {
		fwd := *e
		fwd.bubbled = true
		e = &fwd
	}

	if d.observer != nil {
		d.observer.EventDispatched(string(e.Type))
	}

	d.deliver(e, d.listeners[e.Type])
	if e.Type != Any {
		d.deliver(e, d.listeners[Any])
	}
}

// deliver calls a snapshot of regs so that listeners may add or remove
// listeners while the event is being delivered. Removed listeners are
// skipped.
func (d *Dispatcher) deliver(e *Event, regs []*registration) {
	if len(regs) == 0 {
		return
	}
	snapshot := make([]*registration, len(regs))
	copy(snapshot, regs)

	for _, reg := range snapshot {
		if !reg.active {
			continue
		}
		d.call(e, reg)
	}
}

func (d *Dispatcher) call(e *Event, reg *registration) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		perr := &PanicError{Type: e.Type, Listener: reg.id, Value: r, Stack: debug.Stack()}
		d.Logger().Error("%s: %v\n%s", d.ID(), perr, perr.Stack)
		if d.observer != nil {
			d.observer.ListenerPanicked(string(e.Type))
		}
		if d.panicHandler != nil {
			func() {
				defer func() { _ = recover() }()
				d.panicHandler(perr)
			}()
		}
	}()
	reg.fn(e)
}

// Silent reports whether dispatch is suspended.
func (d *Dispatcher) Silent() bool {
	return d.silent
}

// SetSilent suspends or resumes dispatch. Every toggle dispatches a forced
// TypeChangeSilence event: with nil data when silence starts, and with
// the queued events deduplicated by Dedup when it ends.
func (d *Dispatcher) SetSilent(silent bool) {
	if d.silent == silent {
		return
	}
	d.silent = silent

	var payload []*Event
	if !silent {
		payload = Dedup(d.queue)
	}
	d.queue = nil

	if silent {
		d.Dispatch(New(TypeChangeSilence, nil), true)
		return
	}
	d.Dispatch(New(TypeChangeSilence, payload), true)
}

// Destroy marks the dispatcher destroyed and drops every listener.
func (d *Dispatcher) Destroy() {
	d.Base.Destroy()
	for _, regs := range d.listeners {
		for _, reg := range regs {
			reg.active = false
		}
	}
	d.listeners = make(map[Type][]*registration)
	d.queue = nil
}
