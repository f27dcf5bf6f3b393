// Package chart implements the chart context tree: scoped property sets
// where each property is either owned locally or mirrored live from the
// nearest owning ancestor, with bubbling, pause, snapshot and
// cross-tree source overrides.
//
// A Context and everything it reaches is confined to the goroutine running
// its schedule.Loop.
package chart

import (
	"github.com/dshills/chartflow/internal/event"
	"github.com/dshills/chartflow/internal/schedule"
	"github.com/dshills/chartflow/internal/store"
)

type property struct {
	cell        *store.Cell[any]
	owned       bool
	alwaysOwn   bool
	parentUnsub func()
}

type subscription struct {
	id    uint64
	unsub func()
}

// Context is one node of the property propagation tree.
type Context struct {
	*event.Dispatcher

	cfg settings

	props      [optionCount]property
	internal   []func()
	own        map[Option][]*subscription
	nextSub    uint64
	fromParent [optionCount]bool

	parent      *Context
	children    []*Context
	childUnsubs map[*Context]func()

	filters      map[string]*store.Cell[any]
	filterUnsubs map[string]func()

	source        *Context
	sourceOptions []Option
	sourceUnsubs  []func()

	paused   bool
	bubbling bool
	saved    Values

	dataDirty    bool
	chartOptions map[string]any

	changeThrottle *schedule.Throttle
	dataDebounce   *schedule.Debouncer
}

// New creates a context attached to parent (which may be nil). It owns
// exactly the properties present in initial, every property under
// WithInitAll, and those listed by WithAlwaysOwn; the rest mirror the
// parent. Without WithLoop or WithThrottles it schedules on its parent's
// loop, or on a new schedule.ManualLoop when it has no parent.
func New(parent *Context, initial Values, opts ...ContextOption) *Context {
	var cfg settings
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.resolve(parent)

	c := &Context{
		cfg:          cfg,
		own:          make(map[Option][]*subscription),
		childUnsubs:  make(map[*Context]func()),
		filters:      make(map[string]*store.Cell[any]),
		filterUnsubs: make(map[string]func()),
		bubbling:     true,
		dataDirty:    true,
	}

	dopts := []event.Option{
		event.WithKind("chart context"),
		event.WithLogger(cfg.logger),
		event.WithTarget(c),
	}
	if cfg.observer != nil {
		dopts = append(dopts, event.WithObserver(cfg.observer))
	}
	c.Dispatcher = event.NewDispatcher(dopts...)
	c.SetName(cfg.name)

	c.changeThrottle = cfg.throttles.Register(func(names schedule.Names) {
		c.Dispatch(event.New(TypeChangeComplete, names), false)
	}, 0)

	dbOpts := []schedule.DebounceOption{schedule.WithDebounceLogger(cfg.logger)}
	if cfg.schedObserver != nil {
		dbOpts = append(dbOpts, schedule.WithDebounceObserver(cfg.schedObserver))
	}
	c.dataDebounce = schedule.NewDebouncer(cfg.loop, func(names schedule.Names) {
		c.Dispatch(event.New(TypeChangeCompleteDataTerms, names), false)
	}, cfg.debounceInterval, cfg.debounceMax, dbOpts...)

	alwaysOwn := make(map[Option]bool, len(cfg.alwaysOwn))
	for _, o := range cfg.alwaysOwn {
		alwaysOwn[o] = true
	}

	defaults := DefaultValues()
	for o := Option(0); o < optionCount; o++ {
		v, supplied := initial[o]
		if !supplied {
			v = defaults[o]
		}

		cellOpts := []store.Option{store.WithLogger(cfg.logger)}
		if cfg.observer != nil {
			cellOpts = append(cellOpts, store.WithObserver(cfg.observer))
		}
		c.props[o] = property{
			cell:      store.NewDeep[any](v, cellOpts...),
			owned:     supplied || alwaysOwn[o] || cfg.initAll,
			alwaysOwn: alwaysOwn[o],
		}
	}

	for o := Option(0); o < optionCount; o++ {
		o := o
		c.internal = append(c.internal, c.props[o].cell.OnChange(func(value, old any) {
			c.propertyChanged(o, value, old)
		}))
	}

	c.AddListener(event.TypeChangeSilence, c.replaySilenced)

	if parent != nil {
		if err := parent.AddChild(c); err != nil {
			c.Logger().Error("attach %s to %s: %v", c.ID(), parent.ID(), err)
		}
	}

	c.FinishInit()
	return c
}

// propertyChanged is the context's own subscription to every cell. It
// forwards mirrored writes to the parent, feeds the data terms path and
// the change throttle, and dispatches the fine-grained events.
func (c *Context) propertyChanged(o Option, value, old any) {
	p := &c.props[o]

	if c.parent != nil && !p.owned && !c.fromParent[o] && !c.sourced(o) {
		c.parent.Set(o, value)
	}

	change := Change{Option: o, Value: value, OldValue: old}

	if o.DataAffecting() {
		c.dataDirty = true
		c.Dispatch(event.New(TypeChangeDataTerms, change), false)
		c.dataDebounce.Trigger(o.String())
	}

	c.Dispatch(event.New(TypeChange, change), false)
	c.changeThrottle.Trigger(o.String())
}

// replaySilenced re-dispatches the events queued while this context was
// silent. The payload is already reduced to the last event per type.
func (c *Context) replaySilenced(e *event.Event) {
	if e.Target != c {
		return
	}
	queued, _ := e.Data.([]*event.Event)
	for _, q := range queued {
		c.Dispatch(q, false)
	}
}

// Loop returns the loop the context schedules on.
func (c *Context) Loop() schedule.Loop {
	return c.cfg.loop
}

// Value returns the current value of o.
func (c *Context) Value(o Option) any {
	return c.props[o].cell.Value()
}

// RequestedValue returns the last value written to o, which differs from
// Value while the context is paused.
func (c *Context) RequestedValue(o Option) any {
	return c.props[o].cell.RequestedValue()
}

// ValueOf returns the value of o asserted to T.
func ValueOf[T any](c *Context, o Option) (T, bool) {
	v, ok := c.Value(o).(T)
	return v, ok
}

// Values returns a copy of every property value.
func (c *Context) Values() Values {
	out := make(Values, optionCount)
	for o := Option(0); o < optionCount; o++ {
		out[o] = c.Value(o)
	}
	return out
}

// ToMap returns every property keyed by wire name, with nested contexts
// converted to their chart options.
func (c *Context) ToMap() map[string]any {
	return c.Values().ToMap()
}

// Set writes v to o. Writing a []*Context to DataField on a context that
// owns DataField stores clones of those contexts.
func (c *Context) Set(o Option, v any) {
	p := &c.props[o]
	if o == DataField && p.owned {
		if ctxs, ok := v.([]*Context); ok {
			v = cloneContexts(ctxs)
		}
	}
	p.cell.Set(v)
}

// Update sets o to fn applied to its current value.
func (c *Context) Update(o Option, fn func(any) any) {
	c.Set(o, fn(c.Value(o)))
}

// Subscribe calls handler with (value, old) for every change of o and,
// unless ignoreFirst is set, once immediately with the current value.
// The returned function unsubscribes.
func (c *Context) Subscribe(o Option, handler func(value, old any), ignoreFirst bool) func() {
	if handler == nil {
		return func() {}
	}

	cell := c.props[o].cell
	var unsub func()
	if ignoreFirst {
		unsub = cell.OnChange(handler)
	} else {
		unsub = cell.Subscribe(handler)
	}

	c.nextSub++
	sub := &subscription{id: c.nextSub, unsub: unsub}
	c.own[o] = append(c.own[o], sub)

	return func() {
		c.unsubscribe(o, sub.id)
	}
}

func (c *Context) unsubscribe(o Option, id uint64) {
	subs := c.own[o]
	for i, sub := range subs {
		if sub.id != id {
			continue
		}
		sub.unsub()
		c.own[o] = append(subs[:i:i], subs[i+1:]...)
		if len(c.own[o]) == 0 {
			delete(c.own, o)
		}
		return
	}
}

// UnsubscribeAll removes every handler added with Subscribe for o.
func (c *Context) UnsubscribeAll(o Option) {
	subs := c.own[o]
	delete(c.own, o)
	for _, sub := range subs {
		sub.unsub()
	}
}

// Owns reports whether o is owned by this context.
func (c *Context) Owns(o Option) bool {
	return c.props[o].owned
}

// ChartOptions returns the data-affecting properties keyed by wire name.
// The result is memoized until the next data-affecting change and must
// not be modified.
func (c *Context) ChartOptions() map[string]any {
	if c.dataDirty || c.chartOptions == nil {
		opts := make(map[string]any)
		for _, o := range DataOptions() {
			opts[o.String()] = plain(c.Value(o))
		}
		c.chartOptions = opts
		c.dataDirty = false
	}
	return c.chartOptions
}

// plain converts nested contexts into their chart options and copies maps
// and slices.
func plain(v any) any {
	switch x := v.(type) {
	case *Context:
		if x == nil {
			return nil
		}
		return x.ChartOptions()
	case []*Context:
		out := make([]any, len(x))
		for i, ctx := range x {
			out[i] = plain(ctx)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = plain(e)
		}
		return out
	default:
		return v
	}
}

func cloneContexts(ctxs []*Context) []*Context {
	out := make([]*Context, len(ctxs))
	for i, ctx := range ctxs {
		if ctx != nil {
			out[i] = ctx.Clone()
		}
	}
	return out
}
