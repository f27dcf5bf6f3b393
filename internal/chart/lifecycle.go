package chart

import "github.com/dshills/chartflow/internal/event"

// Paused reports whether notifications are frozen.
func (c *Context) Paused() bool {
	return c.paused
}

// SetPaused freezes or releases every property cell of c (not of its
// children). While paused, writes are recorded as requested values;
// releasing fires at most one change per property.
func (c *Context) SetPaused(paused bool) {
	if c.paused == paused {
		return
	}
	for o := Option(0); o < optionCount; o++ {
		c.props[o].cell.SetPaused(paused)
	}
	c.paused = paused
	c.Dispatch(event.New(TypeChangePause, paused), false)
}

// Save snapshots every property value for Reset.
func (c *Context) Save() {
	c.saved = c.Values()
}

// HasSnapshot reports whether Save has been called.
func (c *Context) HasSnapshot() bool {
	return c.saved != nil
}

// Reset re-applies the saved snapshot under pause, producing one change
// per differing property and then a single TypeReset event. Filter cells
// are restored to the saved Filters projection. A context that was
// already paused stays paused.
func (c *Context) Reset() error {
	if c.saved == nil {
		return ErrNoSnapshot
	}

	wasPaused := c.paused
	c.SetPaused(true)
	for o := Option(0); o < optionCount; o++ {
		if v, ok := c.saved[o]; ok {
			c.Set(o, v)
		}
	}
	c.restoreFilters(c.saved[Filters])
	if !wasPaused {
		c.SetPaused(false)
	}

	c.Dispatch(event.New(TypeReset, nil), false)
	return nil
}

// Clone returns a new parentless context owning every property with c's
// current values. Contexts held in DataField are cloned as well.
func (c *Context) Clone() *Context {
	vals := c.Values()
	if ctxs, ok := vals[DataField].([]*Context); ok {
		vals[DataField] = cloneContexts(ctxs)
	}
	if f, ok := vals[Filters].(map[string]any); ok {
		vals[Filters] = plain(f)
	}
	return New(nil, vals, c.cfg.inherited()...)
}

// Destroy tears c down: the source override, parent and children are
// detached, every subscription is released phase by phase, schedulers
// are stopped and cells destroyed, and only then TypeDestroyed is
// dispatched. Children are detached, not destroyed. Destroying twice is
// logged and otherwise harmless.
func (c *Context) Destroy() {
	if c.Destroyed() {
		c.Logger().Warn("attempt to destroy already destroyed context %s", c.ID())
	}

	c.safely("source", c.RemoveSourceProperties)
	c.safely("parent", func() { _ = c.SetParent(nil) })
	c.safely("children", func() {
		for _, child := range c.Children() {
			c.RemoveChild(child)
		}
	})

	c.safely("parent subscriptions", c.unsubscribeParent)
	c.safely("filter subscriptions", func() {
		for name, unsub := range c.filterUnsubs {
			unsub()
			delete(c.filterUnsubs, name)
		}
	})
	c.safely("own subscriptions", func() {
		for o := range c.own {
			c.UnsubscribeAll(o)
		}
		for _, unsub := range c.internal {
			unsub()
		}
		c.internal = nil
	})

	c.changeThrottle.Stop()
	c.dataDebounce.Stop()

	for o := Option(0); o < optionCount; o++ {
		c.props[o].cell.Destroy()
	}
	for _, cell := range c.filters {
		cell.Destroy()
	}

	c.Dispatch(event.New(TypeDestroyed, nil), false)
	if !c.Destroyed() {
		c.Dispatcher.Destroy()
	}
}

// safely runs one teardown phase, logging instead of propagating a panic
// so that the remaining phases still run.
func (c *Context) safely(phase string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.Logger().Error("unsubscribe error in %s teardown of %s: %v", phase, c.ID(), r)
		}
	}()
	fn()
}
