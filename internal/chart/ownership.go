package chart

// Init makes o owned by c. The optional value is written to o; without it
// the current value is kept. Further parent writes no longer reach o.
func (c *Context) Init(o Option, value ...any) {
	v := c.Value(o)
	if len(value) > 0 {
		v = value[0]
	}

	p := &c.props[o]
	if !p.owned {
		if p.parentUnsub != nil {
			p.parentUnsub()
			p.parentUnsub = nil
		}
		p.owned = true
	}

	c.Set(o, v)
}

// InitAll makes every property owned, keeping current values.
func (c *Context) InitAll() {
	for o := Option(0); o < optionCount; o++ {
		c.Init(o)
	}
}

// Delete makes o mirror the parent again and adopts the parent's current
// value, unless a source override pins o. Mirrored and permanently owned
// properties are left alone.
func (c *Context) Delete(o Option) {
	p := &c.props[o]
	if !p.owned || p.alwaysOwn {
		return
	}
	p.owned = false

	if c.parent != nil {
		c.subscribeParent(o)
	}
}

// SetSourceProperties pins the listed properties to the values of src.
// While pinned, writes from the parent are ignored for those properties.
// Ownership is not changed. Any previous source is removed first; a nil
// src only removes it.
func (c *Context) SetSourceProperties(src *Context, opts ...Option) {
	c.RemoveSourceProperties()
	if src == nil {
		return
	}

	c.source = src
	c.sourceOptions = append([]Option(nil), opts...)

	for _, o := range c.sourceOptions {
		o := o
		c.sourceUnsubs = append(c.sourceUnsubs, src.props[o].cell.Subscribe(func(value, _ any) {
			if c.sourced(o) {
				c.Set(o, value)
			}
		}))
	}
}

// RemoveSourceProperties drops the source override. Pinned properties
// that mirror the parent adopt the parent's current value again; owned
// ones keep their value.
func (c *Context) RemoveSourceProperties() {
	if c.source == nil {
		return
	}

	for _, unsub := range c.sourceUnsubs {
		unsub()
	}
	released := c.sourceOptions
	c.source = nil
	c.sourceOptions = nil
	c.sourceUnsubs = nil

	if c.parent == nil {
		return
	}
	for _, o := range released {
		if !c.props[o].owned {
			c.setFromParent(o, c.parent.Value(o))
		}
	}
}

// Source returns the source context and the pinned properties.
func (c *Context) Source() (*Context, []Option) {
	return c.source, append([]Option(nil), c.sourceOptions...)
}

func (c *Context) sourced(o Option) bool {
	if c.source == nil {
		return false
	}
	for _, s := range c.sourceOptions {
		if s == o {
			return true
		}
	}
	return false
}
