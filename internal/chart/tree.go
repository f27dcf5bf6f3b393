package chart

import "github.com/dshills/chartflow/internal/event"

// Parent returns the parent context, or nil.
func (c *Context) Parent() *Context {
	return c.parent
}

// SetParent reparents c. A nil parent detaches it. Reparenting onto c
// itself or onto one of its descendants returns ErrCycle and changes
// nothing.
func (c *Context) SetParent(p *Context) error {
	if p == c.parent {
		return nil
	}
	if p == nil {
		c.attach(nil)
		return nil
	}
	return p.AddChild(c)
}

// AddChild makes child inherit from c. The child is detached from its
// previous parent, resubscribes every mirrored property to c and adopts
// c's current values.
func (c *Context) AddChild(child *Context) error {
	if child == nil {
		return ErrNilContext
	}
	if c.Destroyed() || child.Destroyed() {
		return ErrDestroyed
	}
	if c.hasChild(child) {
		return nil
	}
	if c.descendsFrom(child) {
		return ErrCycle
	}

	c.childUnsubs[child] = child.AddListener(event.Any, func(e *event.Event) {
		if child.bubbling {
			c.Dispatch(e, false)
		}
	})
	c.children = append(c.children, child)

	child.attach(c)

	c.Dispatch(event.New(TypeAddChild, child), false)
	return nil
}

// RemoveChild detaches child from c. Unknown children are ignored.
func (c *Context) RemoveChild(child *Context) {
	if !c.hasChild(child) {
		return
	}
	if child.parent == c {
		child.attach(nil)
		return
	}
	c.dropChild(child)
}

// attach performs the child side of reparenting.
func (c *Context) attach(p *Context) {
	if old := c.parent; old != nil {
		c.parent = nil
		old.dropChild(c)
	}

	c.unsubscribeParent()

	if p != nil && p.hasChild(c) {
		c.parent = p
		for o := Option(0); o < optionCount; o++ {
			if !c.props[o].owned {
				c.subscribeParent(o)
			}
		}
	}

	var data any
	if p != nil {
		data = p
	}
	c.Dispatch(event.New(TypeChangeParent, data), false)
}

func (c *Context) dropChild(child *Context) {
	idx := -1
	for i, ch := range c.children {
		if ch == child {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	c.children = append(c.children[:idx:idx], c.children[idx+1:]...)
	if unsub, ok := c.childUnsubs[child]; ok {
		unsub()
		delete(c.childUnsubs, child)
	}
	c.Dispatch(event.New(TypeRemoveChild, child), false)
}

// subscribeParent mirrors o from the parent, adopting its current value
// immediately.
func (c *Context) subscribeParent(o Option) {
	p := &c.props[o]
	if p.parentUnsub != nil {
		p.parentUnsub()
	}
	p.parentUnsub = c.parent.props[o].cell.Subscribe(func(value, _ any) {
		c.setFromParent(o, value)
	})
}

func (c *Context) unsubscribeParent() {
	for o := Option(0); o < optionCount; o++ {
		p := &c.props[o]
		if p.parentUnsub != nil {
			p.parentUnsub()
			p.parentUnsub = nil
		}
	}
}

// setFromParent applies a mirrored write unless a source override pins o.
func (c *Context) setFromParent(o Option, value any) {
	if c.sourced(o) {
		return
	}
	c.fromParent[o] = true
	defer func() { c.fromParent[o] = false }()
	c.Set(o, value)
}

func (c *Context) hasChild(child *Context) bool {
	for _, ch := range c.children {
		if ch == child {
			return true
		}
	}
	return false
}

// descendsFrom reports whether c is ancestor or c itself.
func (c *Context) descendsFrom(ancestor *Context) bool {
	for p := c; p != nil; p = p.parent {
		if p == ancestor {
			return true
		}
	}
	return false
}

// Children returns the direct children in insertion order.
func (c *Context) Children() []*Context {
	out := make([]*Context, len(c.children))
	copy(out, c.children)
	return out
}

// AllChildren returns every descendant, depth first.
func (c *Context) AllChildren() []*Context {
	var out []*Context
	for _, ch := range c.children {
		out = append(out, ch)
		out = append(out, ch.AllChildren()...)
	}
	return out
}

// Ancestor returns the root of c's tree.
func (c *Context) Ancestor() *Context {
	root := c
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Bubbling reports whether c forwards its events to its parent.
func (c *Context) Bubbling() bool {
	return c.bubbling
}

// SetBubbling toggles forwarding of c's events to its parent.
func (c *Context) SetBubbling(bubbling bool) {
	if c.bubbling == bubbling {
		return
	}
	c.bubbling = bubbling
	c.Dispatch(event.New(TypeChangeEventBubbling, bubbling), false)
}
