package chart

import "sort"

// Registry keeps root contexts by name.
type Registry struct {
	opts     []ContextOption
	contexts map[string]*Context
}

// NewRegistry creates a registry whose contexts are built with opts.
func NewRegistry(opts ...ContextOption) *Registry {
	return &Registry{
		opts:     opts,
		contexts: make(map[string]*Context),
	}
}

// Create builds a parentless context under name, destroying any context
// previously registered under it.
func (r *Registry) Create(name string, initial Values) *Context {
	if old, ok := r.contexts[name]; ok {
		old.Destroy()
	}
	opts := append(append([]ContextOption(nil), r.opts...), WithName(name))
	ctx := New(nil, initial, opts...)
	r.contexts[name] = ctx
	return ctx
}

// GetOrCreate returns the context registered under name, owning and
// setting every supplied value on it, or creates it.
func (r *Registry) GetOrCreate(name string, initial Values) *Context {
	ctx, ok := r.contexts[name]
	if !ok {
		return r.Create(name, initial)
	}
	for _, o := range AllOptions() {
		if v, ok := initial[o]; ok {
			ctx.Init(o, v)
		}
	}
	return ctx
}

// Get returns the context registered under name.
func (r *Registry) Get(name string) (*Context, bool) {
	ctx, ok := r.contexts[name]
	return ctx, ok
}

// Exists reports whether a context is registered under name.
func (r *Registry) Exists(name string) bool {
	_, ok := r.contexts[name]
	return ok
}

// Delete destroys and unregisters the named context.
func (r *Registry) Delete(name string) bool {
	ctx, ok := r.contexts[name]
	if !ok {
		return false
	}
	delete(r.contexts, name)
	ctx.Destroy()
	return true
}

// Names returns the registered names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.contexts))
	for name := range r.contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close destroys every registered context.
func (r *Registry) Close() {
	for _, name := range r.Names() {
		r.Delete(name)
	}
}
