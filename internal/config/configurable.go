// Package config provides the configurable component base, nested
// configuration merging, TOML/YAML file loading and file watching.
package config

import (
	"github.com/dshills/chartflow/internal/event"
	"github.com/dshills/chartflow/internal/store"
)

// TypeChangeConfig is dispatched with the new configuration whenever it
// changes.
var TypeChangeConfig = event.NewType("change config")

// Configurable is a component carrying a nested configuration map.
//
// The first configuration assigned becomes the default unless one was set
// with SetDefaultConfig. A Configurable is not safe for concurrent use.
type Configurable struct {
	*event.Dispatcher

	config        map[string]any
	defaultConfig map[string]any
	hasDefault    bool
}

// NewConfigurable creates a configurable component with an empty config.
func NewConfigurable(opts ...event.Option) *Configurable {
	c := &Configurable{}
	c.Dispatcher = event.NewDispatcher(append([]event.Option{
		event.WithKind("configurable"),
		event.WithTarget(c),
	}, opts...)...)
	return c
}

// Config returns the current configuration. Callers must not mutate it.
func (c *Configurable) Config() map[string]any {
	return c.config
}

// Get returns the configuration value at a dot-separated path.
func (c *Configurable) Get(path string) (any, bool) {
	return GetByPath(c.config, path)
}

// DefaultConfig returns the configuration ResetConfig restores.
func (c *Configurable) DefaultConfig() map[string]any {
	return c.defaultConfig
}

// SetDefaultConfig replaces the default configuration.
func (c *Configurable) SetDefaultConfig(cfg map[string]any) {
	c.defaultConfig = cfg
	c.hasDefault = true
}

// SetConfig assigns cfg. Assigning the identical map is a no-op.
func (c *Configurable) SetConfig(cfg map[string]any) {
	if store.Identical(cfg, c.config) {
		return
	}
	c.config = cfg
	if !c.hasDefault {
		c.SetDefaultConfig(cfg)
	}
	c.Dispatch(event.New(TypeChangeConfig, cfg), false)
}

// MergeConfig deep-merges cfg into a copy of the current configuration and
// assigns the result.
func (c *Configurable) MergeConfig(cfg map[string]any) {
	c.SetConfig(DeepMerge(Clone(c.config), cfg))
}

// ResetConfig restores a copy of the default configuration, or an empty
// one when there is none.
func (c *Configurable) ResetConfig() {
	if c.defaultConfig == nil {
		c.SetConfig(map[string]any{})
		return
	}
	c.SetConfig(Clone(c.defaultConfig))
}
