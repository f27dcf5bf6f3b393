package app

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/chartflow/internal/chart"
	"github.com/dshills/chartflow/internal/config"
	"github.com/dshills/chartflow/internal/data"
	"github.com/dshills/chartflow/internal/event"
	"github.com/dshills/chartflow/internal/logging"
	"github.com/dshills/chartflow/internal/metrics"
	"github.com/dshills/chartflow/internal/palette"
	"github.com/dshills/chartflow/internal/schedule"
)

// defaultSettings is the configuration every file is merged over.
func defaultSettings() map[string]any {
	return map[string]any{
		"log":    map[string]any{"level": "info"},
		"server": map[string]any{"addr": ""},
		"data": map[string]any{
			"dir":          ".",
			"api":          "",
			"cache_ttl_ms": 60000.0,
		},
		"loader": map[string]any{
			"interval_ms": float64(data.DefaultLoadInterval.Milliseconds()),
			"max_ms":      float64(data.DefaultLoadMax.Milliseconds()),
		},
		"context": map[string]any{},
		"scales":  map[string]any{},
	}
}

// overrides returns the settings given on the command line.
func (o Options) overrides() map[string]any {
	out := map[string]any{}
	set := func(section, key, value string) {
		if value == "" {
			return
		}
		m, _ := out[section].(map[string]any)
		if m == nil {
			m = map[string]any{}
			out[section] = m
		}
		m[key] = value
	}
	set("log", "level", o.LogLevel)
	set("server", "addr", o.Addr)
	set("data", "dir", o.DataDir)
	set("data", "api", o.APIURL)
	return out
}

// bootstrapper handles component initialization with cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

func newBootstrapper(app *Application) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      app.opts,
		initOrder: make([]string, 0, 8),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"logger", b.initLogger},
		{"config", b.initConfig},
		{"metrics", b.initMetrics},
		{"scheduler", b.initScheduler},
		{"palette", b.initPalette},
		{"contexts", b.initContexts},
		{"data", b.initData},
	}
	for _, step := range steps {
		if err := step.init(); err != nil {
			b.cleanup()
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	b.app.wire()
	b.app.logger.Debug("bootstrap complete: %s", strings.Join(b.initOrder, ", "))
	return nil
}

func (b *bootstrapper) initLogger() error {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(b.opts.LogLevel)
	b.app.logger = logging.New(cfg)
	return nil
}

// initConfig loads the configuration file over the defaults and applies
// command line overrides on top.
func (b *bootstrapper) initConfig() error {
	settings := defaultSettings()
	if b.opts.ConfigPath != "" {
		file, err := config.Load(b.opts.ConfigPath)
		if err != nil {
			return err
		}
		if file == nil {
			b.app.logger.Warn("config file %s not found, using defaults", b.opts.ConfigPath)
		}
		settings = config.DeepMerge(settings, file)
	}
	settings = config.DeepMerge(settings, b.opts.overrides())

	b.app.settings = config.NewConfigurable(
		event.WithLogger(b.app.logger.WithComponent("config")),
	)
	b.app.settings.SetDefaultConfig(defaultSettings())
	b.app.settings.SetConfig(settings)

	if b.opts.LogLevel == "" {
		b.app.logger.SetLevel(logging.ParseLevel(b.app.setting("log.level", "info")))
	}
	return nil
}

func (b *bootstrapper) initMetrics() error {
	b.app.registry = prometheus.NewRegistry()
	m, err := metrics.New(b.app.registry)
	if err != nil {
		return err
	}
	b.app.metrics = m
	return nil
}

func (b *bootstrapper) initScheduler() error {
	logger := b.app.logger.WithComponent("schedule")
	b.app.loop = schedule.NewRealLoop(schedule.WithLoopLogger(logger))
	b.app.throttle = schedule.NewThrottleService(b.app.loop,
		schedule.WithServiceLogger(logger),
		schedule.WithServiceObserver(b.app.metrics),
	)
	return nil
}

func (b *bootstrapper) initPalette() error {
	b.app.scales = palette.NewRegistry()
	return b.app.registerScales()
}

func (b *bootstrapper) initContexts() error {
	initial, err := b.app.contextValues()
	if err != nil {
		return err
	}
	b.app.contexts = chart.NewRegistry(
		chart.WithLoop(b.app.loop),
		chart.WithThrottles(b.app.throttle),
		chart.WithLogger(b.app.logger.WithComponent("chart")),
		chart.WithObserver(b.app.metrics),
	)
	b.app.root = b.app.contexts.Create(RootContext, initial)
	b.app.metrics.SetContexts(len(b.app.contexts.Names()))
	return nil
}

func (b *bootstrapper) initData() error {
	logger := b.app.logger.WithComponent("data")
	source := data.CSVSource{Dir: b.app.setting("data.dir", ".")}

	var fetcher data.Fetcher = data.SourceFetcher{Source: source}
	if base := b.app.setting("data.api", ""); base != "" {
		fetcher = data.NewClient(base,
			data.WithCacheTTL(b.app.millis("data.cache_ttl_ms", 0)),
			data.WithClientLogger(logger),
			data.WithClientMetrics(b.app.metrics),
		)
		logger.Info("loading data from %s", base)
	}

	b.app.api = data.NewAPI(source, logger, b.app.metrics)
	b.app.loader = data.NewLoader(b.app.root, fetcher,
		data.WithLoaderLoop(b.app.loop),
		data.WithLoaderLogger(logger),
		data.WithLoadDebounce(
			b.app.millis("loader.interval_ms", data.DefaultLoadInterval),
			b.app.millis("loader.max_ms", data.DefaultLoadMax),
		),
	)
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "data":
			if b.app.loader != nil {
				b.app.loader.Destroy()
				b.app.loader = nil
			}
		case "contexts":
			if b.app.contexts != nil {
				b.app.contexts.Close()
				b.app.contexts = nil
				b.app.root = nil
			}
		case "config":
			if b.app.settings != nil {
				b.app.settings.Destroy()
			}
		}
	}
}

// registerScales registers every [scales.NAME] section.
func (app *Application) registerScales() error {
	section, _ := app.settings.Get("scales")
	scales, _ := section.(map[string]any)
	for name, v := range scales {
		entries, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("scale %s: want a table of colours, got %T", name, v)
		}
		stops, err := palette.LoadStops(entries)
		if err != nil {
			return fmt.Errorf("scale %s: %w", name, err)
		}
		scale, err := palette.NewScale(stops)
		if err != nil {
			return fmt.Errorf("scale %s: %w", name, err)
		}
		app.scales.Register(name, scale)
	}
	return nil
}

// contextValues returns the chart properties of the [context] section.
func (app *Application) contextValues() (chart.Values, error) {
	section, _ := app.settings.Get("context")
	m, _ := section.(map[string]any)
	return chart.ParseValues(m)
}
