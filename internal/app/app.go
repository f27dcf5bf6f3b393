// Package app wires the chartflow components together: configuration,
// the scheduling loop, chart contexts, colour scales, data loading, the
// graph view, the HTTP surface and file watchers. It manages the
// application lifecycle.
package app

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/chartflow/internal/chart"
	"github.com/dshills/chartflow/internal/config"
	"github.com/dshills/chartflow/internal/data"
	"github.com/dshills/chartflow/internal/graph"
	"github.com/dshills/chartflow/internal/logging"
	"github.com/dshills/chartflow/internal/metrics"
	"github.com/dshills/chartflow/internal/palette"
	"github.com/dshills/chartflow/internal/schedule"
)

// RootContext is the registry name of the application's chart context.
const RootContext = "main"

// Application is the central coordinator for all chartflow components.
//
// Everything reachable from the chart context is confined to the loop
// goroutine once Run starts; other goroutines reach it through call.
type Application struct {
	opts Options

	// Infrastructure
	logger   *logging.Logger
	registry *prometheus.Registry
	metrics  *metrics.Collectors
	settings *config.Configurable
	loop     *schedule.RealLoop
	throttle *schedule.ThrottleService

	// Chart components
	scales   *palette.Registry
	contexts *chart.Registry
	root     *chart.Context
	loader   *data.Loader
	api      *data.API

	// Graph state, owned by the loop
	graphData *graph.Data
	graph     *graph.Graph
	view      *graph.View
	unbind    func()

	// Outer surfaces
	server   *http.Server
	watchers []*config.Watcher

	running atomic.Bool
}

// Options configures the application. Non-empty fields take precedence
// over the configuration file.
type Options struct {
	// ConfigPath is the TOML or YAML configuration file. It is watched
	// while the application runs.
	ConfigPath string

	// OptionsPath is a JSON file of chart properties keyed by wire name,
	// applied to the chart context on start and whenever it changes.
	OptionsPath string

	// DataDir holds nodes.csv and relationships.csv.
	DataDir string

	// APIURL is the base URL of a remote data API. When empty data is
	// read from DataDir in process.
	APIURL string

	// Addr is the HTTP listen address. When empty nothing is served.
	Addr string

	// LogLevel sets the logging verbosity.
	LogLevel string

	// ShutdownTimeout bounds Shutdown. Defaults to 5s.
	ShutdownTimeout time.Duration
}

// New creates an application with the given options. Components are
// initialized in dependency order; the first failure is returned as an
// *InitError.
func New(opts Options) (*Application, error) {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	app := &Application{opts: opts}
	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	return app, nil
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.logger
}

// Running reports whether Run is executing.
func (app *Application) Running() bool {
	return app.running.Load()
}

// Addr returns the configured listen address.
func (app *Application) Addr() string {
	return app.setting("server.addr", "")
}

// call runs fn on the loop goroutine and waits for it.
func (app *Application) call(ctx context.Context, fn func()) error {
	if !app.loop.Running() {
		return ErrNotRunning
	}
	return app.loop.Call(ctx, fn)
}

// setting returns the string at path or fallback.
func (app *Application) setting(path, fallback string) string {
	if v, ok := app.settings.Get(path); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}

// millis returns the millisecond duration at path or fallback.
func (app *Application) millis(path string, fallback time.Duration) time.Duration {
	if v, ok := app.settings.Get(path); ok {
		if f, ok := v.(float64); ok && f >= 0 {
			return time.Duration(f * float64(time.Millisecond))
		}
	}
	return fallback
}
