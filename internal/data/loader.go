package data

import (
	"context"
	"time"

	"github.com/dshills/chartflow/internal/chart"
	"github.com/dshills/chartflow/internal/event"
	"github.com/dshills/chartflow/internal/logging"
	"github.com/dshills/chartflow/internal/schedule"
	"github.com/dshills/chartflow/internal/store"
)

// Loader event types.
var (
	// TypeDataUpdated is dispatched with the new data after a load.
	TypeDataUpdated = event.NewType("DATA_UPDATED")

	// TypeLoadFailed is dispatched with the error of a failed load.
	TypeLoadFailed = event.NewType("DATA_LOAD_FAILED")

	// TypeLoadingChanged is dispatched with the number of loads in flight.
	TypeLoadingChanged = event.NewType("LOADING_CHANGED")
)

// Default load session timings.
const (
	DefaultLoadInterval = 400 * time.Millisecond
	DefaultLoadMax      = 1200 * time.Millisecond
)

// LoaderOption configures a Loader.
type LoaderOption func(*loaderConfig)

type loaderConfig struct {
	loop     schedule.Loop
	logger   *logging.Logger
	interval time.Duration
	max      time.Duration
}

// WithLoaderLoop sets the loop the loader's debouncer and results run on.
// It must be the loop of the chart context, which is the default.
func WithLoaderLoop(loop schedule.Loop) LoaderOption {
	return func(c *loaderConfig) {
		c.loop = loop
	}
}

// WithLoaderLogger sets the loader logger.
func WithLoaderLogger(l *logging.Logger) LoaderOption {
	return func(c *loaderConfig) {
		c.logger = l
	}
}

// WithLoadDebounce sets the load session timings.
func WithLoadDebounce(interval, max time.Duration) LoaderOption {
	return func(c *loaderConfig) {
		c.interval = interval
		c.max = max
	}
}

// poster is implemented by loops that accept work from other goroutines.
type poster interface {
	Do(fn func())
}

// Loader reloads data for a chart context. While auto load is enabled and
// the context is VISIBLE, every data terms change starts or extends a load
// session; when the session closes the data of the current DATA_FIELD is
// fetched with the context's chart options.
//
// With a loop that accepts work from other goroutines (schedule.RealLoop)
// fetches run in the background and complete on the loop; otherwise they
// run inline.
type Loader struct {
	*event.Dispatcher

	chart    *chart.Context
	fetcher  Fetcher
	loop     schedule.Loop
	debounce *schedule.Debouncer

	ctx    context.Context
	cancel context.CancelFunc

	autoLoad   bool
	termsUnsub func()
	unsubs     []func()
	loadings   int
	data       any
}

// NewLoader creates a loader for c with auto load enabled.
func NewLoader(c *chart.Context, f Fetcher, opts ...LoaderOption) *Loader {
	cfg := loaderConfig{interval: DefaultLoadInterval, max: DefaultLoadMax}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = c.Logger()
	}
	if cfg.loop == nil {
		cfg.loop = c.Loop()
	}

	l := &Loader{
		chart:    c,
		fetcher:  f,
		loop:     cfg.loop,
		autoLoad: true,
	}
	l.Dispatcher = event.NewDispatcher(
		event.WithKind("data loader"),
		event.WithLogger(cfg.logger),
		event.WithTarget(l),
	)
	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.debounce = schedule.NewDebouncer(cfg.loop, func(schedule.Names) { l.load() },
		cfg.interval, cfg.max, schedule.WithDebounceLogger(cfg.logger))

	l.unsubs = append(l.unsubs,
		c.Subscribe(chart.Visible, func(value, _ any) {
			l.detachTerms()
			if value == true {
				l.SetAutoLoad(l.autoLoad)
			}
		}, false),
		c.AddListener(chart.TypeDestroyed, func(*event.Event) { l.Destroy() }),
	)
	return l
}

func (l *Loader) detachTerms() {
	if l.termsUnsub != nil {
		l.termsUnsub()
		l.termsUnsub = nil
	}
}

// AutoLoad reports whether data terms changes trigger loads.
func (l *Loader) AutoLoad() bool {
	return l.autoLoad
}

// SetAutoLoad enables or disables automatic loading. Enabling it on a
// visible context schedules a load immediately.
func (l *Loader) SetAutoLoad(v bool) {
	if v == (l.termsUnsub != nil) {
		return
	}
	l.detachTerms()

	if v && l.chart.Value(chart.Visible) == true {
		l.trigger()
		l.termsUnsub = l.chart.AddListener(chart.TypeChangeDataTerms, func(*event.Event) {
			l.trigger()
		})
	}
	l.autoLoad = v
}

func (l *Loader) trigger() {
	dataType, _ := chart.ValueOf[string](l.chart, chart.DataField)
	l.debounce.Trigger(dataType)
}

// Reload schedules a load regardless of auto load.
func (l *Loader) Reload() {
	l.trigger()
}

func (l *Loader) load() {
	if l.Destroyed() {
		return
	}
	dataType, _ := chart.ValueOf[string](l.chart, chart.DataField)
	options := l.chart.ChartOptions()

	l.setLoadings(l.loadings + 1)

	if p, ok := l.loop.(poster); ok {
		ctx := l.ctx
		go func() {
			result, err := l.fetcher.Fetch(ctx, dataType, options)
			p.Do(func() { l.finish(result, err) })
		}()
		return
	}
	result, err := l.fetcher.Fetch(l.ctx, dataType, options)
	l.finish(result, err)
}

func (l *Loader) finish(result any, err error) {
	if l.Destroyed() {
		return
	}
	if err != nil {
		l.Logger().Error("loading %v data: %v", l.chart.Value(chart.DataField), err)
		l.Dispatch(event.New(TypeLoadFailed, err), false)
	} else {
		l.SetData(result)
	}
	l.setLoadings(l.loadings - 1)
}

// Loading reports whether any load is in flight.
func (l *Loader) Loading() bool {
	return l.loadings > 0
}

// Loadings returns the number of loads in flight.
func (l *Loader) Loadings() int {
	return l.loadings
}

func (l *Loader) setLoadings(n int) {
	if n == l.loadings {
		return
	}
	l.loadings = n
	l.Dispatch(event.New(TypeLoadingChanged, n), false)
}

// Data returns the last loaded data.
func (l *Loader) Data() any {
	return l.data
}

// SetData replaces the data and dispatches TypeDataUpdated unless v is
// identical to the current data.
func (l *Loader) SetData(v any) {
	if store.Identical(v, l.data) {
		return
	}
	l.data = v
	l.Dispatch(event.New(TypeDataUpdated, v), false)
}

// Destroy stops loading and detaches from the chart context.
func (l *Loader) Destroy() {
	if l.Destroyed() {
		return
	}
	l.debounce.Stop()
	l.cancel()
	l.detachTerms()
	for _, unsub := range l.unsubs {
		unsub()
	}
	l.unsubs = nil
	l.Dispatcher.Destroy()
}
