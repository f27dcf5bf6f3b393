package app

import (
	"os"
	"strings"

	"github.com/dshills/chartflow/internal/chart"
	"github.com/dshills/chartflow/internal/config"
	"github.com/dshills/chartflow/internal/data"
	"github.com/dshills/chartflow/internal/event"
	"github.com/dshills/chartflow/internal/graph"
	"github.com/dshills/chartflow/internal/logging"
	"github.com/dshills/chartflow/internal/palette"
)

// wire sets up subscriptions between components. Called after bootstrap
// completes successfully.
func (app *Application) wire() {
	app.loader.AddListener(data.TypeDataUpdated, func(e *event.Event) {
		app.dataUpdated(e.Data)
	})
	app.loader.AddListener(data.TypeLoadingChanged, func(e *event.Event) {
		app.logger.Debug("loads in flight: %v", e.Data)
	})

	rebuild := func(_, _ any) { app.rebuildGraph() }
	app.root.Subscribe(chart.ColorScaleReference, rebuild, true)
	app.root.Subscribe(chart.ChartHeight, rebuild, true)

	app.root.AddListener(chart.TypeChangeComplete, func(e *event.Event) {
		app.logger.Debug("properties changed: %v", e.Data)
	})

	app.settings.AddListener(config.TypeChangeConfig, func(e *event.Event) {
		old, _ := e.OldData.(map[string]any)
		cfg, _ := e.Data.(map[string]any)
		if changed := config.Diff(old, cfg); len(changed) > 0 {
			app.logger.Info("configuration changed: %s", strings.Join(changed, ", "))
		}
		app.applySettings()
	})
}

// dataUpdated rebuilds the graph from freshly loaded data.
func (app *Application) dataUpdated(v any) {
	d, err := data.DecodeGraph(v)
	if err != nil {
		app.logger.Error("decoding graph data: %v", err)
		return
	}
	app.graphData = &d
	app.rebuildGraph()
}

// rebuildGraph classifies the last loaded data with the context's colour
// scale and height, and binds the result to VIEW_STATE.
func (app *Application) rebuildGraph() {
	if app.graphData == nil {
		return
	}
	scale, err := app.scales.ForContext(app.root)
	if err != nil {
		app.logger.Warn("%v, using %s", err, palette.DefaultName)
		scale, _ = app.scales.Lookup(palette.DefaultName)
	}
	height, ok := chart.ValueOf[float64](app.root, chart.ChartHeight)
	if !ok || height <= 0 {
		height = 1000
	}

	g, err := graph.New(*app.graphData,
		graph.WithScale(scale),
		graph.WithLayouts(graph.DefaultMercator(), graph.DefaultRadialTree(height)),
		graph.WithLogger(app.logger.WithComponent("graph")),
	)
	if err != nil {
		app.logger.Error("building graph: %v", err)
		return
	}

	if app.unbind != nil {
		app.unbind()
	}
	app.graph = g
	app.unbind = graph.Bind(app.root, g, app.viewSelected)
}

func (app *Application) viewSelected(v *graph.View, err error) {
	if err != nil {
		app.logger.Warn("selecting view: %v", err)
		return
	}
	app.view = v
	app.logger.Info("view %s: %d nodes, %d edges", v.State, len(v.Nodes), len(v.Edges))
}

// applySettings re-applies the configuration to running components.
func (app *Application) applySettings() {
	if app.opts.LogLevel == "" {
		app.logger.SetLevel(logging.ParseLevel(app.setting("log.level", "info")))
	}
	if err := app.registerScales(); err != nil {
		app.logger.Error("registering colour scales: %v", err)
	}
	values, err := app.contextValues()
	if err != nil {
		app.logger.Error("applying context settings: %v", err)
		return
	}
	for _, o := range chart.AllOptions() {
		if v, ok := values[o]; ok {
			app.root.Init(o, v)
		}
	}
	app.rebuildGraph()
}

// reloadConfig reads the configuration file again. It runs off the loop;
// the result is applied on it.
func (app *Application) reloadConfig(path string) {
	file, err := config.Load(path)
	if err != nil {
		app.logger.Error("reloading config: %v", err)
		return
	}
	settings := config.DeepMerge(defaultSettings(), file)
	settings = config.DeepMerge(settings, app.opts.overrides())
	app.loop.Do(func() { app.settings.SetConfig(settings) })
}

// applyOptionsFile reads a JSON path options file and applies it to the
// chart context on the loop.
func (app *Application) applyOptionsFile(path string) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			app.logger.Error("reading options file: %v", err)
		}
		return
	}
	app.loop.Do(func() {
		app.root.ParsePathOptions(string(payload))
	})
}
