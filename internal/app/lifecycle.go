package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dshills/chartflow/internal/config"
)

// Run starts the loop, the file watchers and, when an address is
// configured, the HTTP server, then blocks until ctx is done or the
// server fails. Components are torn down before it returns, so an
// application runs once.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	loopCtx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan error, 1)
	go func() { loopDone <- app.loop.Run(loopCtx) }()
	defer func() {
		stopLoop()
		<-loopDone
	}()

	if err := app.startWatchers(); err != nil {
		app.shutdown()
		return err
	}

	serveErr := make(chan error, 1)
	if addr := app.Addr(); addr != "" {
		app.server = &http.Server{
			Addr:              addr,
			Handler:           app.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			app.logger.Info("listening on %s", addr)
			err := app.server.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			serveErr <- err
		}()
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
	}
	app.shutdown()
	return err
}

// startWatchers applies the options file and watches it and the
// configuration file for changes.
func (app *Application) startWatchers() error {
	wopts := []config.WatcherOption{
		config.WithWatcherLogger(app.logger.WithComponent("watcher")),
	}

	if path := app.opts.OptionsPath; path != "" {
		app.applyOptionsFile(path)
		w, err := config.Watch(path, app.applyOptionsFile, wopts...)
		if err != nil {
			return &InitError{Component: "options watcher", Err: err}
		}
		app.watchers = append(app.watchers, w)
	}

	if path := app.opts.ConfigPath; path != "" {
		w, err := config.Watch(path, app.reloadConfig, wopts...)
		if err != nil {
			return &InitError{Component: "config watcher", Err: err}
		}
		app.watchers = append(app.watchers, w)
	}
	return nil
}

// shutdown stops the outer surfaces, then destroys the chart components
// on the loop.
func (app *Application) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), app.opts.ShutdownTimeout)
	defer cancel()

	for _, w := range app.watchers {
		if err := w.Close(); err != nil {
			app.logger.Warn("closing watcher for %s: %v", w.Path(), err)
		}
	}
	app.watchers = nil

	if app.server != nil {
		if err := app.server.Shutdown(ctx); err != nil {
			app.logger.Warn("http shutdown: %v", err)
		}
		app.server = nil
	}

	if err := app.call(ctx, app.close); err != nil {
		app.logger.Warn("closing chart components: %v", err)
	}
	app.logger.Info("shutdown complete")
}

func (app *Application) close() {
	if app.unbind != nil {
		app.unbind()
		app.unbind = nil
	}
	app.loader.Destroy()
	app.contexts.Close()
	app.settings.Destroy()
	app.metrics.SetContexts(0)
}
