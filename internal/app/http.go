package app

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/dshills/chartflow/internal/chart"
	"github.com/dshills/chartflow/internal/graph"
)

// Status summarizes the running application.
type Status struct {
	Contexts  []string       `json:"contexts"`
	Values    map[string]any `json:"values"`
	Scales    []string       `json:"scales"`
	Loading   bool           `json:"loading"`
	ViewState string         `json:"viewState"`
	Nodes     int            `json:"nodes"`
	Edges     int            `json:"edges"`
}

// Status returns a summary taken on the loop.
func (app *Application) Status(ctx context.Context) (Status, error) {
	var s Status
	err := app.call(ctx, func() {
		s = Status{
			Contexts: app.contexts.Names(),
			Values:   app.root.ToMap(),
			Scales:   app.scales.Names(),
			Loading:  app.loader.Loading(),
		}
		if app.view != nil {
			s.ViewState = app.view.State
			s.Nodes = len(app.view.Nodes)
			s.Edges = len(app.view.Edges)
		}
	})
	return s, err
}

// ViewNode is a placed node of the current view.
type ViewNode struct {
	ID     string   `json:"id"`
	Kind   string   `json:"kind"`
	Lines  []string `json:"lines"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Radius float64  `json:"radius"`
	Color  string   `json:"color"`
}

// ViewEdge is an edge of the current view.
type ViewEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// ViewDoc is the serialized current view.
type ViewDoc struct {
	State   string     `json:"state"`
	Country string     `json:"country,omitempty"`
	Nodes   []ViewNode `json:"nodes"`
	Edges   []ViewEdge `json:"edges"`
}

// View returns the current view taken on the loop.
func (app *Application) View(ctx context.Context) (ViewDoc, error) {
	var doc ViewDoc
	var missing bool
	err := app.call(ctx, func() {
		if app.view == nil {
			missing = true
			return
		}
		doc = viewDoc(app.view)
	})
	if err == nil && missing {
		err = ErrNoData
	}
	return doc, err
}

func viewDoc(v *graph.View) ViewDoc {
	doc := ViewDoc{
		State:   v.State,
		Country: v.Country,
		Nodes:   make([]ViewNode, 0, len(v.Nodes)),
		Edges:   make([]ViewEdge, 0, len(v.Edges)),
	}
	for _, n := range v.Nodes {
		if !n.Visible {
			continue
		}
		doc.Nodes = append(doc.Nodes, ViewNode{
			ID:     n.ID,
			Kind:   n.Kind.String(),
			Lines:  n.Lines,
			X:      n.X,
			Y:      n.Y,
			Radius: n.Radius,
			Color:  n.Color,
		})
	}
	for _, e := range v.Edges {
		if !e.Visible {
			continue
		}
		doc.Edges = append(doc.Edges, ViewEdge{Source: e.Source, Target: e.Target, Type: e.Type})
	}
	return doc
}

// Click applies a click on node id to the current graph.
func (app *Application) Click(ctx context.Context, id string) error {
	var clickErr error
	err := app.call(ctx, func() {
		if app.graph == nil {
			clickErr = ErrNoData
			return
		}
		clickErr = graph.Click(app.root, app.graph, id)
	})
	if err != nil {
		return err
	}
	return clickErr
}

// ApplyOptions applies a JSON object of chart properties keyed by wire
// name to the chart context.
func (app *Application) ApplyOptions(ctx context.Context, payload string) error {
	return app.call(ctx, func() { app.root.ParsePathOptions(payload) })
}

// PathOptions returns every chart property as a JSON object.
func (app *Application) PathOptions(ctx context.Context) (string, error) {
	var doc string
	var encErr error
	if err := app.call(ctx, func() { doc, encErr = app.root.PathOptions() }); err != nil {
		return "", err
	}
	return doc, encErr
}

// Router returns the data API extended with the application routes:
//
//	GET  /metrics          Prometheus metrics
//	GET  /status           Status
//	GET  /context          chart properties as path options
//	PUT  /context          apply path options
//	GET  /view             the current graph view
//	POST /view/click/:id   click a node
func (app *Application) Router() *gin.Engine {
	router := app.api.Router()
	router.GET("/metrics", gin.WrapH(app.metrics.Handler()))
	router.GET("/status", app.getStatus)
	router.GET("/context", app.getContext)
	router.PUT("/context", app.putContext)
	router.GET("/view", app.getView)
	router.POST("/view/click/:id", app.postClick)
	return router
}

func (app *Application) getStatus(c *gin.Context) {
	s, err := app.Status(c.Request.Context())
	if err != nil {
		abort(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (app *Application) getContext(c *gin.Context) {
	doc, err := app.PathOptions(c.Request.Context())
	if err != nil {
		abort(c, http.StatusServiceUnavailable, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}

func (app *Application) putContext(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	payload := string(body)
	if !gjson.Valid(payload) || !gjson.Parse(payload).IsObject() {
		abort(c, http.StatusBadRequest, errors.New("body must be a JSON object"))
		return
	}
	if err := app.validateNames(payload); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if err := app.ApplyOptions(c.Request.Context(), payload); err != nil {
		abort(c, http.StatusServiceUnavailable, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// validateNames reports the first unknown property name of payload.
func (app *Application) validateNames(payload string) error {
	var err error
	gjson.Parse(payload).ForEach(func(key, _ gjson.Result) bool {
		_, err = chart.ParseOption(key.String())
		return err == nil
	})
	return err
}

func (app *Application) getView(c *gin.Context) {
	doc, err := app.View(c.Request.Context())
	switch {
	case errors.Is(err, ErrNoData):
		abort(c, http.StatusNotFound, err)
	case err != nil:
		abort(c, http.StatusServiceUnavailable, err)
	default:
		c.JSON(http.StatusOK, doc)
	}
}

func (app *Application) postClick(c *gin.Context) {
	err := app.Click(c.Request.Context(), c.Param("id"))
	switch {
	case errors.Is(err, ErrNoData), errors.Is(err, graph.ErrUnknownNode):
		abort(c, http.StatusNotFound, err)
	case err != nil:
		abort(c, http.StatusServiceUnavailable, err)
	default:
		app.getView(c)
	}
}

func abort(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"errorMessage": err.Error()})
}
