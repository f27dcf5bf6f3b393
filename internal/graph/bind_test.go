package graph

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/chartflow/internal/chart"
	"github.com/dshills/chartflow/internal/logging"
	"github.com/dshills/chartflow/internal/schedule"
)

func TestBindAndClick(t *testing.T) {
	g := newTestGraph(t)
	ctx := chart.New(nil, nil,
		chart.WithLoop(schedule.NewManualLoop(time.Time{})),
		chart.WithLogger(logging.Null()))
	defer ctx.Destroy()

	var views []*View
	unbind := Bind(ctx, g, func(v *View, err error) {
		if err != nil {
			t.Errorf("Select() error = %v", err)
			return
		}
		views = append(views, v)
	})

	if len(views) != 1 || views[0].State != StateMap {
		t.Fatalf("Bind() did not select the current state: %+v", views)
	}

	// Regions do nothing in the map state; countries drill down.
	if err := Click(ctx, g, "EU"); err != nil || len(views) != 1 {
		t.Errorf("Click(EU) = %v, views = %d", err, len(views))
	}
	if err := Click(ctx, g, "FR"); err != nil {
		t.Fatalf("Click(FR) error = %v", err)
	}
	if ctx.Value(chart.ViewState) != "country-tree-FR" {
		t.Errorf("ViewState = %v, want country-tree-FR", ctx.Value(chart.ViewState))
	}
	if len(views) != 2 || views[1].Country != "FR" {
		t.Fatalf("drill down did not reselect: %d views", len(views))
	}

	// Inside a tree a click collapses children.
	if err := Click(ctx, g, "FREQ"); err != nil {
		t.Fatalf("Click(FREQ) error = %v", err)
	}
	if n, _ := g.Node("FRTechEQ"); n.Visible {
		t.Error("Click(FREQ) did not collapse its sector")
	}

	if err := Click(ctx, g, "nowhere"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Click(nowhere) error = %v, want ErrUnknownNode", err)
	}

	unbind()
	ctx.Set(chart.ViewState, StateAllTree)
	if len(views) != 2 {
		t.Error("unbind did not stop reselection")
	}
}
