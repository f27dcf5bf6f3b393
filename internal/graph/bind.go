package graph

import "github.com/dshills/chartflow/internal/chart"

// Bind re-selects the view whenever ctx's VIEW_STATE changes, calling fn
// with the result. It selects immediately for the current value. The
// returned function unsubscribes.
func Bind(ctx *chart.Context, g *Graph, fn func(*View, error)) func() {
	return ctx.Subscribe(chart.ViewState, func(value, _ any) {
		state, _ := value.(string)
		fn(g.Select(state))
	}, false)
}

// Click applies a click on node id: in the map state a country drills
// down into its country tree through ctx; everywhere else the node's
// children are toggled.
func Click(ctx *chart.Context, g *Graph, id string) error {
	n, ok := g.Node(id)
	if !ok {
		return ErrUnknownNode
	}
	state, _ := chart.ValueOf[string](ctx, chart.ViewState)
	if state == StateMap && n.Kind == KindCountry {
		ctx.Set(chart.ViewState, CountryTreeState(id))
		return nil
	}
	if state == StateMap {
		return nil
	}
	return g.Toggle(id)
}
