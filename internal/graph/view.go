package graph

import (
	"math"
	"strings"
)

// View states understood by Select.
const (
	StateMap         = "map"
	StateRegionTree  = "region-tree"
	StateCountryTree = "country-tree"
	StateAllTree     = "all-tree"
)

// MaxLabelLine is the grapheme width labels are wrapped to.
const MaxLabelLine = 22

// View is the subset of a graph shown for one view state.
type View struct {
	State   string
	Country string
	Nodes   []*Node
	Edges   []*Edge
}

// CountryTreeState returns the view state that focuses on country id.
func CountryTreeState(id string) string {
	return StateCountryTree + "-" + id
}

// Select rebuilds the graph and selects, lays out and decorates the nodes
// and edges shown for state. The country of the last country tree is
// remembered and reused by the all-tree state.
func (g *Graph) Select(state string) (*View, error) {
	v := &View{State: state}
	if len(g.data.Nodes) == 0 {
		return v, nil
	}
	if err := g.reset(); err != nil {
		return nil, err
	}

	var layout Layout
	switch {
	case state == StateMap:
		v.Nodes = g.kinds(KindRegion, KindCountry)
		layout = g.mapLayout
	case state == StateRegionTree:
		root := &Node{ID: RootID, Label: RootID, Kind: KindNode, Visible: true}
		g.addNode(root)
		v.Nodes = append([]*Node{root}, g.kinds(KindRegion, KindCountry)...)
		v.Edges = g.edgesWithin(v.Nodes)
		layout = g.treeLayout
	case strings.HasPrefix(state, StateCountryTree):
		if parts := strings.SplitN(state, "-", 3); len(parts) == 3 {
			g.country = parts[2]
		} else {
			g.country = ""
		}
		v.Nodes, v.Edges = g.countryTree(g.country, KindCountry, KindEquity, KindSector, KindIndustry)
		layout = g.treeLayout
	case strings.HasPrefix(state, StateAllTree):
		v.Nodes, v.Edges = g.countryTree(g.country)
		layout = g.treeLayout
	default:
		return nil, ErrUnknownViewState
	}
	v.Country = g.country

	g.decorate(v)
	layout.Place(v.Nodes)
	return v, nil
}

// kinds returns the nodes of the given kinds, grouped in argument order.
func (g *Graph) kinds(kinds ...Kind) []*Node {
	var out []*Node
	for _, k := range kinds {
		for _, n := range g.nodes {
			if n.Kind == k {
				out = append(out, n)
			}
		}
	}
	return out
}

func (g *Graph) edgesWithin(nodes []*Node) []*Edge {
	in := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		in[n.ID] = true
	}
	var out []*Edge
	for _, e := range g.edges {
		if in[e.Source] && in[e.Target] {
			out = append(out, e)
		}
	}
	return out
}

// countryTree shows exactly the nodes of country (optionally restricted to
// kinds) and the edges between them. Country nodes become tree roots.
func (g *Graph) countryTree(country string, kinds ...Kind) ([]*Node, []*Edge) {
	g.hideAll()

	allowed := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}

	var nodes []*Node
	for _, n := range g.nodes {
		if n.Country != country || (len(kinds) > 0 && !allowed[n.Kind]) {
			continue
		}
		if n.Kind == KindCountry {
			n.Parent = ""
		}
		n.Visible = true
		nodes = append(nodes, n)
	}

	edges := g.edgesWithin(nodes)
	for _, e := range edges {
		e.Visible = true
	}
	return nodes, edges
}

// decorate sets radius, label lines and colour on the view's nodes.
func (g *Graph) decorate(v *View) {
	tree := strings.HasPrefix(v.State, StateCountryTree) || strings.HasPrefix(v.State, StateAllTree)
	for _, n := range v.Nodes {
		n.Radius = radius(n, tree)
		if n.ID == RootID {
			n.Radius = 0
		}
		n.Lines = SplitLabel(n.ID, MaxLabelLine)
		if g.scale != nil {
			n.Color = g.scale.Color(n.Kind.String()).Hex()
		}
	}
}

func radius(n *Node, tree bool) float64 {
	leaf := n.Kind == KindCompany || n.Kind == KindIndustry || n.Kind == KindSector
	switch {
	case tree && leaf:
		return n.Size * 8000
	case tree && n.Kind == KindCountry:
		return 50
	case tree:
		return 30
	case leaf:
		return n.Size * 4000
	default:
		return math.Min(30, n.Size*800)
	}
}
