// Package graph classifies node and relationship rows into a graph of
// typed nodes and edges, tracks their visibility, and selects the subset
// a chart shows for each view state.
package graph

import (
	"math"
	"strconv"

	"github.com/dshills/chartflow/internal/logging"
	"github.com/dshills/chartflow/internal/palette"
)

// Node is one classified graph node.
type Node struct {
	ID        string
	Label     string
	Kind      Kind
	Parent    string
	Country   string
	Longitude float64
	Latitude  float64
	HasCoords bool
	Size      float64
	Visible   bool

	// Layout attributes, set by a view selection.
	X, Y   float64
	Radius float64
	Color  string
	Lines  []string
}

// Edge links two node ids. Its id is start + "_" + end.
type Edge struct {
	ID      string
	Source  string
	Target  string
	Type    string
	Visible bool
}

// Data is the raw input of a graph.
type Data struct {
	Nodes []Row `json:"nodes"`
	Links []Row `json:"links"`
}

// Option configures a Graph.
type Option func(*Graph)

// WithClassification adds or overrides a type key to kind mapping.
func WithClassification(key string, k Kind) Option {
	return func(g *Graph) {
		g.classes[key] = k
	}
}

// WithScale colours selected nodes by kind.
func WithScale(s palette.Scale) Option {
	return func(g *Graph) {
		g.scale = s
	}
}

// WithLayouts replaces the map and tree layouts. Nil keeps the default.
func WithLayouts(mapLayout, treeLayout Layout) Option {
	return func(g *Graph) {
		if mapLayout != nil {
			g.mapLayout = mapLayout
		}
		if treeLayout != nil {
			g.treeLayout = treeLayout
		}
	}
}

// WithLogger sets the graph logger.
func WithLogger(l *logging.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// Graph is a node and edge repository built from Data. It is not safe for
// concurrent use.
type Graph struct {
	classes    map[string]Kind
	logger     *logging.Logger
	scale      palette.Scale
	mapLayout  Layout
	treeLayout Layout

	data Data

	nodes  []*Node
	byID   map[string]*Node
	edges  []*Edge
	edgeID map[string]*Edge

	country string
}

// New classifies data into a graph. Duplicate nodes (by id) and links (by
// start and end) are dropped, keeping the first occurrence. A row whose
// type key does not classify fails with *UnknownNodeTypeError.
func New(data Data, opts ...Option) (*Graph, error) {
	g := &Graph{
		classes:    DefaultClassification(),
		logger:     logging.Default(),
		mapLayout:  DefaultMercator(),
		treeLayout: DefaultRadialTree(1000),
	}
	for _, opt := range opts {
		opt(g)
	}

	g.data = Data{Nodes: uniqueNodes(data.Nodes), Links: uniqueLinks(data.Links)}
	if err := g.reset(); err != nil {
		return nil, err
	}
	g.logger.Debug("graph built: %d nodes (%d duplicates), %d links (%d duplicates)",
		len(g.data.Nodes), len(data.Nodes)-len(g.data.Nodes),
		len(g.data.Links), len(data.Links)-len(g.data.Links))
	return g, nil
}

func uniqueNodes(rows []Row) []Row {
	seen := make(map[string]bool, len(rows))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if seen[r[ColNode]] {
			continue
		}
		seen[r[ColNode]] = true
		out = append(out, r)
	}
	return out
}

func uniqueLinks(rows []Row) []Row {
	type pair struct{ start, end string }
	seen := make(map[pair]bool, len(rows))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		p := pair{r[ColStart], r[ColEnd]}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, r)
	}
	return out
}

// reset rebuilds every node and edge from the raw rows.
func (g *Graph) reset() error {
	g.nodes = make([]*Node, 0, len(g.data.Nodes))
	g.byID = make(map[string]*Node, len(g.data.Nodes))
	for _, r := range g.data.Nodes {
		n, err := g.classify(r)
		if err != nil {
			return err
		}
		g.addNode(n)
	}

	g.edges = make([]*Edge, 0, len(g.data.Links))
	g.edgeID = make(map[string]*Edge, len(g.data.Links))
	for _, r := range g.data.Links {
		e := &Edge{
			ID:      r[ColStart] + "_" + r[ColEnd],
			Source:  r[ColStart],
			Target:  r[ColEnd],
			Type:    r[ColLinkType],
			Visible: r[ColLinkType] == "Located_In",
		}
		g.edges = append(g.edges, e)
		if _, ok := g.edgeID[e.ID]; !ok {
			g.edgeID[e.ID] = e
		}
	}
	return nil
}

func (g *Graph) classify(r Row) (*Node, error) {
	k, err := Classify(r, g.classes)
	if err != nil {
		return nil, err
	}

	n := &Node{
		ID:      r[ColNode],
		Label:   r[ColLabel],
		Kind:    k,
		Parent:  parentOf(k, r),
		Country: r[ColCountry],
		Size:    parseNumber(r[ColSize]),
		Visible: startsVisible(k),
	}
	lon, lonErr := strconv.ParseFloat(r[ColLongitude], 64)
	lat, latErr := strconv.ParseFloat(r[ColLatitude], 64)
	if lonErr == nil && latErr == nil && (lon != 0 || lat != 0) {
		n.Longitude, n.Latitude, n.HasCoords = lon, lat, true
	}
	return n, nil
}

// parseNumber reads a numeric column. Empty and malformed values are 0.
func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	return f
}

func (g *Graph) addNode(n *Node) {
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
}

// Nodes returns every node in input order.
func (g *Graph) Nodes() []*Node {
	return append([]*Node(nil), g.nodes...)
}

// Edges returns every edge in input order.
func (g *Graph) Edges() []*Edge {
	return append([]*Edge(nil), g.edges...)
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// VisibleNodes returns the visible nodes in input order.
func (g *Graph) VisibleNodes() []*Node {
	var out []*Node
	for _, n := range g.nodes {
		if n.Visible {
			out = append(out, n)
		}
	}
	return out
}

// VisibleEdges returns the visible edges in input order.
func (g *Graph) VisibleEdges() []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.Visible {
			out = append(out, e)
		}
	}
	return out
}

// Toggle collapses or expands the children of the node with the given id.
// Visible children are hidden together with their descendants; hidden
// children are shown when the parent is visible. Edges pointing at the
// node flip the same way.
func (g *Graph) Toggle(id string) error {
	n, ok := g.byID[id]
	if !ok {
		return ErrUnknownNode
	}
	g.toggle(n, make(map[string]bool))
	return nil
}

func (g *Graph) toggle(parent *Node, seen map[string]bool) {
	if seen[parent.ID] {
		return
	}
	seen[parent.ID] = true

	for _, child := range g.nodes {
		if child.Parent != parent.ID || child == parent {
			continue
		}
		if child.Visible {
			child.Visible = false
			g.toggle(child, seen)
		} else if parent.Visible {
			child.Visible = true
		}
	}

	for _, e := range g.edges {
		if e.Target != parent.ID {
			continue
		}
		if e.Visible {
			e.Visible = false
		} else if parent.Visible {
			e.Visible = true
		}
	}
}

func (g *Graph) hideAll() {
	for _, n := range g.nodes {
		n.Visible = false
	}
	for _, e := range g.edges {
		e.Visible = false
	}
}
