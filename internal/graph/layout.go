package graph

import "math"

// Layout assigns X and Y to the nodes of a view.
type Layout interface {
	Place(nodes []*Node)
}

// Mercator projects node coordinates. Nodes without coordinates are
// placed at the origin.
type Mercator struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// DefaultMercator is the projection used by the map state.
func DefaultMercator() Mercator {
	return Mercator{Scale: 280, TranslateX: -100, TranslateY: 100}
}

// Place implements Layout.
func (m Mercator) Place(nodes []*Node) {
	for _, n := range nodes {
		if !n.HasCoords {
			n.X, n.Y = 0, 0
			continue
		}
		n.X, n.Y = m.Project(n.Longitude, n.Latitude)
	}
}

// Project maps longitude and latitude in degrees to plane coordinates.
func (m Mercator) Project(lon, lat float64) (x, y float64) {
	lambda := lon * math.Pi / 180
	phi := lat * math.Pi / 180
	x = lambda*m.Scale + m.TranslateX
	y = -math.Log(math.Tan(math.Pi/4+phi/2))*m.Scale + m.TranslateY
	return x, y
}

// RadialTree lays nodes out as a radial tree built from their Parent
// links. Leaves are spread evenly around the circle and each depth level
// sits on its own ring. Company nodes sit on their parent.
type RadialTree struct {
	Radius float64
}

// DefaultRadialTree returns a tree sized for the given chart height.
func DefaultRadialTree(height float64) RadialTree {
	return RadialTree{Radius: height / 2.5}
}

// Place implements Layout.
func (t RadialTree) Place(nodes []*Node) {
	if len(nodes) == 0 {
		return
	}

	byID := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	children := make(map[string][]*Node)
	var roots []*Node
	for _, n := range nodes {
		if _, ok := byID[n.Parent]; ok && n.Parent != n.ID {
			children[n.Parent] = append(children[n.Parent], n)
		} else {
			roots = append(roots, n)
		}
	}

	type placement struct {
		angle float64
		depth int
	}
	placed := make(map[*Node]placement, len(nodes))
	var leaves []*Node
	maxDepth := 1

	var walk func(n *Node, depth int)
	walk = func(n *Node, depth int) {
		if _, ok := placed[n]; ok {
			return
		}
		placed[n] = placement{depth: depth}
		if depth > maxDepth {
			maxDepth = depth
		}
		kids := children[n.ID]
		if len(kids) == 0 {
			leaves = append(leaves, n)
			return
		}
		for _, c := range kids {
			walk(c, depth+1)
		}
	}
	// Multiple roots hang off a virtual center at depth 0.
	base := 1
	if len(roots) == 1 {
		base = 0
	}
	for _, r := range roots {
		walk(r, base)
	}

	for i, leaf := range leaves {
		p := placed[leaf]
		p.angle = 2 * math.Pi * (float64(i) + 0.5) / float64(len(leaves))
		placed[leaf] = p
	}

	var angle func(n *Node) float64
	angle = func(n *Node) float64 {
		kids := children[n.ID]
		if len(kids) == 0 {
			return placed[n].angle
		}
		first, last := angle(kids[0]), angle(kids[len(kids)-1])
		p := placed[n]
		p.angle = (first + last) / 2
		placed[n] = p
		return p.angle
	}
	for _, r := range roots {
		angle(r)
	}

	for _, n := range nodes {
		p, ok := placed[n]
		if !ok {
			n.X, n.Y = 0, 0
			continue
		}
		r := float64(p.depth) / float64(maxDepth) * t.Radius
		n.X = math.Cos(p.angle) * r
		n.Y = math.Sin(p.angle) * r
	}
	for _, n := range nodes {
		if n.Kind != KindCompany {
			continue
		}
		if parent, ok := byID[n.Parent]; ok {
			n.X, n.Y = parent.X, parent.Y
		}
	}
}
