package graph

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/chartflow/internal/logging"
	"github.com/dshills/chartflow/internal/palette"
)

func testData() Data {
	return Data{
		Nodes: []Row{
			{"Node": "EU", "Type": "GEO", "SubType": "REG", "Label": "Europe"},
			{"Node": "FR", "Type": "GEO", "SubType": "CTY", "Of_Region": "EU", "Of_Country": "FR",
				"Longitude": "2.35", "Latitude": "48.85", "size": "0.0078125"},
			{"Node": "DE", "Type": "GEO", "SubType": "CTY", "Of_Region": "EU", "Of_Country": "DE"},
			{"Node": "FREQ", "Type": "Equity", "SubType": "CTY", "Of_Country": "FR"},
			{"Node": "FRTechEQ", "Type": "Equity", "SubType": "CTY-SEC", "Of_Country": "FR", "size": "0.001953125"},
			{"Node": "FRSoftEQ", "Type": "Equity", "SubType": "CTY-IND", "Of_Country": "FR", "Sector": "Tech"},
			{"Node": "ACME", "Type": "Equity", "SubType": "STY", "Of_Country": "FR", "Industry": "Soft"},
			{"Node": "EUR", "Type": "FX", "SubType": "EM", "Of_Country": "FR"},
			{"Node": "FR", "Type": "GEO", "SubType": "CTY", "Label": "duplicate"},
		},
		Links: []Row{
			{"start_node": "FR", "end_node": "EU", "type": "Located_In"},
			{"start_node": "DE", "end_node": "EU", "type": "Located_In"},
			{"start_node": "FREQ", "end_node": "FR", "type": "Market_Of"},
			{"start_node": "FRTechEQ", "end_node": "FREQ", "type": "Part_Of"},
			{"start_node": "FRSoftEQ", "end_node": "FRTechEQ", "type": "Part_Of"},
			{"start_node": "ACME", "end_node": "FRSoftEQ", "type": "Part_Of"},
			{"start_node": "FR", "end_node": "EU", "type": "Duplicate"},
		},
	}
}

func newTestGraph(t *testing.T, opts ...Option) *Graph {
	t.Helper()
	g, err := New(testData(), append([]Option{WithLogger(logging.Null())}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func nodeIDs(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func edgeIDs(edges []*Edge) []string {
	out := make([]string, len(edges))
	for i, e := range edges {
		out[i] = e.ID
	}
	return out
}

func TestNew_Classification(t *testing.T) {
	g := newTestGraph(t)

	tests := []struct {
		id      string
		kind    Kind
		parent  string
		visible bool
	}{
		{"EU", KindRegion, RootID, true},
		{"FR", KindCountry, "EU", true},
		{"DE", KindCountry, "EU", true},
		{"FREQ", KindEquity, "FR", false},
		{"FRTechEQ", KindSector, "FREQ", false},
		{"FRSoftEQ", KindIndustry, "FRTechEQ", false},
		{"ACME", KindCompany, "FRSoftEQ", false},
		{"EUR", KindFX, "FR", false},
	}
	for _, tt := range tests {
		n, ok := g.Node(tt.id)
		if !ok {
			t.Errorf("Node(%q) missing", tt.id)
			continue
		}
		if n.Kind != tt.kind || n.Parent != tt.parent || n.Visible != tt.visible {
			t.Errorf("Node(%q) = {%v %q %v}, want {%v %q %v}",
				tt.id, n.Kind, n.Parent, n.Visible, tt.kind, tt.parent, tt.visible)
		}
	}

	if len(g.Nodes()) != 8 {
		t.Errorf("len(Nodes()) = %d, want 8", len(g.Nodes()))
	}
	if n, _ := g.Node("FR"); n.Label != "" || !n.HasCoords || n.Size != 0.0078125 {
		t.Errorf("first FR row did not win: %+v", n)
	}
	if diff := cmp.Diff([]string{"FR_EU", "DE_EU"}, edgeIDs(g.VisibleEdges())); diff != "" {
		t.Errorf("VisibleEdges() mismatch (-want +got):\n%s", diff)
	}
	if len(g.Edges()) != 6 {
		t.Errorf("len(Edges()) = %d, want 6", len(g.Edges()))
	}
}

func TestNew_UnknownType(t *testing.T) {
	data := Data{Nodes: []Row{{"Node": "X", "Type": "Bond", "SubType": "GOV"}}}

	_, err := New(data, WithLogger(logging.Null()))
	var uerr *UnknownNodeTypeError
	if !errors.As(err, &uerr) || uerr.Key != "Bond_GOV" || uerr.Node != "X" {
		t.Fatalf("New() error = %v, want UnknownNodeTypeError{X, Bond_GOV}", err)
	}
	if !errors.Is(err, ErrUnknownNodeType) {
		t.Error("errors.Is(err, ErrUnknownNodeType) = false")
	}

	g, err := New(data, WithLogger(logging.Null()), WithClassification("Bond_GOV", KindZone))
	if err != nil {
		t.Fatalf("New() with classification error = %v", err)
	}
	if n, _ := g.Node("X"); n.Kind != KindZone || n.Visible {
		t.Errorf("Node(X) = %+v, want hidden zone", n)
	}
}

func TestClassify(t *testing.T) {
	classes := DefaultClassification()
	tests := []struct {
		typ, sub string
		want     Kind
	}{
		{"GEO", "REG", KindRegion},
		{"GEO", "CTY", KindCountry},
		{"GEO", "CUZ", KindNode},
		{"Equity", "CTY", KindEquity},
		{"Equity", "CTY-SEC", KindSector},
		{"Equity", "IND", KindIndustry},
		{"Equity", "STY", KindCompany},
		{"FX", "DM", KindFX},
	}
	for _, tt := range tests {
		got, err := Classify(Row{ColType: tt.typ, ColSubType: tt.sub}, classes)
		if err != nil || got != tt.want {
			t.Errorf("Classify(%s_%s) = %v, %v, want %v", tt.typ, tt.sub, got, err, tt.want)
		}
	}

	if _, err := Classify(Row{ColNode: "X"}, classes); !errors.Is(err, ErrUnknownNodeType) {
		t.Errorf("Classify(empty) error = %v, want ErrUnknownNodeType", err)
	}
}

func TestToggle(t *testing.T) {
	g := newTestGraph(t)

	if err := g.Toggle("FR"); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if diff := cmp.Diff([]string{"EU", "FR", "DE", "FREQ", "EUR"}, nodeIDs(g.VisibleNodes())); diff != "" {
		t.Errorf("after expand (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"FR_EU", "DE_EU", "FREQ_FR"}, edgeIDs(g.VisibleEdges())); diff != "" {
		t.Errorf("edges after expand (-want +got):\n%s", diff)
	}

	_ = g.Toggle("FREQ")
	_ = g.Toggle("EU")
	if diff := cmp.Diff([]string{"EU"}, nodeIDs(g.VisibleNodes())); diff != "" {
		t.Errorf("collapse did not hide descendants (-want +got):\n%s", diff)
	}

	if err := g.Toggle("missing"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Toggle(missing) error = %v, want ErrUnknownNode", err)
	}
}

func TestSelect_Map(t *testing.T) {
	g := newTestGraph(t)

	v, err := g.Select(StateMap)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if diff := cmp.Diff([]string{"EU", "FR", "DE"}, nodeIDs(v.Nodes)); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	if len(v.Edges) != 0 {
		t.Errorf("map view has %d edges, want 0", len(v.Edges))
	}

	fr, _ := g.Node("FR")
	wantX, wantY := DefaultMercator().Project(2.35, 48.85)
	if fr.X != wantX || fr.Y != wantY {
		t.Errorf("FR at (%v, %v), want (%v, %v)", fr.X, fr.Y, wantX, wantY)
	}
	if fr.Radius != 6.25 {
		t.Errorf("FR radius = %v, want 6.25", fr.Radius)
	}
	if eu, _ := g.Node("EU"); eu.X != 0 || eu.Y != 0 {
		t.Errorf("EU without coordinates at (%v, %v), want origin", eu.X, eu.Y)
	}
}

func TestSelect_RegionTree(t *testing.T) {
	g := newTestGraph(t)

	v, err := g.Select(StateRegionTree)
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if diff := cmp.Diff([]string{"ALL", "EU", "FR", "DE"}, nodeIDs(v.Nodes)); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"FR_EU", "DE_EU"}, edgeIDs(v.Edges)); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	root := v.Nodes[0]
	if root.X != 0 || root.Y != 0 || root.Radius != 0 {
		t.Errorf("root = (%v, %v, r=%v), want origin with zero radius", root.X, root.Y, root.Radius)
	}
	if fr := v.Nodes[2]; math.Hypot(fr.X, fr.Y) <= math.Hypot(v.Nodes[1].X, v.Nodes[1].Y) {
		t.Error("countries should sit on an outer ring")
	}
}

func TestSelect_CountryAndAllTree(t *testing.T) {
	g := newTestGraph(t)

	v, err := g.Select(CountryTreeState("FR"))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if v.Country != "FR" {
		t.Errorf("Country = %q, want FR", v.Country)
	}
	if diff := cmp.Diff([]string{"FR", "FREQ", "FRTechEQ", "FRSoftEQ"}, nodeIDs(v.Nodes)); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"FREQ_FR", "FRTechEQ_FREQ", "FRSoftEQ_FRTechEQ"}, edgeIDs(g.VisibleEdges())); diff != "" {
		t.Errorf("visible edges mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(nodeIDs(v.Nodes), nodeIDs(g.VisibleNodes())); diff != "" {
		t.Errorf("only selected nodes should be visible (-want +got):\n%s", diff)
	}
	fr, _ := g.Node("FR")
	if fr.Parent != "" || fr.Radius != 50 {
		t.Errorf("FR = {parent %q, radius %v}, want tree root with radius 50", fr.Parent, fr.Radius)
	}
	if sec, _ := g.Node("FRTechEQ"); sec.Radius != 15.625 {
		t.Errorf("sector radius = %v, want 15.625", sec.Radius)
	}

	v, err = g.Select(StateAllTree)
	if err != nil {
		t.Fatalf("Select(all-tree) error = %v", err)
	}
	if diff := cmp.Diff([]string{"FR", "FREQ", "FRTechEQ", "FRSoftEQ", "ACME", "EUR"}, nodeIDs(v.Nodes)); diff != "" {
		t.Errorf("all-tree nodes mismatch (-want +got):\n%s", diff)
	}
	acme, _ := g.Node("ACME")
	ind, _ := g.Node("FRSoftEQ")
	if acme.X != ind.X || acme.Y != ind.Y {
		t.Error("company should sit on its parent")
	}
}

func TestSelect_Errors(t *testing.T) {
	g := newTestGraph(t)
	if _, err := g.Select("globe"); !errors.Is(err, ErrUnknownViewState) {
		t.Errorf("Select(globe) error = %v, want ErrUnknownViewState", err)
	}

	empty, err := New(Data{}, WithLogger(logging.Null()))
	if err != nil {
		t.Fatal(err)
	}
	v, err := empty.Select("globe")
	if err != nil || len(v.Nodes) != 0 {
		t.Errorf("Select() on empty graph = %+v, %v", v, err)
	}
}

func TestSelect_Colors(t *testing.T) {
	scale, err := palette.NewRegistry().Lookup(palette.DefaultName)
	if err != nil {
		t.Fatal(err)
	}
	g := newTestGraph(t, WithScale(scale))

	v, _ := g.Select(StateMap)
	want := map[string]string{"EU": "#46bccb", "FR": "#418bfc", "DE": "#418bfc"}
	for _, n := range v.Nodes {
		if n.Color != want[n.ID] {
			t.Errorf("%s color = %s, want %s", n.ID, n.Color, want[n.ID])
		}
	}
}

func TestSplitLabel(t *testing.T) {
	tests := []struct {
		text string
		max  int
		want []string
	}{
		{"short", 22, []string{"short"}},
		{"Information Technology Services", 22, []string{"Information Technology", "Services"}},
		{"abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"a bcdef", 3, []string{"a", "bcd", "ef"}},
		{"🇫🇷🇩🇪🇮🇹", 2, []string{"🇫🇷🇩🇪", "🇮🇹"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SplitLabel(tt.text, tt.max)); diff != "" {
			t.Errorf("SplitLabel(%q, %d) mismatch (-want +got):\n%s", tt.text, tt.max, diff)
		}
	}
}
