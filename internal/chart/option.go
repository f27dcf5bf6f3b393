package chart

import "fmt"

// Option names a context property. The set is closed; indexing a context
// with a value outside it panics.
type Option int

// Recognized properties.
const (
	// DataField selects the data set. Data-affecting.
	DataField Option = iota
	// ColorScaleReference names the palette used to colour nodes.
	ColorScaleReference
	// ChartView selects the view that renders the data.
	ChartView
	// ChartBackground is the chart background colour.
	ChartBackground
	// ChartHeight is the chart height in pixels.
	ChartHeight
	// Visible toggles chart display.
	Visible
	// ViewState selects the graph view state (map, region-tree, ...).
	ViewState
	// ViewCountry is the country id expanded by country-tree views.
	ViewCountry
	// Filters is the projection of every filter cell. Data-affecting.
	Filters

	optionCount
)

// Data set names used as DataField and ChartView values.
const (
	DataGraph = "GRAPH"
	DataMap   = "MAP"
	DataTable = "TABLE"
)

var optionNames = [optionCount]string{
	DataField:           "DATA_FIELD",
	ColorScaleReference: "COLOR_SCALE_REFERENCE",
	ChartView:           "CHART_VIEW",
	ChartBackground:     "CHART_BACKGROUND",
	ChartHeight:         "CHART_HEIGHT",
	Visible:             "VISIBLE",
	ViewState:           "VIEW_STATE",
	ViewCountry:         "VIEW_COUNTRY",
	Filters:             "FILTERS",
}

var dataAffecting = [optionCount]bool{
	DataField: true,
	Filters:   true,
}

// String returns the wire name.
func (o Option) String() string {
	if o < 0 || o >= optionCount {
		return fmt.Sprintf("Option(%d)", int(o))
	}
	return optionNames[o]
}

// Valid reports whether o is a recognized property.
func (o Option) Valid() bool {
	return o >= 0 && o < optionCount
}

// DataAffecting reports whether changes to o trigger the data terms path.
func (o Option) DataAffecting() bool {
	return dataAffecting[o]
}

// AllOptions returns every property in declaration order.
func AllOptions() []Option {
	out := make([]Option, optionCount)
	for i := range out {
		out[i] = Option(i)
	}
	return out
}

// DataOptions returns the data-affecting properties in declaration order.
func DataOptions() []Option {
	var out []Option
	for o := Option(0); o < optionCount; o++ {
		if dataAffecting[o] {
			out = append(out, o)
		}
	}
	return out
}

// ParseOption maps a wire name to its Option.
func ParseOption(name string) (Option, error) {
	for o, n := range optionNames {
		if n == name {
			return Option(o), nil
		}
	}
	return 0, &UnknownOptionError{Name: name}
}

// Values maps properties to values.
type Values map[Option]any

// DefaultValues returns a fresh copy of the default property values.
func DefaultValues() Values {
	return Values{
		DataField:           DataGraph,
		ColorScaleReference: "DEFAULT",
		ChartView:           DataGraph,
		ChartBackground:     "transparent",
		ChartHeight:         1000.0,
		Visible:             true,
		ViewState:           "map",
		ViewCountry:         nil,
		Filters:             map[string]any{},
	}
}

// ToMap converts v to a map keyed by wire names.
func (v Values) ToMap() map[string]any {
	out := make(map[string]any, len(v))
	for o, val := range v {
		out[o.String()] = plain(val)
	}
	return out
}

// ParseValues converts a map keyed by wire names. Unknown names fail.
func ParseValues(m map[string]any) (Values, error) {
	out := make(Values, len(m))
	for name, val := range m {
		o, err := ParseOption(name)
		if err != nil {
			return nil, err
		}
		out[o] = val
	}
	return out, nil
}
