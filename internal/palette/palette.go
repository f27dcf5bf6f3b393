// Package palette provides the colour scales charts resolve through their
// COLOR_SCALE_REFERENCE property.
package palette

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/chartflow/internal/chart"
)

// Errors returned by palette operations.
var (
	ErrUnknownScale = errors.New("unknown colour scale")
	ErrEmptyScale   = errors.New("colour scale has no stops")
	ErrInvalidStop  = errors.New("invalid colour stop")
)

// DefaultName is the reference of the built-in scale.
const DefaultName = "DEFAULT"

// Stop maps a domain value to a hex colour.
type Stop struct {
	Value any
	Color string
}

// Scale maps domain values to colours.
type Scale interface {
	Color(v any) colorful.Color
}

// Hex returns the scale colour for v as "#rrggbb".
func Hex(s Scale, v any) string {
	return s.Color(v).Hex()
}

// DefaultStops are the stops of the built-in node-kind scale.
func DefaultStops() []Stop {
	return []Stop{
		{"Country", "#418BFC"},
		{"Region", "#46BCCB"},
		{"Industry", "#46BCC8"},
		{"Sector", "#EA6BCB"},
		{"Company", "#B9AACB"},
		{"FX", "#B6BE1C"},
		{"Equity", "#F64D1A"},
	}
}

// NewScale builds an ordinal scale when every stop value is a string and a
// clamped linear scale when every stop value is numeric.
func NewScale(stops []Stop) (Scale, error) {
	if len(stops) == 0 {
		return nil, ErrEmptyScale
	}

	colors := make([]colorful.Color, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s.Color)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidStop, s.Color, err)
		}
		colors[i] = c
	}

	allStrings, allNumbers := true, true
	for _, s := range stops {
		if _, ok := s.Value.(string); !ok {
			allStrings = false
		}
		if _, ok := toFloat(s.Value); !ok {
			allNumbers = false
		}
	}

	switch {
	case allStrings:
		o := &Ordinal{rng: colors, index: make(map[string]int)}
		for _, s := range stops {
			o.add(s.Value.(string))
		}
		return o, nil
	case allNumbers:
		l := &Linear{}
		for i, s := range stops {
			f, _ := toFloat(s.Value)
			l.stops = append(l.stops, linearStop{f, colors[i]})
		}
		sort.SliceStable(l.stops, func(i, j int) bool { return l.stops[i].at < l.stops[j].at })
		return l, nil
	default:
		return nil, fmt.Errorf("%w: stop values must be all strings or all numbers", ErrInvalidStop)
	}
}

// Ordinal maps each distinct domain value to the range colour at its
// domain index, cycling the range. Values not seen before are appended to
// the domain.
type Ordinal struct {
	mu     sync.Mutex
	rng    []colorful.Color
	domain []string
	index  map[string]int
}

func (o *Ordinal) add(v string) int {
	if i, ok := o.index[v]; ok {
		return i
	}
	i := len(o.domain)
	o.domain = append(o.domain, v)
	o.index[v] = i
	return i
}

// Color returns the colour for v.
func (o *Ordinal) Color(v any) colorful.Color {
	o.mu.Lock()
	defer o.mu.Unlock()
	i := o.add(fmt.Sprint(v))
	return o.rng[i%len(o.rng)]
}

// Domain returns the domain values in assignment order.
func (o *Ordinal) Domain() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.domain...)
}

type linearStop struct {
	at    float64
	color colorful.Color
}

// Linear interpolates between numeric stops in Lab space, clamped to the
// outer stops. Non-numeric values map to the first stop.
type Linear struct {
	stops []linearStop
}

// Color returns the colour for v.
func (l *Linear) Color(v any) colorful.Color {
	f, ok := toFloat(v)
	if !ok || f <= l.stops[0].at {
		return l.stops[0].color
	}
	last := l.stops[len(l.stops)-1]
	if f >= last.at {
		return last.color
	}
	for i := 1; i < len(l.stops); i++ {
		hi := l.stops[i]
		if f > hi.at {
			continue
		}
		lo := l.stops[i-1]
		if hi.at == lo.at {
			return hi.color
		}
		return lo.color.BlendLab(hi.color, (f-lo.at)/(hi.at-lo.at)).Clamped()
	}
	return last.color
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}

// Registry maps scale references to scales.
type Registry struct {
	mu     sync.RWMutex
	scales map[string]Scale
}

// NewRegistry creates a registry holding the DEFAULT scale.
func NewRegistry() *Registry {
	def, err := NewScale(DefaultStops())
	if err != nil {
		panic(err)
	}
	return &Registry{scales: map[string]Scale{DefaultName: def}}
}

// Register adds or replaces a scale.
func (r *Registry) Register(name string, s Scale) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scales[name] = s
}

// Lookup returns the named scale.
func (r *Registry) Lookup(name string) (Scale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scales[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScale, name)
	}
	return s, nil
}

// Names returns the registered references sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.scales))
	for n := range r.scales {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ForContext resolves the scale named by the context's
// COLOR_SCALE_REFERENCE property.
func (r *Registry) ForContext(c *chart.Context) (Scale, error) {
	ref, ok := chart.ValueOf[string](c, chart.ColorScaleReference)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownScale, c.Value(chart.ColorScaleReference))
	}
	return r.Lookup(ref)
}

// LoadStops converts a configuration section of name to hex colour
// entries into stops. Keys that parse as numbers become numeric stops.
func LoadStops(section map[string]any) ([]Stop, error) {
	keys := make([]string, 0, len(section))
	for k := range section {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	stops := make([]Stop, 0, len(keys))
	for _, k := range keys {
		hex, ok := section[k].(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s is %T, want a hex string", ErrInvalidStop, k, section[k])
		}
		var value any = k
		var f float64
		if _, err := fmt.Sscanf(k, "%g", &f); err == nil && fmt.Sprint(f) == k {
			value = f
		}
		stops = append(stops, Stop{Value: value, Color: hex})
	}
	return stops, nil
}
