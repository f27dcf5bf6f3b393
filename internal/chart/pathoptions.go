package chart

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ParsePathOptions applies a JSON object of wire names to values, in
// document order. A payload that is not a JSON object, or that names an
// unknown property, is logged and ignored as a whole.
func (c *Context) ParsePathOptions(payload string) *Context {
	if !gjson.Valid(payload) {
		c.Logger().Warn("provided options object is not valid: %.80q", payload)
		return c
	}
	doc := gjson.Parse(payload)
	if !doc.IsObject() {
		c.Logger().Warn("provided options are not a JSON object: %.80q", payload)
		return c
	}

	type update struct {
		opt   Option
		value any
	}
	var updates []update
	var bad error
	doc.ForEach(func(key, value gjson.Result) bool {
		o, err := ParseOption(key.String())
		if err != nil {
			bad = err
			return false
		}
		updates = append(updates, update{o, value.Value()})
		return true
	})
	if bad != nil {
		c.Logger().Warn("provided options object is not valid: %v", bad)
		return c
	}

	for _, u := range updates {
		c.Set(u.opt, u.value)
	}
	return c
}

// PathOptions encodes every property as a JSON object keyed by wire name,
// in declaration order. It is the inverse of ParsePathOptions for JSON
// representable values.
func (c *Context) PathOptions() (string, error) {
	doc := "{}"
	for o := Option(0); o < optionCount; o++ {
		var err error
		doc, err = sjson.Set(doc, o.String(), plain(c.Value(o)))
		if err != nil {
			return "", err
		}
	}
	return doc, nil
}
