package chart

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func errorsAs(err error, target any) bool {
	return errors.As(err, target)
}

func TestRegistry(t *testing.T) {
	f := newFixture()
	r := NewRegistry(f.opts...)

	first := r.Create("main", Values{ViewState: "map"})
	if first.Name() != "main" {
		t.Errorf("Name() = %q, want main", first.Name())
	}

	second := r.Create("main", nil)
	if !first.Destroyed() {
		t.Error("Create() did not destroy the previous context")
	}
	if got, ok := r.Get("main"); !ok || got != second {
		t.Error("Get() did not return the replacement")
	}

	same := r.GetOrCreate("main", Values{ChartHeight: 10.0})
	if same != second {
		t.Fatal("GetOrCreate() replaced an existing context")
	}
	if !same.Owns(ChartHeight) || same.Value(ChartHeight) != 10.0 {
		t.Errorf("GetOrCreate() did not init ChartHeight: owned=%v value=%v", same.Owns(ChartHeight), same.Value(ChartHeight))
	}

	other := r.GetOrCreate("other", Values{Visible: false})
	if !r.Exists("other") || other.Value(Visible) != false {
		t.Error("GetOrCreate() did not create a new context")
	}

	if diff := cmp.Diff([]string{"main", "other"}, r.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	if !r.Delete("other") || !other.Destroyed() {
		t.Error("Delete() did not destroy the context")
	}
	if r.Delete("other") {
		t.Error("Delete() of a missing name returned true")
	}

	r.Close()
	if !second.Destroyed() || len(r.Names()) != 0 {
		t.Error("Close() left contexts behind")
	}
}
