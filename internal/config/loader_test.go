package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	want := map[string]any{
		"context": map[string]any{
			"VIEW_STATE":   "all-tree",
			"CHART_HEIGHT": 640.0,
			"FILTERS":      map[string]any{"region": []any{"EU", "APAC"}},
		},
	}

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"toml", "chart.toml", `
[context]
VIEW_STATE = "all-tree"
CHART_HEIGHT = 640

[context.FILTERS]
region = ["EU", "APAC"]
`},
		{"yaml", "chart.yaml", `
context:
  VIEW_STATE: all-tree
  CHART_HEIGHT: 640
  FILTERS:
    region: [EU, APAC]
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil || got != nil {
		t.Errorf("Load(missing) = %v, %v, want nil, nil", got, err)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load("chart.ini"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(.ini) error = %v, want ErrUnsupportedFormat", err)
	}

	_, err := Load(writeFile(t, "bad.toml", "VIEW_STATE = = 1"))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Load(bad) error = %v, want *ParseError", err)
	}
	if perr.Format != "toml" || perr.Unwrap() == nil {
		t.Errorf("ParseError = %+v", perr)
	}
}

func TestParse_EmptyYAML(t *testing.T) {
	got, err := Parse("<test>", FormatYAML, []byte("  \n"))
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("Parse(empty) = %v, %v, want empty map", got, err)
	}
}
