package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/chartflow/internal/app"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want app.Options
	}{
		{
			"serve defaults",
			[]string{"serve"},
			app.Options{Addr: ":8080"},
		},
		{
			"serve",
			[]string{"serve", "-c", "cf.toml", "-d", "data", "-addr", ":9000", "-log-level", "debug"},
			app.Options{ConfigPath: "cf.toml", DataDir: "data", Addr: ":9000", LogLevel: "debug"},
		},
		{
			"watch",
			[]string{"watch", "-options", "view.json", "-api", "http://localhost:8080"},
			app.Options{OptionsPath: "view.json", APIURL: "http://localhost:8080"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			got, code, ok := parseArgs(tt.args, &stdout, &stderr)
			if !ok {
				t.Fatalf("parseArgs(%v) exited with %d: %s", tt.args, code, stderr.String())
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseArgs(%v) mismatch (-want +got):\n%s", tt.args, diff)
			}
		})
	}
}

func TestParseArgs_Exit(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"no command", nil, 2, "Usage:"},
		{"unknown command", []string{"draw"}, 2, `unknown command "draw"`},
		{"version", []string{"-version"}, 0, "chartflow dev"},
		{"help", []string{"help"}, 0, "Usage:"},
		{"bad level", []string{"serve", "-log-level", "loud"}, 1, `invalid log level "loud"`},
		{"watch without options", []string{"watch"}, 2, "watch requires -options"},
		{"serve without addr", []string{"serve", "-addr", ""}, 2, "serve requires -addr"},
		{"extra args", []string{"serve", "x"}, 2, "unexpected arguments"},
		{"watch has no addr", []string{"watch", "-addr", ":1"}, 2, "-addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			_, code, ok := parseArgs(tt.args, &stdout, &stderr)
			if ok {
				t.Fatalf("parseArgs(%v) ok, want exit", tt.args)
			}
			if code != tt.wantCode {
				t.Errorf("parseArgs(%v) code = %d, want %d", tt.args, code, tt.wantCode)
			}
			out := stdout.String() + stderr.String()
			if !strings.Contains(out, tt.wantOut) {
				t.Errorf("parseArgs(%v) output = %q, want it to contain %q", tt.args, out, tt.wantOut)
			}
		})
	}
}
