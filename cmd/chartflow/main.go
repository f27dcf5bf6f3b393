// Package main is the entry point for the chartflow server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/chartflow/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, code, ok := parseArgs(args, os.Stdout, os.Stderr)
	if !ok {
		return code
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "chartflow - reactive chart context server\n\n")
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  chartflow serve [options]   Serve the data API, chart state and metrics\n")
	fmt.Fprintf(w, "  chartflow watch [options]   Follow a JSON chart options file\n")
	fmt.Fprintf(w, "  chartflow -version          Show version information\n\n")
	fmt.Fprintf(w, "Run 'chartflow <command> -h' for command options.\n\n")
	fmt.Fprintf(w, "Examples:\n")
	fmt.Fprintf(w, "  chartflow serve -d ./data -addr :8080\n")
	fmt.Fprintf(w, "  chartflow watch -c chartflow.toml -o view.json\n")
	fmt.Fprintf(w, "  chartflow watch -api http://localhost:8080 -o view.json\n")
}

// parseArgs returns the options of the selected command. When ok is false
// the process should exit with code.
func parseArgs(args []string, stdout, stderr io.Writer) (opts app.Options, code int, ok bool) {
	if len(args) == 0 {
		usage(stderr)
		return opts, 2, false
	}

	switch args[0] {
	case "-version", "--version", "-v":
		fmt.Fprintf(stdout, "chartflow %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return opts, 0, false
	case "-help", "--help", "-h", "help":
		usage(stdout)
		return opts, 0, false
	case "serve", "watch":
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", args[0])
		usage(stderr)
		return opts, 2, false
	}
	command := args[0]

	fs := flag.NewFlagSet("chartflow "+command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to TOML or YAML configuration file (watched)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.DataDir, "data", "", "Directory holding nodes.csv and relationships.csv")
	fs.StringVar(&opts.DataDir, "d", "", "Data directory (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.OptionsPath, "options", "", "Path to JSON chart options file (watched)")
	fs.StringVar(&opts.OptionsPath, "o", "", "Path to JSON chart options file (shorthand)")
	switch command {
	case "serve":
		fs.StringVar(&opts.Addr, "addr", ":8080", "HTTP listen address")
	case "watch":
		fs.StringVar(&opts.APIURL, "api", "", "Base URL of a remote data API")
	}

	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return opts, 0, false
		}
		return opts, 2, false
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		return opts, 1, false
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "Error: unexpected arguments: %v\n", fs.Args())
		return opts, 2, false
	}
	if command == "serve" && opts.Addr == "" {
		fmt.Fprintf(stderr, "Error: serve requires -addr\n")
		return opts, 2, false
	}
	if command == "watch" && opts.OptionsPath == "" {
		fmt.Fprintf(stderr, "Error: watch requires -options\n")
		return opts, 2, false
	}
	return opts, 0, true
}
