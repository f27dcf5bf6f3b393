// Package data loads chart data: graph rows from CSV files, remote data
// through the HTTP API with a response cache, and automatic reloading
// driven by a chart context.
package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/chartflow/internal/graph"
)

// Default file names of a CSV graph source.
const (
	NodesFile         = "nodes.csv"
	RelationshipsFile = "relationships.csv"
)

// Source provides graph data.
type Source interface {
	Load(ctx context.Context) (graph.Data, error)
}

// CSVSource reads nodes and relationships from header-row CSV files in a
// directory.
type CSVSource struct {
	Dir string
}

// Load reads both files concurrently.
func (s CSVSource) Load(ctx context.Context) (graph.Data, error) {
	var data graph.Data
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := readCSVFile(ctx, filepath.Join(s.Dir, NodesFile))
		data.Nodes = rows
		return err
	})
	g.Go(func() error {
		rows, err := readCSVFile(ctx, filepath.Join(s.Dir, RelationshipsFile))
		data.Links = rows
		return err
	})

	if err := g.Wait(); err != nil {
		return graph.Data{}, err
	}
	return data, nil
}

func readCSVFile(ctx context.Context, path string) ([]graph.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}

// ParseCSV reads a header-row CSV document. Short records leave the
// missing columns empty and blank lines are skipped.
func ParseCSV(r io.Reader) ([]graph.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []graph.Row{}, nil
	}
	if err != nil {
		return nil, err
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := []graph.Row{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row := make(graph.Row, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
}

// DecodeGraph converts loaded data into graph data. It accepts graph.Data
// as returned by a Source and decoded JSON objects with "nodes" and
// "links" arrays of objects. Non-string cells are formatted.
func DecodeGraph(v any) (graph.Data, error) {
	switch x := v.(type) {
	case graph.Data:
		return x, nil
	case *graph.Data:
		if x == nil {
			return graph.Data{}, nil
		}
		return *x, nil
	case map[string]any:
		nodes, err := decodeRows(x["nodes"])
		if err != nil {
			return graph.Data{}, fmt.Errorf("nodes: %w", err)
		}
		links, err := decodeRows(x["links"])
		if err != nil {
			return graph.Data{}, fmt.Errorf("links: %w", err)
		}
		return graph.Data{Nodes: nodes, Links: links}, nil
	default:
		return graph.Data{}, fmt.Errorf("cannot decode graph data from %T", v)
	}
}

func decodeRows(v any) ([]graph.Row, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("want an array, got %T", v)
	}
	rows := make([]graph.Row, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d: want an object, got %T", i, item)
		}
		row := make(graph.Row, len(obj))
		for k, cell := range obj {
			switch c := cell.(type) {
			case string:
				row[k] = c
			case nil:
				row[k] = ""
			default:
				row[k] = fmt.Sprint(c)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
