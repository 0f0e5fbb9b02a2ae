package generators

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/cosmograph/cosmograph/pkg/graph"
)

const JSONFileName = "knowledge_graph.json"

// WriteJSON persists the export snapshot as an indented JSON file in
// dir, for downstream tooling that wants the graph without scraping
// the CSV tables.
func WriteJSON(g *graph.Graph, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	data, err := json.MarshalIndent(g.Export(), "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal graph")
	}

	path := filepath.Join(dir, JSONFileName)
	return errors.Wrapf(os.WriteFile(path, data, 0644), "failed to write %s", path)
}

// LoadJSON reads a previously written snapshot back.
func LoadJSON(path string) (*graph.Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	var export graph.Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return &export, nil
}
