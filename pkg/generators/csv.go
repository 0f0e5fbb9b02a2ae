// Package generators renders a knowledge graph into its output
// artifacts: CSV tables, an interactive HTML view, and a JSON snapshot.
package generators

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/cosmograph/cosmograph/pkg/graph"
)

const (
	NodesFileName = "graph_nodes.csv"
	EdgesFileName = "graph_data.csv"
)

// WriteCSV writes the node and edge tables into dir. Nodes carry their
// full untruncated label and description; truncation is a display
// concern of the HTML view only.
func WriteCSV(g *graph.Graph, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	nodeRows := [][]string{{"id", "label", "category", "description"}}
	for _, node := range g.Nodes() {
		nodeRows = append(nodeRows, []string{node.ID, node.Label, node.Category, node.Description})
	}
	if err := writeCSVFile(filepath.Join(dir, NodesFileName), nodeRows); err != nil {
		return err
	}

	edgeRows := [][]string{{"source", "target", "type"}}
	for _, edge := range g.Edges() {
		edgeRows = append(edgeRows, []string{edge.Source, edge.Target, edge.Type})
	}
	return writeCSVFile(filepath.Join(dir, EdgesFileName), edgeRows)
}

func writeCSVFile(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// ReadCSV loads a graph back from the CSV tables in dir. Used by the
// stats command to inspect a previous run without re-extracting.
func ReadCSV(dir, title string) (*graph.Graph, error) {
	g := graph.New(title)

	nodeRows, err := readCSVFile(filepath.Join(dir, NodesFileName))
	if err != nil {
		return nil, err
	}
	for _, row := range nodeRows {
		if len(row) < 4 {
			continue
		}
		g.AddNode(row[0], row[1], row[2], row[3], "")
	}

	edgeRows, err := readCSVFile(filepath.Join(dir, EdgesFileName))
	if err != nil {
		return nil, err
	}
	for _, row := range edgeRows {
		if len(row) < 3 {
			continue
		}
		g.AddEdge(row[0], row[1], row[2])
	}

	return g, nil
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if len(rows) > 0 {
		rows = rows[1:] // header
	}
	return rows, nil
}
