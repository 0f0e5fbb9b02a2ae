package generators

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmograph/cosmograph/pkg/graph"
)

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New("Sample Graph")
	g.AddNode("tribal council", "Tribal Council", "authority", strings.Repeat("d", 200), "code.txt")
	g.AddNode("fishing code", "Fishing Code", "document", "short", "code.txt")
	g.AddEdge("tribal council", "fishing code", "establishes")
	g.AddEdge("fishing code", "dangling target", "references")
	return g
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	g := sampleGraph(t)
	require.NoError(t, WriteCSV(g, dir))

	loaded, err := ReadCSV(dir, "Sample Graph")
	require.NoError(t, err)

	stats := loaded.Stats()
	assert.Equal(t, 2, stats.Nodes)
	assert.Equal(t, 2, stats.Edges)

	council := loaded.Node("tribal council")
	require.NotNil(t, council)
	assert.Equal(t, "Tribal Council", council.Label)
	// CSV keeps the full description, no display truncation.
	assert.Len(t, council.Description, 200)
}

func TestWriteCSV_ColumnLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCSV(sampleGraph(t), dir))

	f, err := os.Open(filepath.Join(dir, NodesFileName))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"id", "label", "category", "description"}, rows[0])

	ef, err := os.Open(filepath.Join(dir, EdgesFileName))
	require.NoError(t, err)
	defer ef.Close()

	edgeRows, err := csv.NewReader(ef).ReadAll()
	require.NoError(t, err)
	require.Len(t, edgeRows, 3)
	assert.Equal(t, []string{"source", "target", "type"}, edgeRows[0])
	assert.Equal(t, []string{"tribal council", "fishing code", "establishes"}, edgeRows[1])
}

func TestReadCSV_MissingFilesFail(t *testing.T) {
	_, err := ReadCSV(t.TempDir(), "t")
	assert.Error(t, err)
}

func TestWriteHTML_EmbedsGraphData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteHTML(sampleGraph(t), dir))

	data, err := os.ReadFile(filepath.Join(dir, HTMLFileName))
	require.NoError(t, err)
	html := string(data)

	assert.Contains(t, html, "<title>Sample Graph</title>")
	assert.Contains(t, html, "Tribal Council")
	assert.Contains(t, html, "establishes")
	assert.Contains(t, html, "d3.forceSimulation")
	// The display description is truncated for the HTML view.
	assert.NotContains(t, html, strings.Repeat("d", 151))
	assert.Contains(t, html, strings.Repeat("d", 150))
}

func TestWriteHTML_DefaultTitle(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteHTML(graph.New(""), dir))

	data, err := os.ReadFile(filepath.Join(dir, HTMLFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>Knowledge Graph</title>")
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	g := sampleGraph(t)
	require.NoError(t, WriteJSON(g, dir))

	export, err := LoadJSON(filepath.Join(dir, JSONFileName))
	require.NoError(t, err)

	assert.Equal(t, "Sample Graph", export.Title)
	require.Len(t, export.Nodes, 2)
	assert.Equal(t, "tribal council", export.Nodes[0].ID)
	assert.Len(t, []rune(export.Nodes[0].Description), 150)
	assert.Len(t, export.Edges, 2)
	assert.Equal(t, 2, export.Stats.Nodes)
}
