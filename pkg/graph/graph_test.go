package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeID_StripsPunctuation(t *testing.T) {
	assert.Equal(t, "TestNode", NormalizeID("Test!@#Node"))
	assert.Equal(t, "tribal council", NormalizeID("  tribal   council  "))
	assert.Equal(t, "section 1-2", NormalizeID("section 1-2"))
}

func TestNormalizeID_KeepsUnicodeLetters(t *testing.T) {
	assert.Equal(t, "Café", NormalizeID("Café!"))
	assert.Equal(t, "Łódź 42", NormalizeID("Łódź #42"))
}

func TestNormalizeID_Idempotent(t *testing.T) {
	inputs := []string{"Test!@#Node", "  a   b  ", "Art. 5 § 3", strings.Repeat("x", 250)}
	for _, in := range inputs {
		once := NormalizeID(in)
		assert.Equal(t, once, NormalizeID(once))
	}
}

func TestNormalizeID_TruncatesLongIDs(t *testing.T) {
	id := NormalizeID(strings.Repeat("a", 250))
	assert.Len(t, []rune(id), 100)
}

func TestAddNode_FirstWriteWins(t *testing.T) {
	g := New("test")

	id := g.AddNode("Test!@#Node", "Original", "person", "first", "a.txt")
	assert.Equal(t, "TestNode", id)

	again := g.AddNode("TestNode", "Replacement", "organization", "second", "b.txt")
	assert.Equal(t, id, again)

	node := g.Node(id)
	require.NotNil(t, node)
	assert.Equal(t, "Original", node.Label)
	assert.Equal(t, "person", node.Category)
	assert.Equal(t, "a.txt", node.SourceFile)
	assert.Equal(t, 1, g.Stats().Nodes)
}

func TestAddEdge_RejectsSelfLoops(t *testing.T) {
	g := New("test")
	assert.False(t, g.AddEdge("node a", "Node!!! A", "references"))
	assert.Empty(t, g.Edges())
}

func TestAddEdge_DeduplicatesTriples(t *testing.T) {
	g := New("test")

	assert.True(t, g.AddEdge("a", "b", "references"))
	assert.False(t, g.AddEdge("a", "b", "references"))
	assert.True(t, g.AddEdge("a", "b", "amends"))
	assert.True(t, g.AddEdge("b", "a", "references"))

	assert.Equal(t, 3, g.Stats().Edges)
}

func TestAddEdge_AllowsDanglingEndpoints(t *testing.T) {
	g := New("test")
	g.AddNode("a", "A", "person", "", "")

	assert.True(t, g.AddEdge("a", "never defined", "references"))
	assert.Nil(t, g.Node("never defined"))
}

func TestStats_CategoryHistogram(t *testing.T) {
	g := New("test")
	g.AddNode("a", "A", "person", "", "")
	g.AddNode("b", "B", "person", "", "")
	g.AddNode("c", "C", "document", "", "")
	g.AddEdge("a", "b", "knows")

	stats := g.Stats()
	assert.Equal(t, 3, stats.Nodes)
	assert.Equal(t, 1, stats.Edges)
	assert.Equal(t, map[string]int{"person": 2, "document": 1}, stats.Categories)
}

func TestExport_InsertionOrderAndTruncation(t *testing.T) {
	g := New("My Graph")

	longLabel := strings.Repeat("L", 80)
	longDesc := strings.Repeat("d", 200)
	g.AddNode("z-last-alphabetically-first-inserted", longLabel, "concept", longDesc, "")
	g.AddNode("a-first-alphabetically", "Short", "concept", "short", "")
	g.AddEdge("z-last-alphabetically-first-inserted", "a-first-alphabetically", "references")

	export := g.Export()
	require.Len(t, export.Nodes, 2)
	assert.Equal(t, "z-last-alphabetically-first-inserted", export.Nodes[0].ID)
	assert.Len(t, []rune(export.Nodes[0].Label), 60)
	assert.Len(t, []rune(export.Nodes[0].Description), 150)
	assert.Equal(t, "Short", export.Nodes[1].Label)
	assert.Equal(t, "My Graph", export.Title)
	require.Len(t, export.Edges, 1)
	assert.Equal(t, "references", export.Edges[0].Type)
}
