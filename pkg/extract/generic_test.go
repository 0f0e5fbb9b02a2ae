package extract

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmograph/cosmograph/pkg/graph"
	"github.com/cosmograph/cosmograph/pkg/patterns"
)

func TestGenericExtractor_OccurrenceThreshold(t *testing.T) {
	cfg := &patterns.Config{
		MinOccurrences: 3,
		EntityPatterns: []patterns.EntityPattern{
			{Name: "word", Pattern: `\b([A-Z][a-z]+)\b`, Category: "term", MinLength: 2},
		},
	}
	require.NoError(t, cfg.Validate())

	text := "Alpha Alpha Alpha Beta"
	path := writeTempFile(t, "doc.txt", text)

	g := graph.New("test")
	e, err := NewGenericFromConfig(g, cfg)
	require.NoError(t, err)

	_, err = e.Extract(context.Background(), path)
	require.NoError(t, err)

	alpha := g.Node(graph.NormalizeID("Alpha"))
	require.NotNil(t, alpha)
	assert.Equal(t, "term", alpha.Category)
	assert.Equal(t, "Occurs 3 times", alpha.Description)

	assert.Nil(t, g.Node(graph.NormalizeID("Beta")))
}

func TestGenericExtractor_MentionsEdges(t *testing.T) {
	cfg := &patterns.Config{
		MinOccurrences: 1,
		EntityPatterns: []patterns.EntityPattern{
			{Name: "acronym", Pattern: `\b([A-Z]{2,6})\b`, Category: "acronym", MinLength: 2},
		},
	}

	path := writeTempFile(t, "report.txt", "The FBI met the EPA.")

	g := graph.New("test")
	e, err := NewGenericFromConfig(g, cfg)
	require.NoError(t, err)

	_, err = e.Extract(context.Background(), path)
	require.NoError(t, err)

	docID := graph.NormalizeID("report")
	var targets []string
	for _, edge := range g.Edges() {
		assert.Equal(t, docID, edge.Source)
		assert.Equal(t, "mentions", edge.Type)
		targets = append(targets, edge.Target)
	}
	assert.Equal(t, []string{"FBI", "EPA"}, targets)
}

func TestGenericExtractor_MinLengthFilter(t *testing.T) {
	cfg := &patterns.Config{
		MinOccurrences: 1,
		EntityPatterns: []patterns.EntityPattern{
			{Name: "word", Pattern: `\b([a-z]+)\b`, Category: "term", MinLength: 4},
		},
	}

	path := writeTempFile(t, "doc.txt", "cat elephant dog")

	g := graph.New("test")
	e, err := NewGenericFromConfig(g, cfg)
	require.NoError(t, err)

	_, err = e.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.NotNil(t, g.Node(graph.NormalizeID("elephant")))
	assert.Nil(t, g.Node(graph.NormalizeID("cat")))
	assert.Nil(t, g.Node(graph.NormalizeID("dog")))
}

func TestGenericExtractor_DefaultPatterns(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 3; i++ {
		fmt.Fprintln(&sb, `John Smith signed the "master agreement" under Section 4.2 with NASA.`)
	}
	path := writeTempFile(t, "contract.txt", sb.String())

	g := graph.New("test")
	_, err := NewGeneric(g).Extract(context.Background(), path)
	require.NoError(t, err)

	assert.NotNil(t, g.Node(graph.NormalizeID("John Smith")))
	assert.NotNil(t, g.Node(graph.NormalizeID("NASA")))
	assert.NotNil(t, g.Node(graph.NormalizeID("master agreement")))
	assert.NotNil(t, g.Node(graph.NormalizeID("4.2")))
}

func TestGenericExtractor_InvalidPatternFails(t *testing.T) {
	cfg := &patterns.Config{
		MinOccurrences: 1,
		EntityPatterns: []patterns.EntityPattern{
			{Name: "broken", Pattern: `([a-z`, Category: "term", MinLength: 1},
		},
	}

	_, err := NewGenericFromConfig(graph.New("test"), cfg)
	assert.Error(t, err)
}
