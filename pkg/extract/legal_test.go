package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmograph/cosmograph/pkg/graph"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLegalExtractor_Supports(t *testing.T) {
	e := NewLegal(graph.New("test"))
	assert.True(t, e.Supports("doc.txt"))
	assert.True(t, e.Supports("DOC.MD"))
	assert.False(t, e.Supports("doc.pdf"))
	assert.False(t, e.Supports("doc.docx"))
}

func TestClassifyLegalDocument(t *testing.T) {
	assert.Equal(t, "constitution", classifyLegalDocument("tribal_constitution", "any text"))
	assert.Equal(t, "constitution", classifyLegalDocument("doc", "THE CONSTITUTION OF THE TRIBE"))
	assert.Equal(t, "ordinance", classifyLegalDocument("fishing_ordinance", "rules about fishing"))
	assert.Equal(t, "code", classifyLegalDocument("criminal_code", "TITLE I - OFFENSES"))
}

func TestLegalExtractor_Constitution(t *testing.T) {
	path := writeTempFile(t, "constitution.txt", "ARTICLE I - RIGHTS\nSome content here.\nSECTION 1. All members shall have equal rights.")

	g := graph.New("test")
	_, err := NewLegal(g).Extract(context.Background(), path)
	require.NoError(t, err)

	stats := g.Stats()
	assert.GreaterOrEqual(t, stats.Nodes, 2)

	article := g.Node(graph.NormalizeID("Article I"))
	require.NotNil(t, article)
	assert.Equal(t, "article", article.Category)
	assert.Equal(t, "Article I - Rights", article.Label)

	doc := g.Node(graph.NormalizeID("constitution"))
	require.NotNil(t, doc)
	assert.Equal(t, "constitution", doc.Category)

	foundContains := false
	for _, edge := range g.Edges() {
		if edge.Source == doc.ID && edge.Target == article.ID && edge.Type == "contains" {
			foundContains = true
		}
	}
	assert.True(t, foundContains)
}

func TestLegalExtractor_Code(t *testing.T) {
	text := `TITLE I - CRIMINAL OFFENSES
CHAPTER 1, GENERAL PROVISIONS
A person is guilty of disorderly conduct if he disturbs the peace.
"Property" means anything of value owned by a person.`
	path := writeTempFile(t, "law_and_order_code.txt", text)

	g := graph.New("test")
	_, err := NewLegal(g).Extract(context.Background(), path)
	require.NoError(t, err)

	require.NotNil(t, g.Node(graph.NormalizeID("Title I - Criminal Offenses")))
	require.NotNil(t, g.Node(graph.NormalizeID("Chapter 1 - General Provisions")))

	offense := g.Node(graph.NormalizeID("Disorderly Conduct"))
	require.NotNil(t, offense)
	assert.Equal(t, "offense", offense.Category)

	property := g.Node(graph.NormalizeID("Property"))
	require.NotNil(t, property)
	assert.Equal(t, "definition", property.Category)
	assert.Contains(t, property.Description, "anything of value")
}

func TestLegalExtractor_KeyEntities(t *testing.T) {
	path := writeTempFile(t, "governance_code.txt", "The tribal council shall adopt rules. The Tribal Court reviews appeals.")

	g := graph.New("test")
	_, err := NewLegal(g).Extract(context.Background(), path)
	require.NoError(t, err)

	council := g.Node(graph.NormalizeID("Tribal Council"))
	require.NotNil(t, council)
	assert.Equal(t, "authority", council.Category)

	court := g.Node(graph.NormalizeID("Tribal Court"))
	require.NotNil(t, court)

	chairman := g.Node(graph.NormalizeID("Tribal Chairman"))
	assert.Nil(t, chairman)
}

func TestLegalExtractor_EmptyInput(t *testing.T) {
	path := writeTempFile(t, "empty_code.txt", "")

	g := graph.New("test")
	_, err := NewLegal(g).Extract(context.Background(), path)
	require.NoError(t, err)

	// Only the document node itself.
	assert.Equal(t, 1, g.Stats().Nodes)
	assert.Empty(t, g.Edges())
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Criminal Offenses", titleCase("CRIMINAL OFFENSES"))
	assert.Equal(t, "General Provisions", titleCase("general   provisions"))
	assert.Equal(t, "", titleCase(""))
}
