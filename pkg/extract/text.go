package extract

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/cosmograph/cosmograph/pkg/graph"
)

var (
	headerRe         = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	textDefinitionRe = regexp.MustCompile(`"([A-Za-z\s]+)"\s+(?:means|shall mean|is defined as)\s+([^.]+)`)
)

// TextExtractor extracts Markdown-style headers as sections and quoted
// definitional phrases as definitions from plain text files.
type TextExtractor struct {
	graph  *graph.Graph
	logger *logrus.Logger
}

// NewText creates a text extractor writing into g.
func NewText(g *graph.Graph) *TextExtractor {
	return &TextExtractor{graph: g, logger: newLogger()}
}

// Supports reports true for plain-text file types.
func (e *TextExtractor) Supports(path string) bool {
	return hasExtension(path, textExtensions)
}

// Extract adds a document node, then header and definition nodes linked
// with "contains" and "defines" edges. Absence of matches leaves a
// graph with only the document node.
func (e *TextExtractor) Extract(ctx context.Context, path string) (*graph.Graph, error) {
	timer := prometheus.NewTimer(extractionDuration.WithLabelValues("text"))
	defer timer.ObserveDuration()

	text, err := readText(path)
	if err != nil {
		return nil, err
	}
	sourceName := fileStem(path)
	fileName := filepath.Base(path)

	docID := e.graph.AddNode(sourceName, sourceName, "document", "Source: "+fileName, fileName)

	e.extractHeaders(text, docID, fileName)
	e.extractDefinitions(text, docID, fileName)

	return e.graph, nil
}

func (e *TextExtractor) extractHeaders(text, docID, source string) {
	for _, m := range headerRe.FindAllStringSubmatch(text, -1) {
		header := strings.TrimSpace(m[1])
		if len(header) <= 3 {
			continue
		}
		headerID := e.graph.AddNode(header, header, "section", truncateRunes(header, 100), source)
		e.graph.AddEdge(docID, headerID, "contains")
		entitiesExtracted.WithLabelValues("section").Inc()
	}
}

func (e *TextExtractor) extractDefinitions(text, docID, source string) {
	for _, m := range textDefinitionRe.FindAllStringSubmatch(text, -1) {
		term := titleCase(strings.TrimSpace(m[1]))
		if n := len(term); n <= 2 || n >= 40 {
			continue
		}
		definition := truncateRunes(strings.TrimSpace(m[2]), 100)
		termID := e.graph.AddNode(term, term, "definition", definition, source)
		e.graph.AddEdge(docID, termID, "defines")
		entitiesExtracted.WithLabelValues("definition").Inc()
	}
}
