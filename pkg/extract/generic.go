package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/cosmograph/cosmograph/pkg/graph"
	"github.com/cosmograph/cosmograph/pkg/patterns"
)

// GenericExtractor extracts entities from any text document using a
// configurable pattern table. Only entities whose occurrence count
// meets the configured threshold become nodes: precision over recall,
// so one-off matches of broad patterns do not flood the graph.
type GenericExtractor struct {
	graph    *graph.Graph
	config   *patterns.Config
	compiled []*regexp.Regexp
	logger   *logrus.Logger
}

// NewGeneric creates a generic extractor with the built-in default
// pattern table.
func NewGeneric(g *graph.Graph) *GenericExtractor {
	e, err := NewGenericFromConfig(g, patterns.Default())
	if err != nil {
		// The default table is validated by its own tests; a compile
		// failure here is a programming error.
		panic(err)
	}
	return e
}

// NewGenericFromConfig creates a generic extractor driven by a
// validated pattern configuration.
func NewGenericFromConfig(g *graph.Graph, cfg *patterns.Config) (*GenericExtractor, error) {
	compiled := make([]*regexp.Regexp, 0, len(cfg.EntityPatterns))
	for _, ep := range cfg.EntityPatterns {
		re, err := regexp.Compile(ep.Pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "entity pattern %q", ep.Name)
		}
		compiled = append(compiled, re)
	}
	return &GenericExtractor{
		graph:    g,
		config:   cfg,
		compiled: compiled,
		logger:   newLogger(),
	}, nil
}

// Supports reports true for plain-text file types.
func (e *GenericExtractor) Supports(path string) bool {
	return hasExtension(path, textExtensions)
}

// Extract counts pattern matches across the whole document and adds a
// node for every entity that clears the occurrence threshold, linked to
// the document node with a "mentions" edge.
func (e *GenericExtractor) Extract(ctx context.Context, path string) (*graph.Graph, error) {
	timer := prometheus.NewTimer(extractionDuration.WithLabelValues("generic"))
	defer timer.ObserveDuration()

	text, err := readText(path)
	if err != nil {
		return nil, err
	}
	sourceName := fileStem(path)
	fileName := filepath.Base(path)

	docID := e.graph.AddNode(sourceName, sourceName, "document", "Source: "+fileName, fileName)

	for i, ep := range e.config.EntityPatterns {
		counts := make(map[string]int)
		var order []string

		for _, m := range e.compiled[i].FindAllStringSubmatch(text, -1) {
			entity := trimSpaceGroup(m)
			if utf8.RuneCountInString(entity) < ep.MinLength {
				continue
			}
			if _, seen := counts[entity]; !seen {
				order = append(order, entity)
			}
			counts[entity]++
		}

		added := 0
		for _, entity := range order {
			count := counts[entity]
			if count < e.config.MinOccurrences {
				continue
			}
			entityID := e.graph.AddNode(
				entity,
				entity,
				ep.Category,
				fmt.Sprintf("Occurs %d times", count),
				fileName,
			)
			e.graph.AddEdge(docID, entityID, "mentions")
			entitiesExtracted.WithLabelValues(ep.Category).Inc()
			added++
		}

		e.logger.WithFields(logrus.Fields{
			"pattern": ep.Name,
			"matched": len(counts),
			"added":   added,
		}).Debug("Pattern pass completed")
	}

	return e.graph, nil
}

func trimSpaceGroup(m []string) string {
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
