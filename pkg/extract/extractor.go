// Package extract implements the document extraction strategies that
// populate a knowledge graph: deterministic pattern-based extractors
// for legal, generic and plain-text documents, a PDF front end, and an
// LLM-backed extractor with chunking, cost estimation and an operator
// approval gate.
package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cosmograph/cosmograph/pkg/graph"
)

// Extractor is the capability contract every strategy satisfies.
// Extract mutates the graph the strategy was constructed with and
// returns it for convenience.
type Extractor interface {
	// Supports reports whether this strategy handles the file type.
	Supports(path string) bool
	// Extract parses the file and adds its entities and relationships
	// to the graph.
	Extract(ctx context.Context, path string) (*graph.Graph, error)
}

var (
	// ErrOperatorDeclined signals that the operator rejected the
	// approval gate. It is a control-flow signal, not a failure, and
	// callers must not log or retry it as one.
	ErrOperatorDeclined = errors.New("extraction declined by operator")

	// ErrLLMUnavailable signals that the LLM strategy was requested
	// but the remote API collaborator is not configured.
	ErrLLMUnavailable = errors.New("llm extractor unavailable")

	// ErrPasswordProtected signals an encrypted PDF.
	ErrPasswordProtected = errors.New("pdf is password-protected")

	// ErrNoExtractableText signals a PDF that appears to be scanned.
	ErrNoExtractableText = errors.New("pdf appears to be scanned (no extractable text)")

	// ErrRateLimited is the retryable condition mapped from the remote
	// API's rate-limit responses.
	ErrRateLimited = errors.New("rate limited by remote api")
)

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger
}

// readText reads a file as UTF-8, dropping invalid byte sequences.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", path)
	}
	return strings.ToValidUTF8(string(data), ""), nil
}

// fileStem returns the base name without its extension; it is the raw
// ID of every document node.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Supported-extension sets, one per strategy family. Read-only after
// package init.
var (
	legalExtensions = mapset.NewThreadUnsafeSet(".txt", ".md")
	textExtensions  = mapset.NewThreadUnsafeSet(".txt", ".md", ".text")
	pdfExtensions   = mapset.NewThreadUnsafeSet(".pdf")
	llmExtensions   = mapset.NewThreadUnsafeSet(".txt", ".md", ".pdf")
)

func hasExtension(path string, exts mapset.Set[string]) bool {
	return exts.Contains(strings.ToLower(filepath.Ext(path)))
}
