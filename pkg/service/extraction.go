package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/cosmograph/cosmograph/pkg/extract"
	"github.com/cosmograph/cosmograph/pkg/graph"
	"github.com/cosmograph/cosmograph/pkg/patterns"
)

var runDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name: "cosmograph_run_duration_seconds",
		Help: "Time spent on a full extraction run",
	},
	[]string{"strategy"},
)

// Strategy names accepted by SelectStrategy.
const (
	StrategyAuto    = "auto"
	StrategyLegal   = "legal"
	StrategyText    = "text"
	StrategyGeneric = "generic"
	StrategyPDF     = "pdf"
	StrategyLLM     = "llm"
)

// Options configures one extraction run.
type Options struct {
	// Config overrides the built-in patterns for the generic strategy.
	Config *patterns.Config
	// Interactive enables the operator approval gate for LLM runs.
	Interactive bool
	// Model selects the LLM model; empty means the default.
	Model string
}

// ProgressFunc is called after each file completes with the number of
// files done so far and the total.
type ProgressFunc func(done, total int)

// ExtractionService turns a set of input documents into one knowledge
// graph through a selected strategy.
type ExtractionService struct {
	opts   Options
	logger *logrus.Logger
}

// New creates an extraction service.
func New(opts Options) *ExtractionService {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &ExtractionService{
		opts:   opts,
		logger: logger,
	}
}

// SelectStrategy builds the extractor for the named strategy writing
// into g. "auto" resolves to the legal strategy. An unavailable LLM
// backend fails with extract.ErrLLMUnavailable.
func (s *ExtractionService) SelectStrategy(name string, g *graph.Graph) (extract.Extractor, error) {
	switch name {
	case StrategyAuto, StrategyLegal:
		return extract.NewLegal(g), nil
	case StrategyText:
		return extract.NewText(g), nil
	case StrategyGeneric:
		if s.opts.Config != nil {
			return extract.NewGenericFromConfig(g, s.opts.Config)
		}
		return extract.NewGeneric(g), nil
	case StrategyPDF:
		return extract.NewPDF(g), nil
	case StrategyLLM:
		llmOpts := []extract.LLMOption{
			extract.WithInteractive(s.opts.Interactive),
		}
		if s.opts.Model != "" {
			llmOpts = append(llmOpts, extract.WithModel(s.opts.Model))
		}
		return extract.NewLLM(g, llmOpts...)
	default:
		return nil, errors.Errorf("unknown extraction strategy %q", name)
	}
}

// Process runs the named strategy over every file in the order given,
// accumulating results into one fresh graph. Node insertion order
// follows the file list, so ordering the inputs is the caller's job.
// The graph built so far is returned alongside any error, so callers
// keep partial results. An operator decline propagates unchanged.
func (s *ExtractionService) Process(ctx context.Context, strategy, title string, files []string, progress ProgressFunc) (*graph.Graph, error) {
	runID := uuid.New().String()
	log := s.logger.WithFields(logrus.Fields{
		"run_id":   runID,
		"strategy": strategy,
		"files":    len(files),
	})

	g := graph.New(title)

	extractor, err := s.SelectStrategy(strategy, g)
	if err != nil {
		return g, err
	}

	timer := prometheus.NewTimer(runDuration.WithLabelValues(strategy))
	defer timer.ObserveDuration()

	log.Info("Starting extraction run")

	for i, path := range files {
		if !extractor.Supports(path) {
			log.WithField("file", path).Warn("File type not supported by strategy, skipping")
			if progress != nil {
				progress(i+1, len(files))
			}
			continue
		}

		if _, err := extractor.Extract(ctx, path); err != nil {
			if errors.Is(err, extract.ErrOperatorDeclined) {
				return g, err
			}
			return g, errors.Wrapf(err, "extraction failed for %s", path)
		}

		if progress != nil {
			progress(i+1, len(files))
		}
	}

	stats := g.Stats()
	log.WithFields(logrus.Fields{
		"nodes": stats.Nodes,
		"edges": stats.Edges,
	}).Info("Extraction run completed")

	return g, nil
}
