package extract

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	extractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "cosmograph_extraction_duration_seconds",
			Help: "Time spent extracting a single document",
		},
		[]string{"strategy"},
	)

	entitiesExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosmograph_entities_extracted_total",
			Help: "Number of entities added to the graph",
		},
		[]string{"category"},
	)

	llmChunksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosmograph_llm_chunks_total",
			Help: "LLM chunk extractions by outcome",
		},
		[]string{"status"},
	)
)
