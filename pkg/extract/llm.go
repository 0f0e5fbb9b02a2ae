package extract

import (
	"context"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/cosmograph/cosmograph/pkg/graph"
)

// DefaultModel is used when no model is configured and as the pricing
// fallback for unknown model names.
const DefaultModel = "claude-sonnet-4-5"

const maxOutputTokensPerChunk = 4096

const systemPrompt = `You are a knowledge graph extraction expert. Extract entities and relationships from the provided document.

For entities, identify:
- People: individuals mentioned by name or role
- Organizations: companies, agencies, departments, committees
- Government bodies: courts, legislatures, executive offices, tribal councils
- Legal concepts: definitions, regulations, rights, obligations, procedures
- Documents: laws, codes, ordinances, contracts, agreements referenced
- Locations: places, jurisdictions, addresses
- Dates: specific dates, time periods, deadlines

For relationships, identify connections like:
- "defines": entity A defines entity B
- "references": entity A references entity B
- "amends": entity A modifies entity B
- "supersedes": entity A replaces entity B
- "establishes": entity A creates entity B
- "governs": entity A has authority over entity B
- "authorizes": entity A grants power to entity B
- "belongs_to": entity A is part of entity B
- "contains": entity A includes entity B
- "reports_to": entity A is subordinate to entity B

Guidelines:
- Be thorough but precise - only extract clearly stated facts
- Use consistent entity IDs (lowercase, underscores for spaces)
- Category values should be lowercase: person, organization, government_body, legal_concept, document, location, date
- Relationship types should be lowercase with underscores

Record all extracted entities and relationships in the structured format.`

// modelPricing is USD per million tokens.
type modelPricing struct {
	input  float64
	output float64
}

var pricing = map[string]modelPricing{
	"claude-sonnet-4-5": {input: 3.00, output: 15.00},
	"claude-haiku-4-5":  {input: 1.00, output: 5.00},
	"claude-opus-4-5":   {input: 5.00, output: 25.00},
}

// ExtractedEntity is one entity returned by the remote extraction call.
type ExtractedEntity struct {
	ID          string
	Name        string
	Category    string
	Description string
}

// ExtractedRelationship is one relationship returned by the remote
// extraction call. The IDs may name entities that were never returned;
// the graph accepts such dangling references.
type ExtractedRelationship struct {
	SourceID string
	TargetID string
	Type     string
}

// ChunkResult is the structured output of one per-chunk extraction.
type ChunkResult struct {
	Entities      []ExtractedEntity
	Relationships []ExtractedRelationship
}

// CompletionClient is the remote structured-completion collaborator.
// Implementations map the provider's rate-limit responses to
// ErrRateLimited so the retry predicate can tell them apart from
// everything else.
type CompletionClient interface {
	// CountTokens returns the input token count for one prospective
	// request; the call is free on the remote side.
	CountTokens(ctx context.Context, system, content string) (int64, error)
	// ExtractChunk runs structured extraction over one chunk. A model
	// refusal or unparseable output yields an empty result, not an
	// error.
	ExtractChunk(ctx context.Context, system, content string) (*ChunkResult, error)
}

// Estimate is the token and cost projection presented at the approval
// gate before any extraction call is made.
type Estimate struct {
	InputTokens           int64
	EstimatedOutputTokens int64
	EstimatedCostUSD      float64
	Model                 string
	ChunkCount            int
	// Approximate is set when the remote counting call failed and a
	// local approximation was used instead.
	Approximate bool
}

// LLMExtractor extracts entities and relationships through a remote
// structured-completion API, chunking oversized documents and gating
// the spend behind an operator confirmation in interactive mode.
type LLMExtractor struct {
	graph       *graph.Graph
	client      CompletionClient
	model       string
	interactive bool
	approver    Approver
	retry       RetryPolicy
	logger      *logrus.Logger
}

// LLMOption configures an LLMExtractor.
type LLMOption func(*LLMExtractor)

// WithClient sets the remote completion client.
func WithClient(c CompletionClient) LLMOption {
	return func(e *LLMExtractor) { e.client = c }
}

// WithModel sets the model identifier used for extraction and pricing.
func WithModel(model string) LLMOption {
	return func(e *LLMExtractor) { e.model = model }
}

// WithInteractive toggles the operator approval gate.
func WithInteractive(interactive bool) LLMOption {
	return func(e *LLMExtractor) { e.interactive = interactive }
}

// WithApprover replaces the console approval prompt.
func WithApprover(a Approver) LLMOption {
	return func(e *LLMExtractor) { e.approver = a }
}

// WithRetryPolicy replaces the default rate-limit retry policy.
func WithRetryPolicy(p RetryPolicy) LLMOption {
	return func(e *LLMExtractor) { e.retry = p }
}

// NewLLM creates an LLM extractor writing into g. Without WithClient a
// client backed by the Anthropic API is constructed, which requires
// ANTHROPIC_API_KEY; a missing key fails with ErrLLMUnavailable.
func NewLLM(g *graph.Graph, opts ...LLMOption) (*LLMExtractor, error) {
	e := &LLMExtractor{
		graph:       g,
		model:       DefaultModel,
		interactive: true,
		retry:       DefaultRetryPolicy(),
		logger:      newLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		client, err := NewAnthropicClient(e.model)
		if err != nil {
			return nil, err
		}
		e.client = client
	}
	if e.approver == nil {
		e.approver = ConsoleApprover{}
	}
	return e, nil
}

// Supports reports true for text and PDF file types.
func (e *LLMExtractor) Supports(path string) bool {
	return hasExtension(path, llmExtensions)
}

// Extract runs estimate → approval gate → per-chunk extraction → merge.
// Individual chunk failures degrade to an empty result for that chunk;
// only an operator decline aborts the document.
func (e *LLMExtractor) Extract(ctx context.Context, path string) (*graph.Graph, error) {
	timer := prometheus.NewTimer(extractionDuration.WithLabelValues("llm"))
	defer timer.ObserveDuration()

	text, err := readText(path)
	if err != nil {
		return nil, err
	}
	fileName := filepath.Base(path)

	chunks := chunkDocument(text)
	e.logger.WithFields(logrus.Fields{
		"source": fileName,
		"chunks": len(chunks),
	}).Info("Processing document")

	estimate := e.EstimateTokens(ctx, chunks)

	if e.interactive {
		approved, err := e.approver.Approve(estimate)
		if err != nil {
			return nil, errors.Wrap(err, "approval prompt failed")
		}
		if !approved {
			return nil, ErrOperatorDeclined
		}
	}

	for i, chunk := range chunks {
		result, err := e.extractChunk(ctx, chunk)
		if err != nil {
			// Chunk-level failures never abort the document.
			e.logger.WithError(err).WithFields(logrus.Fields{
				"source": fileName,
				"chunk":  i + 1,
			}).Warn("Chunk extraction failed")
			llmChunksProcessed.WithLabelValues("error").Inc()
			continue
		}
		e.merge(result, fileName)
		llmChunksProcessed.WithLabelValues("success").Inc()
	}

	return e.graph, nil
}

// EstimateTokens counts input tokens per chunk through the remote
// collaborator and projects output tokens and cost. When the counting
// call fails for a chunk a local approximation is substituted and the
// estimate is marked approximate.
func (e *LLMExtractor) EstimateTokens(ctx context.Context, chunks []string) Estimate {
	var inputTokens int64
	approximate := false

	for _, chunk := range chunks {
		count, err := e.client.CountTokens(ctx, systemPrompt, chunk)
		if err != nil {
			e.logger.WithError(err).Warn("Token counting failed, using local approximation")
			count = approximateTokens(systemPrompt + chunk)
			approximate = true
		}
		inputTokens += count
	}

	// Extraction output is typically well under a quarter of the
	// input, capped per chunk by the response budget.
	estimatedOutput := inputTokens / 4
	if ceiling := int64(maxOutputTokensPerChunk * len(chunks)); estimatedOutput > ceiling {
		estimatedOutput = ceiling
	}

	return Estimate{
		InputTokens:           inputTokens,
		EstimatedOutputTokens: estimatedOutput,
		EstimatedCostUSD:      estimateCost(e.model, inputTokens, estimatedOutput),
		Model:                 e.model,
		ChunkCount:            len(chunks),
		Approximate:           approximate,
	}
}

func estimateCost(model string, inputTokens, outputTokens int64) float64 {
	prices, ok := pricing[model]
	if !ok {
		prices = pricing[DefaultModel]
	}
	inputCost := float64(inputTokens) / 1e6 * prices.input
	outputCost := float64(outputTokens) / 1e6 * prices.output
	return inputCost + outputCost
}

func (e *LLMExtractor) extractChunk(ctx context.Context, chunk string) (*ChunkResult, error) {
	var result *ChunkResult
	err := e.retry.Do(ctx, func() error {
		r, err := e.client.ExtractChunk(ctx, systemPrompt, chunk)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}

// merge folds one chunk's result into the shared graph. Node
// deduplication is first-write-wins on the normalized entity ID.
func (e *LLMExtractor) merge(result *ChunkResult, sourceFile string) {
	added := mapset.NewThreadUnsafeSet[string]()
	for _, entity := range result.Entities {
		id := e.graph.AddNode(entity.ID, entity.Name, entity.Category, entity.Description, sourceFile)
		added.Add(id)
		entitiesExtracted.WithLabelValues(entity.Category).Inc()
	}
	for _, rel := range result.Relationships {
		e.graph.AddEdge(rel.SourceID, rel.TargetID, rel.Type)
	}

	e.logger.WithFields(logrus.Fields{
		"source":        sourceFile,
		"entities":      added.Cardinality(),
		"relationships": len(result.Relationships),
	}).Debug("Merged chunk result")
}

func isRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
