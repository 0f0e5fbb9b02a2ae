package extract

import (
	"context"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const extractionToolName = "record_extraction"

// extractionTool forces the model to answer through a structured tool
// call instead of free text.
var extractionTool = anthropic.ToolParam{
	Name:        extractionToolName,
	Description: anthropic.String("Record entities and relationships extracted from a document"),
	InputSchema: anthropic.ToolInputSchemaParam{
		Properties: map[string]any{
			"entities": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":          map[string]any{"type": "string"},
						"name":        map[string]any{"type": "string"},
						"category":    map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
					},
					"required": []string{"id", "name", "category"},
				},
			},
			"relationships": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"source_id": map[string]any{"type": "string"},
						"target_id": map[string]any{"type": "string"},
						"type":      map[string]any{"type": "string"},
					},
					"required": []string{"source_id", "target_id", "type"},
				},
			},
		},
		Required: []string{"entities", "relationships"},
	},
}

// AnthropicClient implements CompletionClient against the Anthropic
// Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicClient builds a client from the ANTHROPIC_API_KEY
// environment variable. A missing key fails with ErrLLMUnavailable.
func NewAnthropicClient(model string) (*AnthropicClient, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, errors.Wrap(ErrLLMUnavailable, "ANTHROPIC_API_KEY is not set")
	}
	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}, nil
}

// CountTokens asks the API for the exact input token count of one
// prospective extraction request.
func (c *AnthropicClient) CountTokens(ctx context.Context, system, content string) (int64, error) {
	count, err := c.client.Messages.CountTokens(ctx, anthropic.MessageCountTokensParams{
		Model: c.model,
		System: anthropic.MessageCountTokensParamsSystemUnion{
			OfTextBlockArray: []anthropic.TextBlockParam{{Text: system}},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(content)),
		},
	})
	if err != nil {
		return 0, mapAPIError(err)
	}
	return count.InputTokens, nil
}

// ExtractChunk runs one forced tool call over a chunk. Refusals and
// unparseable tool input yield an empty result so the caller can move
// on to the next chunk.
func (c *AnthropicClient) ExtractChunk(ctx context.Context, system, content string) (*ChunkResult, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxOutputTokensPerChunk,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(content)),
		},
		Tools:      []anthropic.ToolUnionParam{{OfTool: &extractionTool}},
		ToolChoice: anthropic.ToolChoiceUnionParam{OfTool: &anthropic.ToolChoiceToolParam{Name: extractionToolName}},
	})
	if err != nil {
		return nil, mapAPIError(err)
	}

	if msg.StopReason == anthropic.StopReasonRefusal {
		return &ChunkResult{}, nil
	}

	for _, block := range msg.Content {
		if tool, ok := block.AsAny().(anthropic.ToolUseBlock); ok && tool.Name == extractionToolName {
			return parseToolInput(tool.JSON.Input.Raw()), nil
		}
	}
	return &ChunkResult{}, nil
}

// parseToolInput decodes the tool call arguments, skipping malformed
// entries instead of failing the chunk.
func parseToolInput(raw string) *ChunkResult {
	result := &ChunkResult{}
	for _, item := range gjson.Get(raw, "entities").Array() {
		id := item.Get("id").String()
		if id == "" {
			continue
		}
		result.Entities = append(result.Entities, ExtractedEntity{
			ID:          id,
			Name:        item.Get("name").String(),
			Category:    item.Get("category").String(),
			Description: item.Get("description").String(),
		})
	}
	for _, item := range gjson.Get(raw, "relationships").Array() {
		source := item.Get("source_id").String()
		target := item.Get("target_id").String()
		if source == "" || target == "" {
			continue
		}
		result.Relationships = append(result.Relationships, ExtractedRelationship{
			SourceID: source,
			TargetID: target,
			Type:     item.Get("type").String(),
		})
	}
	return result
}

// mapAPIError translates provider rate limiting into the retryable
// sentinel and wraps everything else.
func mapAPIError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
		return errors.Wrap(ErrRateLimited, apiErr.Error())
	}
	return errors.Wrap(err, "anthropic api call failed")
}
