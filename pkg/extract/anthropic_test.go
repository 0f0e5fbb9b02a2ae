package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The SDK client must keep satisfying the collaborator contract the
// extractor is built against.
var _ CompletionClient = (*AnthropicClient)(nil)

func TestParseToolInput(t *testing.T) {
	raw := `{
		"entities": [
			{"id": "tribal_court", "name": "Tribal Court", "category": "government_body", "description": "Judicial body"},
			{"id": "", "name": "missing id is dropped", "category": "person"}
		],
		"relationships": [
			{"source_id": "tribal_court", "target_id": "appeals", "type": "governs"},
			{"source_id": "", "target_id": "x", "type": "broken"}
		]
	}`

	result := parseToolInput(raw)
	require.Len(t, result.Entities, 1)
	assert.Equal(t, "tribal_court", result.Entities[0].ID)
	assert.Equal(t, "Judicial body", result.Entities[0].Description)

	require.Len(t, result.Relationships, 1)
	assert.Equal(t, "governs", result.Relationships[0].Type)
}

func TestParseToolInput_MalformedJSON(t *testing.T) {
	result := parseToolInput("not json at all")
	assert.Empty(t, result.Entities)
	assert.Empty(t, result.Relationships)
}

func TestNewAnthropicClient_MissingKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewAnthropicClient(DefaultModel)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLLMUnavailable)
}

func TestIsRateLimited(t *testing.T) {
	assert.True(t, isRateLimited(ErrRateLimited))
	assert.False(t, isRateLimited(assert.AnError))
	assert.False(t, isRateLimited(nil))
}
