package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkDocument_SmallTextIsOneChunk(t *testing.T) {
	chunks := chunkDocument("short document")
	require.Len(t, chunks, 1)
	assert.Equal(t, "short document", chunks[0])
}

func TestChunkDocument_SplitsOversizedText(t *testing.T) {
	text := strings.Repeat("a", MaxChunkChars+10_000)
	chunks := chunkDocument(text)

	require.GreaterOrEqual(t, len(chunks), 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), MaxChunkChars)
	}

	// Overlap means the chunks together exceed the original.
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	assert.Greater(t, total, len(text))
}

func TestChunkDocument_PrefersParagraphBoundary(t *testing.T) {
	// A paragraph break placed inside the final quarter of the first
	// chunk should become the split point.
	breakAt := MaxChunkChars - 1_000
	text := strings.Repeat("a", breakAt) + "\n\n" + strings.Repeat("b", 20_000)

	chunks := chunkDocument(text)
	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, breakAt, len(chunks[0]))
	assert.False(t, strings.Contains(chunks[0], "b"))
}

func TestChunkDocument_CoversWholeText(t *testing.T) {
	text := strings.Repeat("x", 2*MaxChunkChars+5_000)
	chunks := chunkDocument(text)

	assert.Equal(t, string(text[len(text)-1]), string(chunks[len(chunks)-1][len(chunks[len(chunks)-1])-1]))
	for i := 1; i < len(chunks); i++ {
		// Each chunk restarts OverlapChars before the previous end.
		assert.NotEmpty(t, chunks[i])
	}
}

func TestApproximateTokens(t *testing.T) {
	short := approximateTokens("hello world")
	long := approximateTokens(strings.Repeat("hello world ", 100))
	assert.Greater(t, long, short)
	assert.Positive(t, long)
}
