package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// MaxChunkChars bounds a single extraction request; characters are
	// a cheap proxy for the model's token budget (~400K chars ≈ ~100K
	// tokens).
	MaxChunkChars = 400_000
	// OverlapChars is re-sent at the start of the next chunk so that
	// context spanning a split point is not lost to either side.
	OverlapChars = 2_000
)

// chunkDocument splits text into extraction-sized chunks. Splits
// prefer a paragraph boundary found in the final quarter of the chunk;
// when none exists the raw offset is used, so forward progress is
// always guaranteed.
func chunkDocument(text string) []string {
	if len(text) <= MaxChunkChars {
		return []string{text}
	}

	var chunks []string
	start := 0

	for start < len(text) {
		end := start + MaxChunkChars
		if end >= len(text) {
			chunks = append(chunks, text[start:])
			break
		}

		floor := start + (MaxChunkChars*3)/4
		if boundary := strings.LastIndex(text[floor:end], "\n\n"); boundary >= 0 {
			end = floor + boundary
		}
		// Never split a multi-byte rune.
		for end > start && !utf8.RuneStart(text[end]) {
			end--
		}

		chunks = append(chunks, text[start:end])

		start = end - OverlapChars
		if start < 0 {
			start = 0
		}
	}

	return chunks
}

// approximateTokens estimates the token count of text without a remote
// call. It uses the cl100k_base encoding when available and falls back
// to the chars/4 rule of thumb when the encoding cannot be loaded
// (e.g. offline).
func approximateTokens(text string) int64 {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return int64(len(text) / 4)
	}
	return int64(len(enc.Encode(text, nil, nil)))
}
