// Package textutil holds small text-shaping helpers shared across
// components, kept separate from any one component so both FeatureExtractor
// (embedding input) and AssetFilter (prompt text) can reuse them.
package textutil

import "strings"

// TruncateSentinel is inserted between the lead and tail token spans when a
// text exceeds the model's token budget, ported verbatim from the Python
// original's _create_embedding (feature_extractor.py).
const TruncateSentinel = " [...] "

// TruncateForEmbedding reduces text to at most maxTokens whitespace tokens
// by keeping the first floor(maxTokens/2) and last ceil(maxTokens/2) tokens,
// joined by TruncateSentinel, preserving lead/tail signal per spec.md 4.1.
func TruncateForEmbedding(text string, maxTokens int) string {
	tokens := strings.Fields(text)
	if len(tokens) <= maxTokens {
		return text
	}

	startSize := maxTokens / 2
	endSize := maxTokens - startSize

	lead := strings.Join(tokens[:startSize], " ")
	tail := strings.Join(tokens[len(tokens)-endSize:], " ")

	return lead + TruncateSentinel + tail
}

// TruncateTokens caps text to maxTokens whitespace tokens without the
// lead/tail sentinel, used where a hard truncation suffices (e.g. AssetFilter
// prompt construction, spec.md 4.4).
func TruncateTokens(text string, maxTokens int) string {
	tokens := strings.Fields(text)
	if len(tokens) <= maxTokens {
		return text
	}
	return strings.Join(tokens[:maxTokens], " ")
}
