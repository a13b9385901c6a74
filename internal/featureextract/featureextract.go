// Package featureextract implements C1 FeatureExtractor: given an article
// with a URL, produce {full_text, entities, embedding} or partial results,
// never throwing out on a subcomponent failure (spec.md 4.1).
package featureextract

import (
	"context"
	"log/slog"

	"storyengine/internal/entities"
	"storyengine/internal/logger"
	"storyengine/internal/textutil"
)

// MaxEmbeddingTokens bounds the text handed to the embedding model before
// truncation, matching the Python original's B=512 token budget.
const MaxEmbeddingTokens = 512

// TextFetcher is the subset of fetch.Fetcher this component depends on.
type TextFetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Embedder is the subset of llm.Client this component depends on.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// Result is C1's output: each field may be empty/nil independently, per the
// "partial results on subcomponent failure" contract.
type Result struct {
	FullText  string
	Entities  map[string][]string
	Embedding []float64
}

// Extractor wires the text-fetch, entity-recognition, and embedding steps.
type Extractor struct {
	fetcher    TextFetcher
	recognizer *entities.Recognizer
	embedder   Embedder
	log        *slog.Logger
}

// New builds an Extractor from its three subcomponents.
func New(fetcher TextFetcher, recognizer *entities.Recognizer, embedder Embedder) *Extractor {
	return &Extractor{
		fetcher:    fetcher,
		recognizer: recognizer,
		embedder:   embedder,
		log:        logger.Get(),
	}
}

// Extract runs the text fetch, entity recognition, and embedding steps for
// url, returning whatever subset succeeded.
func (e *Extractor) Extract(ctx context.Context, url string) Result {
	var result Result

	text, err := e.fetcher.FetchText(ctx, url)
	if err != nil {
		e.log.Warn("feature extraction: text fetch failed", "url", url, "error", err)
		return result
	}
	result.FullText = text

	result.Entities = e.recognizer.Extract(text)

	embeddingInput := textutil.TruncateForEmbedding(text, MaxEmbeddingTokens)
	embedding, err := e.embedder.GenerateEmbedding(ctx, embeddingInput)
	if err != nil {
		e.log.Warn("feature extraction: embedding failed", "url", url, "error", err)
		return result
	}
	result.Embedding = embedding

	return result
}
