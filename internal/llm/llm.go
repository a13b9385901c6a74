// Package llm wraps the Gemini SDK behind the single text-in/text-out and
// embedding capability every pipeline component shares.
package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the text-generation model used unless overridden.
	DefaultModel = "gemini-flash-lite-latest"
	// DefaultEmbeddingModel is used for both article and story-essence embeddings.
	DefaultEmbeddingModel = "gemini-embedding-001"
	// DefaultEmbeddingDimensions matches spec.md's "dim ~= 384-768" guidance;
	// 768 is the teacher's Matryoshka-truncated default.
	DefaultEmbeddingDimensions = int32(768)
)

// Client is the shared, read-only LLM capability spec.md 5 describes: one
// instance, constructed once, safe for concurrent use.
type Client struct {
	modelName       string
	embeddingModel  string
	embeddingDims   int32
	gClient         *genai.Client
}

// NewClient builds a Client from an API key resolved from the environment or
// viper configuration, mirroring the teacher's multi-source key lookup.
func NewClient(modelName string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		if apiKey = os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey == "" {
			apiKey = viper.GetString("llm.api_key")
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required: set GEMINI_API_KEY or llm.api_key")
	}

	if modelName == "" {
		modelName = viper.GetString("llm.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}

	gClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		modelName:      modelName,
		embeddingModel: DefaultEmbeddingModel,
		embeddingDims:  DefaultEmbeddingDimensions,
		gClient:        gClient,
	}, nil
}

// GenerateText is the single text-in/text-out capability every component
// (C4, C9, C10, C11, C13, C14) calls through. It does not retry; retry
// policy lives in Retry (retry.go) and is applied by callers.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  "user",
	}}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// GenerateEmbedding produces a fixed-dimensional dense vector for text,
// shared by FeatureExtractor (article text) and MemoryProcessor (story
// essence) per spec.md 4.1/4.11 "same model class".
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: text}},
		Role:  "user",
	}}

	dims := c.embeddingDims
	config := &genai.EmbedContentConfig{OutputDimensionality: &dims}

	resp, err := c.gClient.Models.EmbedContent(ctx, c.embeddingModel, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generate embedding: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("no embedding values returned")
	}

	values := resp.Embeddings[0].Values
	embedding := make([]float64, len(values))
	for i, v := range values {
		embedding[i] = float64(v)
	}
	return embedding, nil
}

// ModelVersion identifies the embedding model for ProcessingLog.EmbeddingModelVersion.
func (c *Client) ModelVersion() string {
	return c.embeddingModel
}
