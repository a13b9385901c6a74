package story

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storyengine/internal/llm"
	"storyengine/internal/logger"
	"storyengine/internal/prompts"
)

// MaxRollingSummaryTokens bounds rolling_summary, per spec.md 4.11.
const MaxRollingSummaryTokens = 100

// MinContextSnippets and MaxContextSnippets bound context_snippets, per
// spec.md 4.11 and the Story data model (§3: "length 3-5").
const (
	MinContextSnippets = 3
	MaxContextSnippets = 5
)

// Embedder is the subset of llm.Client MemoryProcessor depends on.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)
}

// MemoryResult is C11's output.
type MemoryResult struct {
	RollingSummary  string
	StoryEssence    string
	ContextSnippets []string
	EssenceEmbedding []float64
}

type memoryResponse struct {
	RollingSummary  string   `json:"rolling_summary"`
	StoryEssence    string   `json:"story_essence"`
	ContextSnippets []string `json:"context_snippets"`
}

// MemoryProcessor runs C11.
type MemoryProcessor struct {
	llm      TextGenerator
	embedder Embedder
}

// NewMemoryProcessor builds a MemoryProcessor over the shared LLM client,
// used for both text generation and embedding.
func NewMemoryProcessor(llmClient interface {
	TextGenerator
	Embedder
}) *MemoryProcessor {
	return &MemoryProcessor{llm: llmClient, embedder: llmClient}
}

// Process derives rolling_summary/story_essence/context_snippets from
// analysisSummary, then embeds story_essence with the same model class as
// article embeddings, per spec.md 4.11.
func (m *MemoryProcessor) Process(ctx context.Context, analysisSummary string) (MemoryResult, error) {
	prompt, err := prompts.Render(prompts.TaskMemory, PromptVersion, struct{ AnalysisSummary string }{AnalysisSummary: analysisSummary})
	if err != nil {
		return MemoryResult{}, fmt.Errorf("render memory prompt: %w", err)
	}

	var parsed memoryResponse
	err = llm.Retry(ctx, llm.DefaultRetryPolicy(), func() error {
		response, err := m.llm.GenerateText(ctx, prompt)
		if err != nil {
			return err
		}
		cleaned := llm.CleanJSONResponse(response)
		if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
			return fmt.Errorf("parse memory response: %w", err)
		}
		if strings.TrimSpace(parsed.StoryEssence) == "" {
			return fmt.Errorf("empty story_essence in response")
		}
		return nil
	})
	if err != nil {
		return MemoryResult{}, fmt.Errorf("derive memory components: %w", err)
	}

	rollingSummary := truncateWhitespaceTokens(parsed.RollingSummary, MaxRollingSummaryTokens)

	snippets := parsed.ContextSnippets
	if len(snippets) > MaxContextSnippets {
		snippets = snippets[:MaxContextSnippets]
	}
	// Fewer than MinContextSnippets is accepted with only a warning, per
	// spec.md 4.11 ("if <3, warn but accept").
	if len(snippets) < MinContextSnippets {
		logger.Warn("memory processor: fewer context snippets than expected", "count", len(snippets), "min", MinContextSnippets)
	}

	embedding, err := m.embedder.GenerateEmbedding(ctx, parsed.StoryEssence)
	if err != nil {
		return MemoryResult{}, fmt.Errorf("embed story essence: %w", err)
	}

	return MemoryResult{
		RollingSummary:   rollingSummary,
		StoryEssence:     parsed.StoryEssence,
		ContextSnippets:  snippets,
		EssenceEmbedding: embedding,
	}, nil
}

func truncateWhitespaceTokens(text string, max int) string {
	tokens := strings.Fields(text)
	if len(tokens) <= max {
		return text
	}
	return strings.Join(tokens[:max], " ")
}
