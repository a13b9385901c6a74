package story

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storyengine/internal/core"
	"storyengine/internal/llm"
	"storyengine/internal/prompts"
)

type synthesisResponse struct {
	Value string `json:"value"`
}

// Synthesizer runs C14: builds the markdown analysis_summary from the
// enriched label/rationale plus supporting context.
type Synthesizer struct {
	llm TextGenerator
}

// NewSynthesizer builds a Synthesizer over the shared LLM client.
func NewSynthesizer(llmClient TextGenerator) *Synthesizer {
	return &Synthesizer{llm: llmClient}
}

// Synthesize builds analysis_summary from label, rationale, the article
// snippets, the historical context text, and an optional macro context
// string, retrying per the shared policy; returns an error (aborting the
// cluster) on repeated failure, per spec.md 4.14.
func (s *Synthesizer) Synthesize(ctx context.Context, label, rationale string, snippets []core.SalientSnippet, historicalContext, macroContext string) (string, error) {
	prompt, err := prompts.Render(prompts.TaskSynthesis, PromptVersion, struct {
		Label             string
		Rationale         string
		Snippets          []core.SalientSnippet
		HistoricalContext string
		MacroContext      string
	}{Label: label, Rationale: rationale, Snippets: snippets, HistoricalContext: historicalContext, MacroContext: macroContext})
	if err != nil {
		return "", fmt.Errorf("render synthesis prompt: %w", err)
	}

	var parsed synthesisResponse
	err = llm.Retry(ctx, llm.DefaultRetryPolicy(), func() error {
		response, err := s.llm.GenerateText(ctx, prompt)
		if err != nil {
			return err
		}
		cleaned := llm.CleanJSONResponse(response)
		if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
			return fmt.Errorf("parse synthesis response: %w", err)
		}
		if strings.TrimSpace(parsed.Value) == "" {
			return fmt.Errorf("empty analysis_summary in response")
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("synthesize analysis summary: %w", err)
	}
	return parsed.Value, nil
}
