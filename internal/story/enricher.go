package story

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storyengine/internal/llm"
	"storyengine/internal/prompts"
)

// EnrichmentResult is C10's output: an analytical label plus the prose
// rationale connecting the cluster's articles.
type EnrichmentResult struct {
	Label     string
	Rationale string
}

type singleStringResponse struct {
	Value string `json:"value"`
}

// StoryEnricher runs C10's two sequential LLM calls.
type StoryEnricher struct {
	llm TextGenerator
}

// NewStoryEnricher builds a StoryEnricher over the shared LLM client.
func NewStoryEnricher(llmClient TextGenerator) *StoryEnricher {
	return &StoryEnricher{llm: llmClient}
}

// Enrich produces the label then the rationale, in that order; either
// failure aborts the cluster, per spec.md 4.10.
func (e *StoryEnricher) Enrich(ctx context.Context, titles []string) (EnrichmentResult, error) {
	labelPrompt, err := prompts.Render(prompts.TaskEnrichmentLabel, PromptVersion, struct{ Titles []string }{Titles: titles})
	if err != nil {
		return EnrichmentResult{}, fmt.Errorf("render label prompt: %w", err)
	}
	label, err := e.callForString(ctx, labelPrompt)
	if err != nil {
		return EnrichmentResult{}, fmt.Errorf("generate label: %w", err)
	}

	rationalePrompt, err := prompts.Render(prompts.TaskEnrichmentRationale, PromptVersion, struct {
		Titles []string
		Label  string
	}{Titles: titles, Label: label})
	if err != nil {
		return EnrichmentResult{}, fmt.Errorf("render rationale prompt: %w", err)
	}
	rationale, err := e.callForString(ctx, rationalePrompt)
	if err != nil {
		return EnrichmentResult{}, fmt.Errorf("generate rationale: %w", err)
	}

	return EnrichmentResult{Label: label, Rationale: rationale}, nil
}

func (e *StoryEnricher) callForString(ctx context.Context, prompt string) (string, error) {
	var parsed singleStringResponse
	err := llm.Retry(ctx, llm.DefaultRetryPolicy(), func() error {
		response, err := e.llm.GenerateText(ctx, prompt)
		if err != nil {
			return err
		}
		cleaned := llm.CleanJSONResponse(response)
		if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
			return fmt.Errorf("parse single-string response: %w", err)
		}
		if strings.TrimSpace(parsed.Value) == "" {
			return fmt.Errorf("empty value in response")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return parsed.Value, nil
}
