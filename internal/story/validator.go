// Package story implements C9-C14: the per-cluster validation, enrichment,
// continuity tracking, historical retrieval, synthesis, and memory steps
// the orchestrator's Phase 3 runs over each candidate cluster.
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

// PromptVersion is the (task, version) pair this package renders for every
// LLM call, per SPEC_FULL.md's on-disk prompt-versioning scheme.
const PromptVersion = "v1"

// TextGenerator is the subset of llm.Client every component in this package
// depends on.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type validationResponse struct {
	IsStory         bool    `json:"is_story"`
	SignalStrength  string  `json:"signal_strength"`
	ConfidenceScore float64 `json:"confidence_score"`
	Reasoning       string  `json:"reasoning"`
}

// ClusterValidator runs C9.
type ClusterValidator struct {
	llm TextGenerator
}

// NewClusterValidator builds a ClusterValidator over the shared LLM client.
func NewClusterValidator(llmClient TextGenerator) *ClusterValidator {
	return &ClusterValidator{llm: llmClient}
}

// Validate asks whether the given headlines and shared entities form a
// coherent story, retrying up to llm.DefaultRetryPolicy on transport or
// parse failure, per spec.md 4.9. A cluster whose response cannot be
// strictly parsed after retries is treated as a validation failure
// (is_story = false).
func (v *ClusterValidator) Validate(ctx context.Context, titles []string, sharedEntities []string) (core.ValidationResult, error) {
	prompt, err := prompts.Render(prompts.TaskClusterValidation, PromptVersion, struct {
		Titles         []string
		SharedEntities []string
	}{Titles: titles, SharedEntities: sharedEntities})
	if err != nil {
		return core.ValidationResult{IsStory: false}, fmt.Errorf("render validation prompt: %w", err)
	}

	var parsed validationResponse
	err = llm.Retry(ctx, llm.DefaultRetryPolicy(), func() error {
		response, err := v.llm.GenerateText(ctx, prompt)
		if err != nil {
			return fmt.Errorf("validate cluster: %w", err)
		}
		cleaned := llm.CleanJSONResponse(response)
		if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
			return fmt.Errorf("parse validation response: %w", err)
		}
		return validateSchema(parsed)
	})
	if err != nil {
		return core.ValidationResult{IsStory: false}, nil
	}

	return core.ValidationResult{
		IsStory:         parsed.IsStory,
		SignalStrength:  strings.ToLower(strings.TrimSpace(parsed.SignalStrength)),
		ConfidenceScore: parsed.ConfidenceScore,
		Reasoning:       parsed.Reasoning,
	}, nil
}

func validateSchema(r validationResponse) error {
	if !r.IsStory {
		return nil
	}
	switch r.SignalStrength {
	case core.SignalStrong, core.SignalMedium, core.SignalWeak:
	default:
		return fmt.Errorf("invalid signal_strength %q", r.SignalStrength)
	}
	if r.ConfidenceScore < 0 || r.ConfidenceScore > 1 {
		return fmt.Errorf("confidence_score %f out of [0,1]", r.ConfidenceScore)
	}
	return nil
}
