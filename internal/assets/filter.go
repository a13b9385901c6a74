package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storyengine/internal/core"
	"storyengine/internal/llm"
	"storyengine/internal/prompts"
	"storyengine/internal/textutil"
)

// PromptVersion is the (task, version) pair this component renders, per
// SPEC_FULL.md's on-disk prompt-versioning scheme.
const PromptVersion = "v1"

// MaxArticleTextChars bounds the article text included in the AssetFilter
// prompt, per spec.md 4.4's "truncated to a fixed upper byte/char bound".
const MaxArticleTextChars = 4000

// TextGenerator is the subset of llm.Client this component depends on.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Filter runs C4: LLM-reduce candidate assets to those truly implicated by
// the article, each with a polarity.
type Filter struct {
	llm TextGenerator
}

// NewFilter builds a Filter over the shared LLM client.
func NewFilter(llm TextGenerator) *Filter {
	return &Filter{llm: llm}
}

type filterResponseItem struct {
	Asset  string `json:"asset"`
	Reason string `json:"reason"`
	Impact string `json:"impact"`
}

// FilterAssets asks the LLM which of candidates are truly implicated by
// articleText. On any parse/schema failure it returns an empty list, per
// spec.md 4.4 ("on schema violation yield empty list. No retries on parse
// failure within the same call").
func (f *Filter) FilterAssets(ctx context.Context, articleText string, candidates []string) ([]core.AssetDecision, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	truncated := textutil.TruncateTokens(articleText, MaxArticleTextChars/5)
	if r := []rune(truncated); len(r) > MaxArticleTextChars {
		truncated = string(r[:MaxArticleTextChars])
	}
	prompt, err := prompts.Render(prompts.TaskAssetFilter, PromptVersion, struct {
		Candidates  []string
		ArticleText string
	}{Candidates: candidates, ArticleText: truncated})
	if err != nil {
		return nil, fmt.Errorf("render asset filter prompt: %w", err)
	}

	response, err := f.llm.GenerateText(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("asset filter generation: %w", err)
	}

	cleaned := llm.CleanJSONResponse(response)

	var items []filterResponseItem
	if err := json.Unmarshal([]byte(cleaned), &items); err != nil {
		return nil, nil
	}

	decisions := make([]core.AssetDecision, 0, len(items))
	for _, item := range items {
		impact := strings.ToLower(strings.TrimSpace(item.Impact))
		if impact != core.ImpactPositive && impact != core.ImpactNegative && impact != core.ImpactNeutral {
			return nil, nil
		}
		if strings.TrimSpace(item.Asset) == "" {
			return nil, nil
		}
		decisions = append(decisions, core.AssetDecision{
			Asset:  item.Asset,
			Reason: item.Reason,
			Impact: impact,
		})
	}

	return decisions, nil
}
