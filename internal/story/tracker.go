package story

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storyengine/internal/core"
	"storyengine/internal/llm"
	"storyengine/internal/prompts"
)

// CandidateWindowDays bounds how far back an active story may be to be
// considered a continuity candidate, per spec.md 4.13.
const CandidateWindowDays = 14

// CandidateCount is the k used when fetching nearest historical stories for
// continuity tracking, per spec.md 4.13.
const CandidateCount = 3

type continuityResponse struct {
	IsContinuation bool    `json:"is_continuation"`
	ParentStoryID  *string `json:"parent_story_id"`
}

// NoParent is the sentinel core.ContinuityResult returned whenever no
// continuation is found or determinable.
var NoParent = core.ContinuityResult{IsContinuation: false}

// StoryTracker runs C13.
type StoryTracker struct {
	llm     TextGenerator
	stories SimilarStoryFinder
}

// NewStoryTracker builds a StoryTracker over the shared LLM client and
// story repository.
func NewStoryTracker(llmClient TextGenerator, stories SimilarStoryFinder) *StoryTracker {
	return &StoryTracker{llm: llmClient, stories: stories}
}

// Track determines whether the cluster continues an existing active story.
// representative may be nil, in which case it is computed as the arithmetic
// mean of articleEmbeddings; fewer than two embeddings aborts with NoParent,
// per spec.md 4.13 step 1.
func (t *StoryTracker) Track(ctx context.Context, label, rationale string, articleEmbeddings [][]float64, representative []float64) (core.ContinuityResult, error) {
	repr := representative
	if repr == nil {
		var err error
		repr, err = meanEmbedding(articleEmbeddings)
		if err != nil {
			return NoParent, nil
		}
	}

	since := time.Now().AddDate(0, 0, -CandidateWindowDays)
	candidates, err := t.stories.FetchSimilarStories(ctx, repr, CandidateCount, since)
	if err != nil {
		return NoParent, fmt.Errorf("fetch continuity candidates: %w", err)
	}
	if len(candidates) == 0 {
		return NoParent, nil
	}

	prompt, err := prompts.Render(prompts.TaskContinuity, PromptVersion, struct {
		Label      string
		Rationale  string
		Candidates []core.HistoricalCandidate
	}{Label: label, Rationale: rationale, Candidates: candidates})
	if err != nil {
		return NoParent, fmt.Errorf("render continuity prompt: %w", err)
	}

	var parsed continuityResponse
	err = llm.Retry(ctx, llm.DefaultRetryPolicy(), func() error {
		response, err := t.llm.GenerateText(ctx, prompt)
		if err != nil {
			return err
		}
		cleaned := llm.CleanJSONResponse(response)
		return json.Unmarshal([]byte(cleaned), &parsed)
	})
	if err != nil {
		return NoParent, nil
	}

	if !parsed.IsContinuation || parsed.ParentStoryID == nil {
		return NoParent, nil
	}

	for _, c := range candidates {
		if c.StoryID == *parsed.ParentStoryID {
			return core.ContinuityResult{IsContinuation: true, ParentStoryID: c.StoryID}, nil
		}
	}
	// Parent id did not match any candidate: invalid per spec.md 4.13 step 3.
	return NoParent, nil
}

func meanEmbedding(embeddings [][]float64) ([]float64, error) {
	if len(embeddings) < 2 {
		return nil, fmt.Errorf("need at least two embeddings to compute a representative vector")
	}
	dim := len(embeddings[0])
	sum := make([]float64, dim)
	used := 0
	for _, e := range embeddings {
		if len(e) != dim {
			continue
		}
		for i, v := range e {
			sum[i] += v
		}
		used++
	}
	for i := range sum {
		sum[i] /= float64(used)
	}
	return sum, nil
}
