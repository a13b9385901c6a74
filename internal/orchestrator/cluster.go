package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"storyengine/internal/core"
	"storyengine/internal/story"
)

// processCluster runs spec.md 4.15 step 4's sequence a-h over one candidate
// cluster's article ids. It returns true when a story was validated,
// synthesized, and saved; false for any rejection or failure, in which
// case the caller logs and moves to the next cluster.
func (o *Orchestrator) processCluster(ctx context.Context, articleIDs []string) bool {
	articles, err := o.deps.DB.Articles().FetchByIDs(ctx, articleIDs)
	if err != nil || len(articles) < 2 {
		o.log.Warn("cluster skipped: failed to fetch articles", "article_ids", articleIDs, "error", err)
		return false
	}

	titles := make([]string, len(articles))
	embeddings := make([][]float64, 0, len(articles))
	snippets := make([]core.SalientSnippet, len(articles))
	for i, a := range articles {
		titles[i] = a.Title
		snippets[i] = core.SalientSnippet{Title: a.Title, Source: a.Source, PublicationTime: a.PublicationTime}
		if len(a.Embedding) > 0 {
			embeddings = append(embeddings, a.Embedding)
		}
	}

	entityNames, err := o.deps.DB.Entities().EntitiesForArticles(ctx, articleIDs)
	if err != nil {
		o.log.Warn("cluster skipped: failed to fetch entities", "article_ids", articleIDs, "error", err)
		return false
	}
	sharedEntities := sharedEntityNames(entityNames, articleIDs)

	// a. C9 validate.
	validation, err := o.deps.ClusterValidator.Validate(ctx, titles, sharedEntities)
	if err != nil || !validation.IsStory {
		o.log.Info("cluster rejected by validation", "article_ids", articleIDs, "error", err)
		return false
	}

	// b. C10 enrich.
	enrichment, err := o.deps.StoryEnricher.Enrich(ctx, titles)
	if err != nil {
		o.log.Warn("cluster skipped: enrichment failed", "article_ids", articleIDs, "error", err)
		return false
	}

	// c. Representative vector, computed once and shared by continuity
	// tracking and historical retrieval.
	representative, err := meanEmbedding(embeddings)
	if err != nil {
		o.log.Warn("cluster skipped: could not compute representative vector", "article_ids", articleIDs, "error", err)
		return false
	}

	// d. C13 track continuity.
	continuity, err := o.deps.StoryTracker.Track(ctx, enrichment.Label, enrichment.Rationale, embeddings, representative)
	if err != nil {
		o.log.Warn("continuity tracking failed, proceeding without a parent", "article_ids", articleIDs, "error", err)
		continuity = story.NoParent
	}

	// e. C12 retrieve historical context.
	since := time.Now().AddDate(0, 0, -story.CandidateWindowDays)
	candidates, err := o.deps.HistoricalRetriever.Retrieve(ctx, representative, story.CandidateCount, since)
	if err != nil {
		o.log.Warn("historical retrieval failed, proceeding without context", "article_ids", articleIDs, "error", err)
		candidates = nil
	}
	historicalContext := formatHistoricalContext(candidates, continuity)

	// f. C14 synthesize.
	analysisSummary, err := o.deps.Synthesizer.Synthesize(ctx, enrichment.Label, enrichment.Rationale, snippets, historicalContext, "")
	if err != nil {
		o.log.Warn("cluster skipped: synthesis failed", "article_ids", articleIDs, "error", err)
		return false
	}

	// g. C11 derive memory components and essence embedding.
	memory, err := o.deps.MemoryProcessor.Process(ctx, analysisSummary)
	if err != nil {
		o.log.Warn("cluster skipped: memory derivation failed", "article_ids", articleIDs, "error", err)
		return false
	}

	newStory := core.Story{
		Title:               enrichment.Label,
		ConnectionRationale: enrichment.Rationale,
		AnalysisSummary:     analysisSummary,
		EssenceText:         memory.StoryEssence,
		ContextSnippets:     memory.ContextSnippets,
		EssenceEmbedding:    memory.EssenceEmbedding,
		IsActive:            true,
		CreatedAt:           time.Now().UTC(),
		LastUpdateTime:      time.Now().UTC(),
	}

	// h. C6.save_story and, if a parent was found, save_story_relationship.
	storyID, err := o.deps.DB.Stories().SaveStory(ctx, newStory, articleIDs)
	if err != nil {
		o.log.Warn("cluster skipped: save story failed", "article_ids", articleIDs, "error", err)
		return false
	}

	if continuity.IsContinuation {
		if err := o.deps.DB.Stories().SaveStoryRelationship(ctx, storyID, continuity.ParentStoryID, core.RelationshipEvolvedFrom, "orchestrator"); err != nil {
			o.log.Warn("save story relationship failed", "story_id", storyID, "parent_id", continuity.ParentStoryID, "error", err)
		}
	}

	return true
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

// sharedEntityNames returns the lower-cased entity names that appear in at
// least two of the articles in ids, flattening across entity types, per
// spec.md 4.9's validation-prompt input.
func sharedEntityNames(byArticle map[string]map[string][]string, ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, id := range ids {
		seenInArticle := make(map[string]bool)
		for _, names := range byArticle[id] {
			for _, n := range names {
				lower := strings.ToLower(n)
				if !seenInArticle[lower] {
					seenInArticle[lower] = true
					counts[lower]++
				}
			}
		}
	}
	var shared []string
	for name, count := range counts {
		if count >= 2 {
			shared = append(shared, name)
		}
	}
	sort.Strings(shared)
	return shared
}

// formatHistoricalContext renders up to CandidateCount historical stories
// as bullet lines; when retrieval yielded nothing but continuity tracking
// found a parent, the parent id is surfaced instead, per spec.md 4.15 step e.
func formatHistoricalContext(candidates []core.HistoricalCandidate, continuity core.ContinuityResult) string {
	if len(candidates) == 0 {
		if continuity.IsContinuation {
			return fmt.Sprintf("Continues prior story %s; no further historical context retrieved.", continuity.ParentStoryID)
		}
		return ""
	}
	lines := make([]string, len(candidates))
	for i, c := range candidates {
		lines[i] = fmt.Sprintf("- %s: %s", c.Title, c.EssenceText)
	}
	return strings.Join(lines, "\n")
}
