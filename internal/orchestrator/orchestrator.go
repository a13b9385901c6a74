// Package orchestrator implements C15: it schedules Phase1 (feature
// enrichment) → Phase2a (interaction scoring) → Phase2b (graph clustering)
// → Phase3 (per-cluster validation/enrichment/synthesis) over one batch,
// injecting every other component as an explicit dependency and isolating
// failures to the article or cluster that produced them, per spec.md 4.15.
package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"storyengine/internal/assets"
	"storyengine/internal/clustering"
	"storyengine/internal/core"
	"storyengine/internal/entities"
	"storyengine/internal/events"
	"storyengine/internal/featureextract"
	"storyengine/internal/logger"
	"storyengine/internal/persistence"
	"storyengine/internal/story"
	"storyengine/internal/surprise"
)

// Counters summarizes one run's outcome, returned as the terminal state per
// spec.md 4.15 ("terminal = counters returned").
type Counters struct {
	ArticlesAttempted int
	ArticlesFailed    int
	EdgesSaved        int
	ClustersFound     int
	ClustersValidated int
	ClustersSkipped   int
	StoriesSaved      int
}

// Deps bundles every component Phase 1-3 calls, constructed once by the
// caller and wired in here rather than built internally, per spec.md 9's
// explicit-dependency-injection note.
type Deps struct {
	DB *persistence.PostgresDB

	Extractor       *featureextract.Extractor
	EventClassifier *events.Classifier
	AssetMapper     *assets.Mapper
	AssetFilter     *assets.Filter
	SurpriseScorer  *surprise.Scorer

	InteractionScorer *clustering.InteractionScorer
	GraphClusterer    *clustering.GraphClusterer

	ClusterValidator    *story.ClusterValidator
	StoryEnricher       *story.StoryEnricher
	HistoricalRetriever *story.HistoricalRetriever
	StoryTracker        *story.StoryTracker
	Synthesizer         *story.Synthesizer
	MemoryProcessor     *story.MemoryProcessor

	ModelVersion string
	MaxWorkers   int
	BatchSize    int
	MaxClusters  int
}

// Orchestrator runs one Phase1→2a→2b→3 pass.
type Orchestrator struct {
	deps Deps
	log  *slog.Logger
}

// New builds an Orchestrator over deps, defaulting MaxWorkers/BatchSize
// when unset.
func New(deps Deps) *Orchestrator {
	if deps.MaxWorkers <= 0 {
		deps.MaxWorkers = 5
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = 100
	}
	return &Orchestrator{deps: deps, log: logger.Get()}
}

// Run executes one full pass: Phase 1, then 2a, then 2b, then 3, returning
// aggregate counters. It never returns early on a per-article or per-cluster
// failure; it does return early on a phase-level infrastructure failure
// (e.g. the initial fetch itself erroring), since nothing downstream could
// proceed.
func (o *Orchestrator) Run(ctx context.Context, runDate time.Time) (Counters, error) {
	var counters Counters

	if err := o.phase1(ctx, &counters); err != nil {
		return counters, err
	}
	if err := o.phase2a(ctx, runDate, &counters); err != nil {
		return counters, err
	}
	clusters, err := o.phase2b(ctx, runDate, &counters)
	if err != nil {
		return counters, err
	}
	o.phase3(ctx, clusters, &counters)

	o.log.Info("orchestrator run complete",
		"articles_attempted", counters.ArticlesAttempted,
		"articles_failed", counters.ArticlesFailed,
		"edges_saved", counters.EdgesSaved,
		"clusters_found", counters.ClustersFound,
		"clusters_validated", counters.ClustersValidated,
		"clusters_skipped", counters.ClustersSkipped,
		"stories_saved", counters.StoriesSaved,
	)
	return counters, nil
}

// phase1 fetches the unprocessed batch and dispatches per-article work to a
// bounded worker pool, mirroring the teacher's semaphore+WaitGroup feed
// aggregation pattern rather than a third-party pool library.
func (o *Orchestrator) phase1(ctx context.Context, counters *Counters) error {
	articles, err := o.deps.DB.Articles().FetchUnprocessed(ctx, o.deps.BatchSize)
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		return nil
	}

	sem := make(chan struct{}, o.deps.MaxWorkers)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, article := range articles {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		default:
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(a core.Article) {
			defer wg.Done()
			defer func() { <-sem }()

			failed := o.processArticle(ctx, a)

			mu.Lock()
			counters.ArticlesAttempted++
			if failed {
				counters.ArticlesFailed++
			}
			mu.Unlock()
		}(article)
	}

	wg.Wait()
	return nil
}

// processArticle runs C1→C2→C3→C4→C5→save_features for one article. It
// returns true when the article ended in a failed processing-log status;
// it never returns an error since a per-article failure must not abort the
// pool, per spec.md 4.15 step 1.
func (o *Orchestrator) processArticle(ctx context.Context, article core.Article) bool {
	extracted := o.deps.Extractor.Extract(ctx, article.URL)
	article.FullText = extracted.FullText

	var eventType string
	if classification, ok := o.deps.EventClassifier.Classify(extracted.FullText, extracted.Entities); ok {
		eventType = classification.EventType
	}

	var assetDecisions []core.AssetDecision
	if candidates := o.deps.AssetMapper.MapCandidates(extracted.Entities); len(candidates) > 0 && extracted.FullText != "" {
		decisions, err := o.deps.AssetFilter.FilterAssets(ctx, extracted.FullText, candidates)
		if err != nil {
			o.log.Warn("asset filter failed", "article_id", article.ID, "error", err)
		} else {
			assetDecisions = decisions
		}
	}

	var surpriseScore *float64
	if eventType != "" {
		score, ok, err := o.deps.SurpriseScorer.Score(ctx, eventType, article.PublicationTime)
		if err != nil {
			o.log.Warn("surprise scoring failed", "article_id", article.ID, "error", err)
		} else if ok {
			surpriseScore = &score
		}
	}

	enriched := core.EnrichedArticle{
		Article:       article,
		Entities:      extracted.Entities,
		Embedding:     extracted.Embedding,
		EventType:     eventType,
		AssetFilter:   assetDecisions,
		SurpriseScore: surpriseScore,
	}

	if err := o.deps.DB.SaveFeatures(ctx, enriched, o.deps.ModelVersion); err != nil {
		o.log.Warn("save features failed", "article_id", article.ID, "error", err)
		return true
	}
	return len(extracted.Embedding) == 0 && len(extracted.Entities) == 0
}

// phase2a fetches the processed set and invokes C7 to persist today's
// interaction edges.
func (o *Orchestrator) phase2a(ctx context.Context, runDate time.Time, counters *Counters) error {
	articles, err := o.deps.DB.Articles().FetchProcessed(ctx, o.deps.BatchSize)
	if err != nil {
		return err
	}
	if len(articles) == 0 {
		return nil
	}

	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}
	entityNames, err := o.deps.DB.Entities().EntitiesForArticles(ctx, ids)
	if err != nil {
		return err
	}

	inputs := make([]clustering.ArticleInput, len(articles))
	for i, a := range articles {
		pub := a.PublicationTime
		inputs[i] = clustering.ArticleInput{
			ID:              a.ID,
			Embedding:       a.Embedding,
			EntityNames:     entityNames[a.ID],
			PublicationTime: &pub,
		}
	}

	edges, err := o.deps.InteractionScorer.ScoreAll(ctx, inputs, runDate)
	if err != nil {
		return err
	}
	if len(edges) == 0 {
		return nil
	}
	if err := o.deps.DB.Edges().SaveEdges(ctx, edges); err != nil {
		return err
	}
	counters.EdgesSaved = len(edges)
	return nil
}

// phase2b fetches today's thresholded edges and runs C8, truncating to
// MaxClusters when configured (0 = unbounded), per spec.md 4.15 step 3.
func (o *Orchestrator) phase2b(ctx context.Context, runDate time.Time, counters *Counters) ([][]string, error) {
	edges, err := o.deps.DB.Edges().FetchEdges(ctx, runDate, 0)
	if err != nil {
		return nil, err
	}
	clusters, err := o.deps.GraphClusterer.Cluster(edges)
	if err != nil {
		return nil, err
	}
	if o.deps.MaxClusters > 0 && len(clusters) > o.deps.MaxClusters {
		clusters = clusters[:o.deps.MaxClusters]
	}
	counters.ClustersFound = len(clusters)
	return clusters, nil
}

// phase3 runs C9-C14 sequentially over each candidate cluster, per
// spec.md 4.15 step 4; any per-cluster step failure logs and continues.
func (o *Orchestrator) phase3(ctx context.Context, clusters [][]string, counters *Counters) {
	for _, articleIDs := range clusters {
		if o.processCluster(ctx, articleIDs) {
			counters.ClustersValidated++
			counters.StoriesSaved++
		} else {
			counters.ClustersSkipped++
		}
	}
}
