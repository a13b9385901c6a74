package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"storyengine/internal/assets"
	"storyengine/internal/clustering"
	"storyengine/internal/config"
	"storyengine/internal/entities"
	"storyengine/internal/events"
	"storyengine/internal/featureextract"
	"storyengine/internal/fetch"
	"storyengine/internal/llm"
	"storyengine/internal/logger"
	"storyengine/internal/orchestrator"
	"storyengine/internal/persistence"
	"storyengine/internal/story"
	"storyengine/internal/submission"
	"storyengine/internal/surprise"
	"storyengine/internal/vectorstore"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one Phase1->2a->2b->3 pass over the unprocessed batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runOnce(cmd.Context(), cfg)
		},
	}
}

func runOnce(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	db, err := persistence.Open(cfg.Database.ConnectionString, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	llmClient, err := llm.NewClient(cfg.LLM.Model)
	if err != nil {
		return fmt.Errorf("build llm client: %w", err)
	}

	recognizer, err := entities.LoadRecognizer(cfg.Files.GazetteerPath)
	if err != nil {
		return fmt.Errorf("load gazetteer: %w", err)
	}
	eventClassifier, err := events.LoadClassifier(cfg.Files.EventRulesPath)
	if err != nil {
		return fmt.Errorf("load event rules: %w", err)
	}
	assetMapper, err := assets.LoadMapper(cfg.Files.AssetRulesPath)
	if err != nil {
		return fmt.Errorf("load asset rules: %w", err)
	}
	surpriseScorer, err := surprise.LoadScorer(cfg.Files.SurprisePath, db.Events())
	if err != nil {
		return fmt.Errorf("load surprise synonyms: %w", err)
	}

	extractor := featureextract.New(fetch.NewFetcher(cfg.Pipeline.FetchTimeout), recognizer, llmClient)
	assetFilter := assets.NewFilter(llmClient)

	weights := clustering.ScoreWeights{
		Semantic: cfg.Scoring.SemanticWeight,
		Entity:   cfg.Scoring.EntityWeight,
		Temporal: cfg.Scoring.TemporalWeight,
	}
	interactionScorer := clustering.NewInteractionScorer(
		vectorstore.NewArticleStore(db.Conn()), weights, cfg.Scoring.KNeighbors, cfg.Scoring.InteractionThreshold,
	)
	graphClusterer := clustering.NewGraphClusterer()

	historicalRetriever := story.NewHistoricalRetriever(db.Stories())

	deps := orchestrator.Deps{
		DB:                  db,
		Extractor:           extractor,
		EventClassifier:     eventClassifier,
		AssetMapper:         assetMapper,
		AssetFilter:         assetFilter,
		SurpriseScorer:      surpriseScorer,
		InteractionScorer:   interactionScorer,
		GraphClusterer:      graphClusterer,
		ClusterValidator:    story.NewClusterValidator(llmClient),
		StoryEnricher:       story.NewStoryEnricher(llmClient),
		HistoricalRetriever: historicalRetriever,
		StoryTracker:        story.NewStoryTracker(llmClient, db.Stories()),
		Synthesizer:         story.NewSynthesizer(llmClient),
		MemoryProcessor:     story.NewMemoryProcessor(llmClient),
		ModelVersion:        llmClient.ModelVersion(),
		MaxWorkers:          cfg.Pipeline.MaxWorkers,
		BatchSize:           cfg.Pipeline.NewsBatchSize,
		MaxClusters:         cfg.Pipeline.MaxClusters,
	}

	runDate := time.Now().UTC()
	counters, err := orchestrator.New(deps).Run(ctx, runDate)
	if err != nil {
		return fmt.Errorf("orchestrator run failed: %w", err)
	}

	if cfg.Downstream.SubmitURL != "" {
		if err := submitBatch(ctx, cfg, db, runDate); err != nil {
			log.Warn("downstream submission failed", "error", err)
		}
	}

	log.Info("run complete",
		"articles_attempted", counters.ArticlesAttempted,
		"articles_failed", counters.ArticlesFailed,
		"stories_saved", counters.StoriesSaved,
	)
	return nil
}

// submitBatch gathers the run's resulting stories and posts the aggregate
// downstream payload; submission failures are logged by the caller, never
// retried, and never fail the run itself, per spec.md 6.
func submitBatch(ctx context.Context, cfg *config.Config, db *persistence.PostgresDB, runDate time.Time) error {
	stories, err := db.Stories().FetchCreatedSince(ctx, runDate)
	if err != nil {
		return fmt.Errorf("fetch run's stories: %w", err)
	}

	grouped := make(map[string]bool)
	analyzed := make([]submission.AnalyzedStory, 0, len(stories))
	for _, s := range stories {
		for _, id := range s.ArticleIDs {
			grouped[id] = true
		}
		analyzed = append(analyzed, submission.AnalyzedStory{
			StoryTitle:      s.Story.Title,
			RelatedNewsIDs:  s.ArticleIDs,
			AnalysisSummary: submission.WithDisclaimer(s.Story.AnalysisSummary),
			MainCategories:  submission.ClassifyCategories(s.Story.Title, s.Story.AnalysisSummary),
		})
	}

	processed, err := db.Articles().FetchProcessed(ctx, cfg.Pipeline.NewsBatchSize)
	if err != nil {
		return fmt.Errorf("fetch processed articles: %w", err)
	}
	ungrouped := make([]string, 0, len(processed))
	for _, a := range processed {
		if !grouped[a.ID] {
			ungrouped = append(ungrouped, a.ID)
		}
	}

	submitter := submission.NewSubmitter(cfg.Downstream.SubmitURL, cfg.Pipeline.LLMTimeout)
	payload := submission.Payload{
		AnalyzedStories:  analyzed,
		UngroupedNewsIDs: ungrouped,
	}
	return submitter.Submit(ctx, payload)
}
