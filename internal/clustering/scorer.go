package clustering

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"storyengine/internal/core"
	"storyengine/internal/logger"
	"storyengine/internal/vectorstore"
)

// ScoreWeights are C7's configured weights, summing to ~1 (spec.md 4.7/6).
type ScoreWeights struct {
	Semantic float64
	Entity   float64
	Temporal float64
}

// DefaultWeights returns spec.md 4.7's defaults.
func DefaultWeights() ScoreWeights {
	return ScoreWeights{Semantic: 0.50, Entity: 0.30, Temporal: 0.20}
}

// TemporalTau is the decay constant (days) for the temporal score.
const TemporalTau = 7.0

// InteractionScorer implements C7: candidate-pair generation via ANN search
// over article embeddings, then weighted semantic/entity/temporal scoring.
type InteractionScorer struct {
	searcher  vectorstore.Searcher
	weights   ScoreWeights
	kNeighbors int
	threshold float64
	log       *slog.Logger
}

// NewInteractionScorer builds a scorer over the given ANN searcher.
func NewInteractionScorer(searcher vectorstore.Searcher, weights ScoreWeights, kNeighbors int, threshold float64) *InteractionScorer {
	return &InteractionScorer{
		searcher:   searcher,
		weights:    weights,
		kNeighbors: kNeighbors,
		threshold:  threshold,
		log:        logger.Get(),
	}
}

// ArticleInput is the minimal per-article data the scorer needs.
type ArticleInput struct {
	ID              string
	Embedding       []float64
	EntityNames     map[string][]string // lower-cased names recommended
	PublicationTime *time.Time
}

// pairKey canonicalizes an (id1, id2) pair as (min, max) for dedup, per
// spec.md 4.7 step 1 / S2.
type pairKey struct {
	a, b string
}

func canonicalPair(x, y string) pairKey {
	if x < y {
		return pairKey{x, y}
	}
	return pairKey{y, x}
}

// ScoreAll generates candidate pairs for articles and returns the edges
// whose total score meets the threshold, with source < target canonical
// orientation already applied.
func (s *InteractionScorer) ScoreAll(ctx context.Context, articles []ArticleInput, runDate time.Time) ([]core.GraphEdge, error) {
	byID := make(map[string]ArticleInput, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}

	pairs := make(map[pairKey]bool)
	for _, a := range articles {
		if len(a.Embedding) == 0 {
			continue
		}
		results, err := s.searcher.SearchSimilar(ctx, a.Embedding, s.kNeighbors+1, 0, []string{a.ID})
		if err != nil {
			s.log.Warn("interaction scorer: neighbor search failed", "article_id", a.ID, "error", err)
			continue
		}
		for _, r := range results {
			if r.ID == a.ID {
				continue
			}
			if _, ok := byID[r.ID]; !ok {
				continue
			}
			pairs[canonicalPair(a.ID, r.ID)] = true
		}
	}

	edges := make([]core.GraphEdge, 0, len(pairs))
	for pk := range pairs {
		ai, aok := byID[pk.a]
		bi, bok := byID[pk.b]
		if !aok || !bok {
			continue
		}

		semantic := clip01(cosineSimilarity(ai.Embedding, bi.Embedding))
		entity := jaccard(flattenLower(ai.EntityNames), flattenLower(bi.EntityNames))
		temporal := temporalScore(ai.PublicationTime, bi.PublicationTime)

		total := s.weights.Semantic*semantic + s.weights.Entity*entity + s.weights.Temporal*temporal
		if total < s.threshold {
			continue
		}

		edges = append(edges, core.GraphEdge{
			SourceArticleID: pk.a,
			TargetArticleID: pk.b,
			SemanticScore:   semantic,
			EntityScore:     entity,
			TemporalScore:   temporal,
			TotalScore:      total,
			RunDate:         runDate,
			UpdatedAt:       time.Now().UTC(),
		})
	}

	return edges, nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func flattenLower(byType map[string][]string) map[string]bool {
	out := make(map[string]bool)
	for _, names := range byType {
		for _, n := range names {
			out[strings.ToLower(n)] = true
		}
	}
	return out
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// temporalScore returns exp(-deltaDays/tau), 1.0 when both times are equal,
// and 0.5 when either timestamp is missing, per spec.md 4.7 and the boundary
// behavior in spec.md 8.
func temporalScore(a, b *time.Time) float64 {
	if a == nil || b == nil {
		return 0.5
	}
	deltaDays := math.Abs(a.Sub(*b).Hours() / 24.0)
	return math.Exp(-deltaDays / TemporalTau)
}
