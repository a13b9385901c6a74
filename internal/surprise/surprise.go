// Package surprise implements C5 SurpriseScore: joins article publication
// time to the nearest matching economic event and computes a normalized
// actual-vs-forecast surprise in [0,1].
package surprise

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"storyengine/internal/core"
)

// WindowDays bounds the economic-event search window around publication
// time, per spec.md 4.5.
const WindowDays = 2

// ForecastFloor is the minimum denominator used to avoid division by zero
// when forecast_value is 0, per spec.md 4.5.
const ForecastFloor = 1e-3

var defaultStopwords = map[string]bool{
	"data": true, "report": true, "announcement": true,
}

// SynonymFile is the on-disk synonym-expansion table, supplemented from the
// Python original's fuller table beyond spec.md's single "inflation" example.
type SynonymFile struct {
	Synonyms map[string][]string `yaml:"synonyms"`
	Stopwords []string           `yaml:"stopwords"`
}

// EventFinder is the subset of persistence this component depends on.
type EventFinder interface {
	FindEvents(ctx context.Context, start, end time.Time, keywords []string) ([]core.EconomicEvent, error)
}

// Scorer computes surprise scores.
type Scorer struct {
	finder    EventFinder
	synonyms  map[string][]string
	stopwords map[string]bool
}

// LoadScorer reads the synonym/stopword table from path and binds it to finder.
func LoadScorer(path string, finder EventFinder) (*Scorer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read surprise synonyms %s: %w", path, err)
	}
	var sf SynonymFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse surprise synonyms %s: %w", path, err)
	}

	stopwords := make(map[string]bool)
	for k := range defaultStopwords {
		stopwords[k] = true
	}
	for _, w := range sf.Stopwords {
		stopwords[strings.ToLower(w)] = true
	}

	return &Scorer{finder: finder, synonyms: sf.Synonyms, stopwords: stopwords}, nil
}

// Score implements spec.md 4.5's four steps; returns ok=false when no
// matching event is found or the matched event lacks numeric actual/forecast.
func (s *Scorer) Score(ctx context.Context, eventType string, publicationTime time.Time) (float64, bool, error) {
	keywords := s.expandKeywords(eventType)
	if len(keywords) == 0 {
		return 0, false, nil
	}

	start := publicationTime.AddDate(0, 0, -WindowDays)
	end := publicationTime.AddDate(0, 0, WindowDays)

	events, err := s.finder.FindEvents(ctx, start, end, keywords)
	if err != nil {
		return 0, false, fmt.Errorf("find economic events: %w", err)
	}
	if len(events) == 0 {
		return 0, false, nil
	}

	sort.Slice(events, func(i, j int) bool {
		di := absDuration(events[i].EventTime.Sub(publicationTime))
		dj := absDuration(events[j].EventTime.Sub(publicationTime))
		return di < dj
	})

	nearest := events[0]
	if nearest.ActualValue == nil || nearest.ForecastValue == nil {
		return 0, false, nil
	}

	denom := math.Max(math.Abs(*nearest.ForecastValue), ForecastFloor)
	score := math.Abs(*nearest.ActualValue-*nearest.ForecastValue) / denom
	if score > 1.0 {
		score = 1.0
	}
	return score, true, nil
}

func (s *Scorer) expandKeywords(eventType string) []string {
	separators := func(r rune) bool { return r == '_' || r == '-' || r == ' ' }
	parts := strings.FieldsFunc(strings.ToLower(eventType), separators)

	seen := make(map[string]bool)
	var keywords []string
	for _, part := range parts {
		if s.stopwords[part] || part == "" {
			continue
		}
		if !seen[part] {
			seen[part] = true
			keywords = append(keywords, part)
		}
		for _, syn := range s.synonyms[part] {
			if !seen[syn] {
				seen[syn] = true
				keywords = append(keywords, syn)
			}
		}
	}
	return keywords
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
