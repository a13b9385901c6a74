// Package submission implements the downstream aggregate payload a
// completed batch is handed off as: one POST carrying every analyzed
// story plus the news ids no cluster claimed, per spec.md 6.
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"storyengine/internal/logger"
)

// Category is one of the fixed labels the downstream application server
// accepts for a story's main_categories, carried over from the upstream
// classification prompt's fixed category set rather than invented here.
type Category string

// The full set of valid Category values, ported verbatim from the
// upstream classification prompt's fixed category list so downstream
// consumers see the same literal strings they always have.
const (
	CategoryEconomy     Category = "EKONOMİ"
	CategoryMarkets     Category = "PİYASALAR"
	CategoryPolitics    Category = "SİYASET"
	CategoryGeopolitics Category = "JEOPOLİTİK"
	CategoryTechnology  Category = "TEKNOLOJİ"
	CategoryEnergy      Category = "ENERJİ"
	CategoryClimate     Category = "İKLİM"
)

// DefaultDisclaimer is the standard legal notice appended to every story's
// analysis_summary before submission, ported verbatim (not translated) from
// the upstream aggregate-payload contract's DEFAULT_DISCLAIMER.
const DefaultDisclaimer = "Bu içerik yapay zeka ile otomatik olarak üretilmiş olup, sağlanan haberlere dayanmaktadır ve genel bilgilendirme amaçlıdır. Yatırım tavsiyesi niteliği taşımaz."

// WithDisclaimer appends the standard disclaimer line to summary, matching
// the upstream "\n\nUYARI: {DEFAULT_DISCLAIMER}" suffix applied just before
// a story is handed to the downstream payload.
func WithDisclaimer(summary string) string {
	return summary + "\n\nUYARI: " + DefaultDisclaimer
}

// AnalyzedStory is one entry of the payload's analyzed_stories array.
type AnalyzedStory struct {
	StoryTitle      string     `json:"story_title"`
	RelatedNewsIDs  []string   `json:"related_news_ids"`
	AnalysisSummary string     `json:"analysis_summary"`
	MainCategories  []Category `json:"main_categories"`
}

// Payload is the single aggregate document POSTed to the downstream
// application server when a batch completes.
type Payload struct {
	AnalyzedStories  []AnalyzedStory `json:"analyzed_stories"`
	UngroupedNewsIDs []string        `json:"ungrouped_news_ids"`
}

// Submitter POSTs a completed batch's Payload to a configured URL.
type Submitter struct {
	client *http.Client
	url    string
}

// NewSubmitter builds a Submitter targeting url, with the given timeout
// (default 30s, matching the 30s/10s-connect budget the downstream client
// uses upstream).
func NewSubmitter(url string, timeout time.Duration) *Submitter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Submitter{client: &http.Client{Timeout: timeout}, url: url}
}

// Submit POSTs payload as JSON. Success is any 2xx response. Failures —
// network errors, non-2xx responses — are logged and returned as an error
// for the caller to log-and-continue; Submit itself never retries, per
// spec.md 6's "non-2xx and network errors are logged, not retried from
// the core".
func (s *Submitter) Submit(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal submission payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Info("submitting analyzed batch downstream",
		"url", s.url,
		"analyzed_stories", len(payload.AnalyzedStories),
		"ungrouped_news_ids", len(payload.UngroupedNewsIDs),
	)

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Error("downstream submission request failed", err, "url", s.url)
		return fmt.Errorf("submit payload to %s: %w", s.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error("downstream submission rejected", fmt.Errorf("status %d", resp.StatusCode), "url", s.url)
		return fmt.Errorf("submit payload to %s: status %d", s.url, resp.StatusCode)
	}

	logger.Info("downstream submission succeeded", "url", s.url, "status", resp.StatusCode)
	return nil
}
