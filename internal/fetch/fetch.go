// Package fetch implements FeatureExtractor's text-fetch step (C1): HTTP GET
// with a fixed User-Agent and timeout, then HTML-to-text extraction.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"storyengine/internal/apperr"
)

const userAgent = "storyengine-fetcher/1.0 (+https://example.invalid/bot)"

// MinContentChars is the printable-character floor below which fetched text
// is rejected as insufficient content, per spec.md 4.1.
const MinContentChars = 150

var newlineRunRegex = regexp.MustCompile(`\n{2,}`)

// Fetcher fetches and cleans article text from a URL.
type Fetcher struct {
	client *http.Client
}

// NewFetcher builds a Fetcher with the given timeout (default 10s per
// spec.md 4.1 / 5).
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// FetchText retrieves url and returns its cleaned visible text. It returns
// an *apperr.ValidationError wrapping ErrPermanentInput when the resulting
// text is below MinContentChars.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body from %s: %w", url, err)
	}

	text, err := extractText(string(body))
	if err != nil {
		return "", err
	}

	if len(strings.TrimSpace(text)) < MinContentChars {
		return "", &apperr.ValidationError{
			Field:  "full_text",
			Reason: fmt.Sprintf("extracted text below %d character floor", MinContentChars),
			Kind:   apperr.ErrPermanentInput,
		}
	}

	return text, nil
}

// extractText strips boilerplate and returns the visible body text,
// generalized from the teacher's ParseArticleContent.
func extractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript, .sidebar, #sidebar, .ad, .advertisement, .popup, .modal, .cookie-banner").Remove()

	var b strings.Builder
	selectors := []string{
		"article", "main", ".main-content", ".entry-content", ".post-content",
		".post-body", ".article-body", "[role='main']", ".content", "#content",
	}

	found := false
	for _, selector := range selectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			s.Find("p, h1, h2, h3, h4, h5, h6, li, blockquote, pre").Each(func(_ int, item *goquery.Selection) {
				b.WriteString(strings.TrimSpace(item.Text()))
				b.WriteString("\n\n")
			})
		})
		if b.Len() > 0 {
			found = true
			break
		}
	}

	if !found {
		doc.Find("body").Find("p, h1, h2, h3, h4, h5, h6, li, blockquote, pre").Each(func(_ int, item *goquery.Selection) {
			b.WriteString(strings.TrimSpace(item.Text()))
			b.WriteString("\n\n")
		})
	}

	cleaned := newlineRunRegex.ReplaceAllString(b.String(), "\n")
	return strings.TrimSpace(cleaned), nil
}
