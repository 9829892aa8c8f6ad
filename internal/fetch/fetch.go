// Package fetch retrieves article pages and extracts readable text for
// analysis.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// maxArticleLength caps extracted text before it is sent for analysis.
const maxArticleLength = 15000

const truncationMarker = "... (truncated)"

// Extraction is the readable content pulled from one article page.
type Extraction struct {
	Title   string
	Source  string
	Article string
}

// Extractor fetches article pages over HTTP and extracts their main text.
type Extractor struct {
	client *http.Client
}

// NewExtractor creates an extractor. A zero timeout gets a sane default.
func NewExtractor(timeout time.Duration) *Extractor {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Extractor{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// ExtractFromURL fetches the page at articleURL and returns its readable
// content. Text longer than the analysis cap is truncated with a marker.
func (e *Extractor) ExtractFromURL(ctx context.Context, articleURL string) (*Extraction, error) {
	parsed, err := url.Parse(articleURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid article URL: %s", articleURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Brevita/1.0 (article analyzer)")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching article: %s returned %d", parsed.Host, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading article body: %w", err)
	}

	page, err := readability.FromReader(strings.NewReader(string(body)), parsed)
	if err != nil {
		return nil, fmt.Errorf("extracting article content: %w", err)
	}

	text := strings.TrimSpace(page.TextContent)
	if text == "" {
		return nil, fmt.Errorf("no extractable content at %s", articleURL)
	}
	text = truncate(text)

	return &Extraction{
		Title:   strings.TrimSpace(page.Title),
		Source:  sourceFromHost(parsed.Host),
		Article: text,
	}, nil
}

// truncate caps text at the analysis limit, appending a marker so the
// model knows the article was cut.
func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxArticleLength {
		return text
	}
	return string(runes[:maxArticleLength]) + truncationMarker
}

// sourceFromHost turns a hostname into a display source name.
func sourceFromHost(host string) string {
	host = strings.ToLower(host)
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	return strings.TrimPrefix(host, "www.")
}
