// Package analyze orchestrates one analysis request: prompt construction,
// the retry-wrapped transport call, tolerant JSON extraction, schema
// validation and derived-field backfill.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/brevita-ai/brevita/internal/briefing"
	"github.com/brevita-ai/brevita/internal/llm"
)

// Analyzer turns briefing requests into validated briefings. It holds no
// state between calls; each invocation is independent.
type Analyzer struct {
	transport llm.Transport
}

// New creates an Analyzer over the given transport.
func New(transport llm.Transport) *Analyzer {
	return &Analyzer{transport: transport}
}

// Analyze runs the full pipeline for one request.
func (a *Analyzer) Analyze(ctx context.Context, req *briefing.Request) (*briefing.Briefing, error) {
	if strings.TrimSpace(req.URL) == "" && strings.TrimSpace(req.Article) == "" {
		return nil, fmt.Errorf("either a URL or article text is required")
	}

	// Without article text the model must retrieve the URL's content with
	// the search tool; with tools in play strict JSON output cannot be
	// enforced by the transport, only by the prompt.
	useSearch := strings.TrimSpace(req.Article) == "" && strings.TrimSpace(req.URL) != ""

	resp, err := llm.WithRetry(ctx, func(ctx context.Context) (*llm.Response, error) {
		return a.transport.Generate(ctx, &llm.GenerateRequest{
			System:     systemPrompt,
			Message:    buildUserMessage(req, useSearch),
			UseSearch:  useSearch,
			StrictJSON: !useSearch,
		})
	})
	if err != nil {
		return nil, err
	}

	raw, err := briefing.ExtractJSON(resp.Text)
	if err != nil {
		var malformed *briefing.MalformedResponseError
		if errors.As(err, &malformed) {
			return nil, fmt.Errorf("the AI response was not in the expected JSON format, please try again: %w", err)
		}
		return nil, err
	}

	b, err := briefing.Validate(raw)
	if err != nil {
		var se *briefing.SchemaError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("AI generated invalid structure: %w", err)
		}
		return nil, err
	}

	if b.Meta.ReadingTimeSeconds == 0 {
		b.Meta.ReadingTimeSeconds = briefing.EstimateReadingTime(b.Summary, b.KeyPoints)
	}
	if len(resp.Sources) > 0 {
		b.GroundingSources = resp.Sources
	}

	return b, nil
}
