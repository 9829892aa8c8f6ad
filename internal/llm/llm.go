// Package llm provides the transports that carry analysis requests to the
// language model, either directly against the Gemini API or through a
// bearer-authenticated proxy endpoint.
package llm

import (
	"context"

	"github.com/brevita-ai/brevita/internal/briefing"
)

// Transport is the interface for LLM transports.
type Transport interface {
	Generate(ctx context.Context, req *GenerateRequest) (*Response, error)
}

// GenerateRequest is one outbound model call.
type GenerateRequest struct {
	System  string
	Message string

	// UseSearch enables the web-search tool. Strict JSON output cannot be
	// enforced by the transport while tools are in play, so UseSearch and
	// StrictJSON are mutually exclusive.
	UseSearch  bool
	StrictJSON bool
}

// Response is the model's completion plus any citation metadata the
// transport surfaced.
type Response struct {
	Text    string
	Sources []briefing.GroundingSource
}

// NewTransport selects the transport from configuration: the proxy when an
// endpoint is configured, the Gemini API directly otherwise.
func NewTransport(proxyURL, proxyToken, apiKey, model string) (Transport, error) {
	if proxyURL != "" {
		return NewProxyTransport(proxyURL, proxyToken), nil
	}
	return NewGeminiTransport(apiKey, model)
}
