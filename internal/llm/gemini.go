package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/brevita-ai/brevita/internal/briefing"
)

// GeminiTransport calls the Gemini API directly.
type GeminiTransport struct {
	client *genai.Client
	model  string
}

// NewGeminiTransport creates a direct Gemini transport.
func NewGeminiTransport(apiKey, model string) (*GeminiTransport, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key not configured")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiTransport{client: client, model: model}, nil
}

// Generate sends one request to Gemini and returns the completion text plus
// any grounding sources when the search tool was used.
func (g *GeminiTransport) Generate(ctx context.Context, req *GenerateRequest) (*Response, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
	}
	if req.UseSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	} else if req.StrictJSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Message), cfg)
	if err != nil {
		return nil, wrapGenAIError(err)
	}

	text := resp.Text()
	if text == "" {
		return nil, &Error{Kind: KindFatal, Message: "no response generated"}
	}

	return &Response{Text: text, Sources: groundingSources(resp)}, nil
}

// wrapGenAIError tags an SDK error with its retry classification. The SDK
// exposes both the HTTP code and the canonical status string; either marker
// can signal rate limiting or overload.
func wrapGenAIError(err error) *Error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return &Error{Kind: KindFatal, Message: err.Error(), err: err}
	}

	kind := classifyStatus(apiErr.Code)
	if kind == KindFatal {
		switch apiErr.Status {
		case "RESOURCE_EXHAUSTED":
			kind = KindRateLimited
		case "UNAVAILABLE":
			kind = KindOverloaded
		}
	}
	return &Error{Kind: kind, Status: apiErr.Code, Message: apiErr.Message, err: err}
}

func groundingSources(resp *genai.GenerateContentResponse) []briefing.GroundingSource {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}

	var sources []briefing.GroundingSource
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil {
			continue
		}
		sources = append(sources, briefing.GroundingSource{
			URI:   chunk.Web.URI,
			Title: chunk.Web.Title,
		})
	}
	return sources
}
