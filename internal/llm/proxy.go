package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ProxyTransport routes analysis requests through a hosted proxy endpoint
// that holds the Gemini API key server-side.
type ProxyTransport struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewProxyTransport creates a proxy transport for the given base URL.
func NewProxyTransport(baseURL, token string) *ProxyTransport {
	return &ProxyTransport{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type proxyPart struct {
	Text string `json:"text"`
}

type proxyMessage struct {
	Role  string      `json:"role"`
	Parts []proxyPart `json:"parts"`
}

type proxyRequest struct {
	Messages []proxyMessage `json:"messages"`
	Config   proxyConfig    `json:"config"`
}

type proxyConfig struct {
	SystemInstruction string `json:"systemInstruction"`
}

// Generate sends one request through the proxy. The proxy cannot surface
// grounding metadata, so Sources is always empty on this path.
func (p *ProxyTransport) Generate(ctx context.Context, req *GenerateRequest) (*Response, error) {
	body := proxyRequest{
		Messages: []proxyMessage{
			{Role: "user", Parts: []proxyPart{{Text: req.Message}}},
		},
		Config: proxyConfig{SystemInstruction: req.System},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Kind: KindFatal, Message: "marshaling request: " + err.Error(), err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/analyze-briefing", bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Kind: KindFatal, Message: "creating request: " + err.Error(), err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindFatal, Message: "proxy request failed: " + err.Error(), err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		msg := strings.TrimSpace(string(respBody))

		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Error != "" {
			msg = errBody.Error
		}

		return nil, &Error{
			Kind:    classifyStatus(resp.StatusCode),
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("proxy returned %d: %s", resp.StatusCode, msg),
		}
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &Error{Kind: KindFatal, Message: "decoding proxy response: " + err.Error(), err: err}
	}
	if result.Text == "" {
		return nil, &Error{Kind: KindFatal, Message: "empty response from proxy"}
	}

	return &Response{Text: result.Text}, nil
}
