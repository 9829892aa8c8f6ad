package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProxyGenerateSuccess(t *testing.T) {
	var gotAuth string
	var gotBody proxyRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze-briefing" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{"text": `{"summary_30s": "ok"}`})
	}))
	defer srv.Close()

	p := NewProxyTransport(srv.URL, "secret-token")
	resp, err := p.Generate(context.Background(), &GenerateRequest{
		System:  "you are an analyst",
		Message: "ARTICLE: ...",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Text != `{"summary_30s": "ok"}` {
		t.Errorf("unexpected text %q", resp.Text)
	}
	if len(resp.Sources) != 0 {
		t.Errorf("proxy path must not carry grounding sources, got %v", resp.Sources)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	if gotBody.Config.SystemInstruction != "you are an analyst" {
		t.Errorf("system instruction not forwarded: %q", gotBody.Config.SystemInstruction)
	}
	if len(gotBody.Messages) != 1 || len(gotBody.Messages[0].Parts) != 1 || gotBody.Messages[0].Parts[0].Text != "ARTICLE: ..." {
		t.Errorf("unexpected message body: %+v", gotBody.Messages)
	}
}

func TestProxyGenerateErrorClassification(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusServiceUnavailable, KindOverloaded},
		{http.StatusInternalServerError, KindFatal},
		{http.StatusUnauthorized, KindFatal},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			json.NewEncoder(w).Encode(map[string]string{"error": "upstream failed"})
		}))

		p := NewProxyTransport(srv.URL, "token")
		_, err := p.Generate(context.Background(), &GenerateRequest{Message: "x"})
		srv.Close()

		var terr *Error
		if !errors.As(err, &terr) {
			t.Fatalf("status %d: expected *Error, got %v", tt.status, err)
		}
		if terr.Kind != tt.want {
			t.Errorf("status %d: expected kind %s, got %s", tt.status, tt.want, terr.Kind)
		}
		if terr.Status != tt.status {
			t.Errorf("status %d: expected status carried, got %d", tt.status, terr.Status)
		}
	}
}

func TestProxyGenerateEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"text": ""})
	}))
	defer srv.Close()

	p := NewProxyTransport(srv.URL, "token")
	_, err := p.Generate(context.Background(), &GenerateRequest{Message: "x"})

	var terr *Error
	if !errors.As(err, &terr) || terr.Kind != KindFatal {
		t.Errorf("expected fatal error for empty proxy text, got %v", err)
	}
}

func TestNewTransportPrefersProxy(t *testing.T) {
	tr, err := NewTransport("https://proxy.example.com", "tok", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := tr.(*ProxyTransport); !ok {
		t.Errorf("expected ProxyTransport, got %T", tr)
	}
}

func TestNewTransportRequiresAPIKeyWithoutProxy(t *testing.T) {
	if _, err := NewTransport("", "", "", "gemini-2.0-flash"); err == nil {
		t.Error("expected error when neither proxy nor API key is configured")
	}
}
