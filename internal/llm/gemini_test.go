package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiCompleteSendsContract(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"  I miss you too! "}]}}]}`)
	}))
	defer srv.Close()

	p := NewGeminiProvider(srv.Client(), srv.URL+"/", "secret key", "gemini-1.5-flash")
	out, err := p.Complete(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Found || out.Text != "  I miss you too! " {
		t.Fatalf("unexpected completion: %+v", out)
	}
	if gotPath != "/models/gemini-1.5-flash:generateContent" {
		t.Fatalf("path=%s", gotPath)
	}
	if gotKey != "secret key" {
		t.Fatalf("key=%q", gotKey)
	}

	contents := gotBody["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	if parts[0].(map[string]any)["text"] != "the prompt" || len(contents) != 1 || len(parts) != 1 {
		t.Fatalf("unexpected contents: %v", gotBody["contents"])
	}
	cfg := gotBody["generationConfig"].(map[string]any)
	if cfg["temperature"] != 0.7 || cfg["topK"] != float64(40) || cfg["topP"] != 0.95 || cfg["maxOutputTokens"] != float64(150) {
		t.Fatalf("unexpected generation config: %v", cfg)
	}
}

func TestGeminiCompleteAbsentCandidates(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty candidates", body: `{"candidates":[]}`},
		{name: "no candidates key", body: `{"promptFeedback":{"blockReason":"SAFETY"}}`},
		{name: "candidate without content", body: `{"candidates":[{"finishReason":"SAFETY"}]}`},
		{name: "content without parts", body: `{"candidates":[{"content":{"role":"model"}}]}`},
		{name: "empty parts", body: `{"candidates":[{"content":{"parts":[]}}]}`},
		{name: "part without text", body: `{"candidates":[{"content":{"parts":[{"inlineData":{}}]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			out, err := NewGeminiProvider(srv.Client(), srv.URL, "k", "m").Complete(context.Background(), "p")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Found {
				t.Fatalf("expected absent completion, got %+v", out)
			}
			if string(out.Raw) != tt.body {
				t.Fatalf("raw payload not kept: %s", out.Raw)
			}
		})
	}
}

func TestGeminiCompleteErrors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"API key not valid"}}`)
		}))
		defer srv.Close()

		_, err := NewGeminiProvider(srv.Client(), srv.URL, "k", "m").Complete(context.Background(), "p")
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected StatusError, got %v", err)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `<html>oops</html>`)
		}))
		defer srv.Close()

		_, err := NewGeminiProvider(srv.Client(), srv.URL, "k", "m").Complete(context.Background(), "p")
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("expected DecodeError, got %v", err)
		}
	})

	t.Run("connection refused hides key", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		addr := srv.URL
		srv.Close()

		_, err := NewGeminiProvider(http.DefaultClient, addr, "top-secret", "m").Complete(context.Background(), "p")
		if err == nil {
			t.Fatalf("expected transport error")
		}
		if strings.Contains(err.Error(), "top-secret") {
			t.Fatalf("api key leaked into error: %v", err)
		}
	})
}

func TestNewProviderRequiresKey(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "gemini"}); err == nil {
		t.Fatalf("expected missing key error")
	}
	if _, err := NewProvider(Config{Provider: "other", APIKey: "k"}); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
	if _, err := NewProvider(Config{APIKey: "k"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
