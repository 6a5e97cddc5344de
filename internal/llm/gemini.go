package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultGeminiModel   = "gemini-1.5-flash"
)

// Generation parameters are fixed policy, not caller-tunable.
const (
	generationTemperature     = 0.7
	generationTopK            = 40
	generationTopP            = 0.95
	generationMaxOutputTokens = 150
)

type GeminiProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func NewGeminiProvider(client *http.Client, baseURL, apiKey, model string) *GeminiProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultGeminiModel
	}
	return &GeminiProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (p *GeminiProvider) endpoint() string {
	modelPath := p.model
	if !strings.HasPrefix(modelPath, "models/") {
		modelPath = "models/" + modelPath
	}
	return fmt.Sprintf("%s/%s:generateContent?key=%s", p.baseURL, modelPath, url.QueryEscape(p.apiKey))
}

func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (Completion, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     generationTemperature,
			TopK:            generationTopK,
			TopP:            generationTopP,
			MaxOutputTokens: generationMaxOutputTokens,
		},
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return Completion{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(buf))
	if err != nil {
		return Completion{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Completion{}, fmt.Errorf("gemini request: %w", redactKey(err, p.apiKey))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return Completion{Raw: body}, &StatusError{Provider: "gemini", StatusCode: resp.StatusCode, Body: string(body)}
	}

	return parseGeminiResponse(body)
}

func parseGeminiResponse(body []byte) (Completion, error) {
	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Completion{Raw: body}, &DecodeError{Provider: "gemini", Body: string(body), Err: err}
	}

	out := Completion{Raw: body}
	if len(parsed.Candidates) == 0 {
		return out, nil
	}
	content := parsed.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0].Text == nil {
		return out, nil
	}
	out.Text = *content.Parts[0].Text
	out.Found = true
	return out, nil
}

// url.Error embeds the request URL, which carries the API key as a query parameter.
func redactKey(err error, apiKey string) error {
	var ue *url.Error
	if apiKey == "" || !errors.As(err, &ue) {
		return err
	}
	redacted := *ue
	redacted.URL = strings.ReplaceAll(ue.URL, url.QueryEscape(apiKey), "REDACTED")
	return &redacted
}
