// Package gemini wraps the Google Gemini generateContent REST API for the
// generation modalities Pegasus Edge uses: one-shot text, streaming chat,
// search-grounded answers and image generation.
//
// Generation calls are never retried automatically. A failed call surfaces
// its error to the caller and the user decides whether to try again.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pegasusedge/internal/logging"
)

// Client talks to the Gemini API. Safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	imageModel string
	httpClient *http.Client
}

// NewClient creates a client with default configuration.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(DefaultClientConfig(apiKey))
}

// NewClientWithConfig creates a client with custom configuration.
func NewClientWithConfig(config ClientConfig) *Client {
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	imageModel := strings.TrimSpace(config.ImageModel)
	if imageModel == "" {
		imageModel = "imagen-3.0-generate-002"
	}
	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Client{
		apiKey:     config.APIKey,
		baseURL:    baseURL,
		model:      model,
		imageModel: imageModel,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Model returns the text generation model in use.
func (c *Client) Model() string {
	return c.model
}

// GenerateText sends a single prompt with an optional system instruction
// and returns the generated text.
func (c *Client) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	resp, err := c.generate(ctx, c.buildRequest(systemInstruction, prompt, false))
	if err != nil {
		return "", err
	}
	text := candidateText(resp)
	if text == "" {
		return "", fmt.Errorf("no completion returned")
	}
	return text, nil
}

// GenerateWithSearch answers a query with Google Search grounding enabled
// and returns the answer text plus the cited web sources. Sources missing
// a URI are dropped; a missing title falls back to the URI.
func (c *Client) GenerateWithSearch(ctx context.Context, query string) (*Result, error) {
	resp, err := c.generate(ctx, c.buildRequest("", query, true))
	if err != nil {
		return nil, err
	}

	result := &Result{Text: candidateText(resp)}
	if result.Text == "" {
		return nil, fmt.Errorf("no completion returned")
	}

	result.Sources = extractSources(resp)
	logging.Gemini("GenerateWithSearch: response_len=%d sources=%d", len(result.Text), len(result.Sources))
	return result, nil
}

func (c *Client) buildRequest(systemInstruction, prompt string, withSearch bool) *geminiRequest {
	req := &geminiRequest{
		Contents: []geminiContent{
			{
				Role:  "user",
				Parts: []geminiPart{{Text: prompt}},
			},
		},
		GenerationConfig: &geminiGenerationConfig{
			Temperature: 1.0,
		},
	}
	if systemInstruction != "" {
		req.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: systemInstruction}},
		}
	}
	if withSearch {
		req.Tools = []geminiTool{{GoogleSearch: &geminiGoogleSearch{}}}
	}
	return req
}

// generate performs one generateContent round trip. No retry loop.
func (c *Client) generate(ctx context.Context, reqBody *geminiRequest) (*geminiResponse, error) {
	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()

	if c.apiKey == "" {
		logging.GeminiError("generate: API key not configured")
		return nil, fmt.Errorf("API key not configured")
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.GeminiError("generate: request failed after %v: %v", time.Since(startTime), err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logging.GeminiError("generate: API returned status %d: %s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if geminiResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", geminiResp.Error.Message)
	}

	logging.Gemini("generate: completed in %v model=%s", time.Since(startTime), c.model)
	return &geminiResp, nil
}

// candidateText joins the text parts of the first candidate.
func candidateText(resp *geminiResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		result.WriteString(part.Text)
	}
	return strings.TrimSpace(result.String())
}

// extractSources collects the grounding citations of the first candidate.
// Chunks without a web URI are skipped.
func extractSources(resp *geminiResponse) []Source {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var sources []Source
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = chunk.Web.URI
		}
		sources = append(sources, Source{URI: chunk.Web.URI, Title: title})
	}
	return sources
}
