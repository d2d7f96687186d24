package gemini

import (
	"bufio"
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

// StreamFunc receives incremental chat output. It is called once per text
// chunk with final=false, then exactly once with final=true, an empty chunk
// and any grounding sources collected over the whole response.
type StreamFunc func(chunk string, final bool, sources []Source)

// Chat is a multi-turn conversation with history. Not safe for concurrent
// use; a chat belongs to one UI session.
type Chat struct {
	client            *Client
	systemInstruction string
	history           []geminiContent
}

// NewChat starts a conversation with the given persona/system instruction.
func (c *Client) NewChat(systemInstruction string) *Chat {
	return &Chat{
		client:            c,
		systemInstruction: systemInstruction,
	}
}

// History returns the number of turns exchanged so far.
func (ch *Chat) History() int {
	return len(ch.history)
}

// SendStream sends a user message and streams the model's reply through fn.
// The user turn and the complete model turn are appended to history only
// after the stream finishes successfully, so a failed send can be retried
// without duplicating turns.
func (ch *Chat) SendStream(ctx context.Context, message string, fn StreamFunc) error {
	c := ch.client

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()

	if c.apiKey == "" {
		logging.GeminiError("SendStream: API key not configured")
		return fmt.Errorf("API key not configured")
	}

	userTurn := geminiContent{
		Role:  "user",
		Parts: []geminiPart{{Text: message}},
	}

	reqBody := geminiRequest{
		Contents: append(append([]geminiContent{}, ch.history...), userTurn),
		GenerationConfig: &geminiGenerationConfig{
			Temperature: 1.0,
		},
	}
	if ch.systemInstruction != "" {
		reqBody.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: ch.systemInstruction}},
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse&key=%s", c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.GeminiError("SendStream: request failed after %v: %v", time.Since(startTime), err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		logging.GeminiError("SendStream: API returned status %d: %s", resp.StatusCode, string(body))
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var full strings.Builder
	var sources []Source
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if chunk.Error != nil {
			return fmt.Errorf("API error: %s", chunk.Error.Message)
		}
		if len(chunk.Candidates) == 0 {
			continue
		}

		for _, src := range extractSources(&chunk) {
			if !seen[src.URI] {
				seen[src.URI] = true
				sources = append(sources, src)
			}
		}

		for _, part := range chunk.Candidates[0].Content.Parts {
			if part.Text == "" {
				continue
			}
			full.WriteString(part.Text)
			fn(part.Text, false, nil)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	if err := scanner.Err(); err != nil {
		logging.GeminiError("SendStream: stream error after %v: %v", time.Since(startTime), err)
		return fmt.Errorf("stream error: %w", err)
	}

	ch.history = append(ch.history, userTurn, geminiContent{
		Role:  "model",
		Parts: []geminiPart{{Text: full.String()}},
	})

	logging.Gemini("SendStream: completed in %v turns=%d response_len=%d sources=%d",
		time.Since(startTime), len(ch.history), full.Len(), len(sources))

	fn("", true, sources)
	return nil
}
