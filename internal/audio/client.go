// Package audio is the client for the local AudioCraft backend that renders
// music and sound effect snippets for the Audio Alchemy step.
package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"pegasusedge/internal/logging"
)

// DefaultDuration is the music snippet length in seconds when the caller
// does not specify one. Matches the backend's default.
const DefaultDuration = 8

// MaxDuration is the longest snippet the backend's model can render.
const MaxDuration = 30

// Client talks to the AudioCraft backend. Safe for concurrent use; the
// Audio Alchemy step fires several generations at once.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Model inference on CPU can take a while per snippet.
			Timeout: 5 * time.Minute,
		},
	}
}

// GenerateMusic renders a music snippet for the prompt. duration is in
// seconds; out-of-range values are clamped to the backend's limits.
func (c *Client) GenerateMusic(ctx context.Context, prompt string, duration int) (*MusicAsset, error) {
	resp, err := c.post(ctx, "/generate_music/", prompt, clampDuration(duration))
	if err != nil {
		return nil, err
	}
	return &MusicAsset{
		ID:          uuid.NewString(),
		Description: resp.Prompt,
		Type:        TypeMusic,
		AudioURL:    c.resolveURL(resp.AudioURL),
		Duration:    resp.Duration,
	}, nil
}

// GenerateJingle renders a short jingle. Jingles are music assets with a
// shorter target duration.
func (c *Client) GenerateJingle(ctx context.Context, prompt string) (*MusicAsset, error) {
	asset, err := c.GenerateMusic(ctx, prompt, 5)
	if err != nil {
		return nil, err
	}
	asset.Type = TypeJingle
	return asset, nil
}

// GenerateSfx renders a sound effect for the prompt.
func (c *Client) GenerateSfx(ctx context.Context, prompt string) (*SfxAsset, error) {
	resp, err := c.post(ctx, "/generate_sfx/", prompt, 0)
	if err != nil {
		return nil, err
	}
	return &SfxAsset{
		ID:          uuid.NewString(),
		Description: resp.Prompt,
		Type:        TypeSfx,
		AudioURL:    c.resolveURL(resp.AudioURL),
	}, nil
}

// GenerateVoiceover produces a placeholder voiceover asset. The backend
// does not synthesize speech yet.
// TODO: switch to a real synthesis endpoint once the backend grows one.
func (c *Client) GenerateVoiceover(_ context.Context, text, voiceStyle, emotion string) (*VoiceoverAsset, error) {
	if voiceStyle == "" {
		voiceStyle = "neutral"
	}
	preview := text
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	return &VoiceoverAsset{
		ID:          uuid.NewString(),
		Description: fmt.Sprintf("Voiceover for: %q", preview),
		Type:        TypeVoiceover,
		Text:        text,
		VoiceUsed:   voiceStyle,
		Emotion:     emotion,
	}, nil
}

// Health checks that the backend is up and its model is loaded.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("audio backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("audio backend unhealthy (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// post performs one generation round trip. Errors carry the backend's
// textual body so the UI can show what went wrong (e.g. CUDA OOM).
func (c *Client) post(ctx context.Context, endpoint, prompt string, duration int) (*generationResponse, error) {
	startTime := time.Now()
	logging.Audio("POST %s prompt=%q duration=%d", endpoint, prompt, duration)

	reqBody := generationRequest{Prompt: prompt, Duration: duration}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.AudioError("POST %s failed after %v: %v", endpoint, time.Since(startTime), err)
		return nil, fmt.Errorf("audio backend request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.AudioError("POST %s returned status %d: %s", endpoint, resp.StatusCode, string(body))
		return nil, fmt.Errorf("audio backend failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var genResp generationResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	logging.Audio("POST %s completed in %v file=%s", endpoint, time.Since(startTime), genResp.Filename)
	return &genResp, nil
}

// resolveURL turns the backend's relative audio path into an absolute URL.
func (c *Client) resolveURL(audioURL string) string {
	if audioURL == "" || strings.Contains(audioURL, "://") {
		return audioURL
	}
	if !strings.HasPrefix(audioURL, "/") {
		audioURL = "/" + audioURL
	}
	return c.baseURL + audioURL
}

func clampDuration(duration int) int {
	if duration <= 0 {
		return DefaultDuration
	}
	if duration > MaxDuration {
		return MaxDuration
	}
	return duration
}
