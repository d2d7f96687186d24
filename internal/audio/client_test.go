package audio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateMusic(t *testing.T) {
	var gotReq generationRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate_music/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(generationResponse{
			AudioURL: "/audio_files/musicgen_abc.wav",
			Filename: "musicgen_abc.wav",
			Prompt:   gotReq.Prompt,
			Duration: 8.04,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	asset, err := client.GenerateMusic(context.Background(), "upbeat lofi for cooking videos", 8)
	if err != nil {
		t.Fatalf("GenerateMusic failed: %v", err)
	}

	if gotReq.Prompt != "upbeat lofi for cooking videos" || gotReq.Duration != 8 {
		t.Errorf("request = %+v", gotReq)
	}
	if asset.ID == "" {
		t.Error("asset should get an ID")
	}
	if asset.Type != TypeMusic {
		t.Errorf("type = %q", asset.Type)
	}
	if asset.AudioURL != server.URL+"/audio_files/musicgen_abc.wav" {
		t.Errorf("relative audio_url not resolved: %q", asset.AudioURL)
	}
	if asset.Duration != 8.04 {
		t.Errorf("duration = %v", asset.Duration)
	}
}

func TestGenerateMusicClampsDuration(t *testing.T) {
	var durations []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generationRequest
		json.NewDecoder(r.Body).Decode(&req)
		durations = append(durations, req.Duration)
		json.NewEncoder(w).Encode(generationResponse{AudioURL: "/a.wav", Prompt: req.Prompt})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	for _, d := range []int{0, -5, 120} {
		if _, err := client.GenerateMusic(context.Background(), "p", d); err != nil {
			t.Fatalf("GenerateMusic(%d) failed: %v", d, err)
		}
	}

	want := []int{DefaultDuration, DefaultDuration, MaxDuration}
	for i := range want {
		if durations[i] != want[i] {
			t.Errorf("duration[%d] = %d, want %d", i, durations[i], want[i])
		}
	}
}

func TestGenerateJingle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generationResponse{AudioURL: "/j.wav", Prompt: "jingle", Duration: 5})
	}))
	defer server.Close()

	asset, err := NewClient(server.URL).GenerateJingle(context.Background(), "catchy intro jingle")
	if err != nil {
		t.Fatalf("GenerateJingle failed: %v", err)
	}
	if asset.Type != TypeJingle {
		t.Errorf("type = %q, want jingle", asset.Type)
	}
}

func TestGenerateSfx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate_sfx/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(generationResponse{
			AudioURL: "/audio_files/sfx.wav",
			Prompt:   "whoosh",
		})
	}))
	defer server.Close()

	asset, err := NewClient(server.URL).GenerateSfx(context.Background(), "whoosh")
	if err != nil {
		t.Fatalf("GenerateSfx failed: %v", err)
	}
	if asset.Type != TypeSfx || asset.Description != "whoosh" {
		t.Errorf("asset = %+v", asset)
	}
}

func TestErrorBodySurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "CUDA out of memory. Try a shorter duration."}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).GenerateMusic(context.Background(), "p", 8)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "CUDA out of memory") {
		t.Errorf("backend error body not surfaced: %v", err)
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("status code missing from error: %v", err)
	}
}

func TestGenerateVoiceoverPlaceholder(t *testing.T) {
	client := NewClient("http://unused.invalid")
	asset, err := client.GenerateVoiceover(context.Background(), "Welcome to the channel, everyone! Today we explore sourdough.", "", "warm")
	if err != nil {
		t.Fatalf("GenerateVoiceover failed: %v", err)
	}
	if asset.Type != TypeVoiceover {
		t.Errorf("type = %q", asset.Type)
	}
	if asset.VoiceUsed != "neutral" {
		t.Errorf("default voice = %q", asset.VoiceUsed)
	}
	if !strings.Contains(asset.Description, "...") {
		t.Errorf("long text should be truncated in description: %q", asset.Description)
	}
}

func TestHealth(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"status": "ok", "model_loaded": true}`))
	}))
	defer healthy.Close()

	if err := NewClient(healthy.URL).Health(context.Background()); err != nil {
		t.Errorf("Health on healthy backend failed: %v", err)
	}

	unhealthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer unhealthy.Close()

	if err := NewClient(unhealthy.URL).Health(context.Background()); err == nil {
		t.Error("Health on unhealthy backend should fail")
	}
}
