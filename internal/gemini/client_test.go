package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClientWithConfig(ClientConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gemini-2.5-flash",
		Timeout: 5 * time.Second,
	})
	return client, server
}

func textResponse(text string) string {
	resp := map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]string{{"text": text}},
				},
			},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestGenerateText(t *testing.T) {
	var gotPath, gotSystem string
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.SystemInstruction != nil {
			gotSystem = req.SystemInstruction.Parts[0].Text
		}
		if len(req.Contents) != 1 || req.Contents[0].Role != "user" {
			t.Errorf("unexpected contents: %+v", req.Contents)
		}
		if len(req.Tools) != 0 {
			t.Errorf("plain text request should carry no tools")
		}

		w.Write([]byte(textResponse("five video titles")))
	})

	got, err := client.GenerateText(context.Background(), "You are a creative strategist.", "titles for a cooking channel")
	if err != nil {
		t.Fatalf("GenerateText failed: %v", err)
	}
	if got != "five video titles" {
		t.Errorf("text = %q", got)
	}
	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotSystem != "You are a creative strategist." {
		t.Errorf("system instruction = %q", gotSystem)
	}
}

func TestGenerateTextNoAPIKey(t *testing.T) {
	client := NewClient("")
	if _, err := client.GenerateText(context.Background(), "", "p"); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestGenerateTextHTTPErrorNoRetry(t *testing.T) {
	var calls int32
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	})

	_, err := client.GenerateText(context.Background(), "", "p")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error should carry status: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected exactly 1 request, got %d", n)
	}
}

func TestGenerateTextAPIErrorBody(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": {"code": 400, "message": "invalid argument"}}`))
	})

	_, err := client.GenerateText(context.Background(), "", "p")
	if err == nil || !strings.Contains(err.Error(), "invalid argument") {
		t.Errorf("expected API error message, got: %v", err)
	}
}

func TestGenerateTextEmptyCandidates(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	})

	if _, err := client.GenerateText(context.Background(), "", "p"); err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestGenerateWithSearch(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if len(req.Tools) != 1 || req.Tools[0].GoogleSearch == nil {
			t.Errorf("expected googleSearch tool, got %+v", req.Tools)
		}

		w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "latest trends"}]},
				"groundingMetadata": {
					"groundingChunks": [
						{"web": {"uri": "https://a.example", "title": "Source A"}},
						{"web": {"uri": "https://b.example"}},
						{"web": {"uri": "", "title": "no uri"}},
						{}
					]
				}
			}]
		}`))
	})

	result, err := client.GenerateWithSearch(context.Background(), "what is trending")
	if err != nil {
		t.Fatalf("GenerateWithSearch failed: %v", err)
	}
	if result.Text != "latest trends" {
		t.Errorf("text = %q", result.Text)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("sources = %d, want 2 (missing-uri chunks dropped)", len(result.Sources))
	}
	if result.Sources[0].Title != "Source A" {
		t.Errorf("title = %q", result.Sources[0].Title)
	}
	if result.Sources[1].Title != "https://b.example" {
		t.Errorf("missing title should fall back to URI, got %q", result.Sources[1].Title)
	}
}

func TestChatSendStream(t *testing.T) {
	var turns [][]geminiContent
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":streamGenerateContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("alt") != "sse" {
			t.Errorf("expected alt=sse, got %q", r.URL.RawQuery)
		}

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		turns = append(turns, req.Contents)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: " + textResponse("Hello ") + "\n\n"))
		w.Write([]byte("data: " + textResponse("creator!") + "\n\n"))
		w.Write([]byte("data: {\"candidates\": [{\"content\": {\"parts\": []}, \"groundingMetadata\": {\"groundingChunks\": [{\"web\": {\"uri\": \"https://s.example\", \"title\": \"S\"}}]}}]}\n\n"))
	})

	chat := client.NewChat("You are the AI Creative Consultant.")

	var chunks []string
	var finalSources []Source
	finals := 0
	err := chat.SendStream(context.Background(), "hi", func(chunk string, final bool, sources []Source) {
		if final {
			finals++
			finalSources = sources
			return
		}
		chunks = append(chunks, chunk)
	})
	if err != nil {
		t.Fatalf("SendStream failed: %v", err)
	}

	if strings.Join(chunks, "") != "Hello creator!" {
		t.Errorf("chunks = %v", chunks)
	}
	if finals != 1 {
		t.Errorf("final callback count = %d, want 1", finals)
	}
	if len(finalSources) != 1 || finalSources[0].URI != "https://s.example" {
		t.Errorf("final sources = %+v", finalSources)
	}
	if chat.History() != 2 {
		t.Errorf("history = %d turns, want 2", chat.History())
	}

	// Second send carries the prior turns.
	if err := chat.SendStream(context.Background(), "more", func(string, bool, []Source) {}); err != nil {
		t.Fatalf("second SendStream failed: %v", err)
	}
	if len(turns) != 2 || len(turns[1]) != 3 {
		t.Errorf("second request should carry 3 contents (2 history + 1 new), got %d", len(turns[1]))
	}
}

func TestChatSendStreamErrorKeepsHistoryClean(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	})

	chat := client.NewChat("persona")
	err := chat.SendStream(context.Background(), "hi", func(string, bool, []Source) {
		t.Error("callback should not fire on failure")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if chat.History() != 0 {
		t.Errorf("failed send should not record turns, history = %d", chat.History())
	}
}
