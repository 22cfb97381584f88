package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestGeminiClient(baseURL string) *GeminiClient {
	return &GeminiClient{
		apiKey:  "test-key",
		baseURL: baseURL,
		model:   "gemini-2.5-flash",
		httpClient: &http.Client{
			Timeout: 2 * time.Second,
		},
	}
}

func TestGeminiClientSendsSystemInstructionAndTemperature(t *testing.T) {
	t.Parallel()

	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if !strings.Contains(r.URL.Path, "models/gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"respuesta"}]}}]}`))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	answer, err := client.GenerateContent(context.Background(), AIRequest{
		SystemPrompt: "Eres un coach.",
		Turns: []ConversationTurn{
			{Role: "user", Text: "hola"},
			{Role: "model", Text: "hola, ¿qué tal?"},
			{Role: "", Text: "sin rol"},
		},
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}
	if answer != "respuesta" {
		t.Fatalf("unexpected answer: %q", answer)
	}

	generationConfig, _ := captured["generationConfig"].(map[string]any)
	if generationConfig["temperature"] != 0.7 {
		t.Fatalf("expected temperature 0.7 forwarded, got %v", generationConfig["temperature"])
	}
	if _, ok := captured["system_instruction"]; !ok {
		t.Fatalf("expected system_instruction in payload")
	}
	contents, _ := captured["contents"].([]any)
	if len(contents) != 3 {
		t.Fatalf("expected 3 turns forwarded, got %d", len(contents))
	}
	third, _ := contents[2].(map[string]any)
	if third["role"] != "user" {
		t.Fatalf("expected empty turn role defaulted to user, got %v", third["role"])
	}
}

func TestGeminiClientJoinsCandidateParts(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"primera"},{"text":"segunda"}]}}]}`))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	answer, err := client.GenerateContent(context.Background(), AIRequest{
		Turns: []ConversationTurn{{Role: "user", Text: "hola"}},
	})
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}
	if answer != "primera\nsegunda" {
		t.Fatalf("unexpected joined answer: %q", answer)
	}
}

func TestGeminiClientSurfacesUpstreamErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	_, err := client.GenerateContent(context.Background(), AIRequest{
		Turns: []ConversationTurn{{Role: "user", Text: "hola"}},
	})
	if err == nil {
		t.Fatalf("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}

func TestGeminiClientRejectsEmptyAnswer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  "}]}}]}`))
	}))
	defer server.Close()

	client := newTestGeminiClient(server.URL)
	if _, err := client.GenerateContent(context.Background(), AIRequest{
		Turns: []ConversationTurn{{Role: "user", Text: "hola"}},
	}); err == nil {
		t.Fatalf("expected error for blank answer")
	}
}

func TestGeminiClientRequiresConfiguration(t *testing.T) {
	t.Parallel()

	client := &GeminiClient{httpClient: http.DefaultClient}
	if _, err := client.GenerateContent(context.Background(), AIRequest{
		Turns: []ConversationTurn{{Role: "user", Text: "hola"}},
	}); err == nil {
		t.Fatalf("expected error when api key missing")
	}
}
