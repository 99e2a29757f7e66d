package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charlabot/charla/llm"
)

func TestChatMapsRolesAndUsage(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/v1beta/models/gemini-2.0-flash:generateContent") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "KEY" {
			t.Fatalf("missing api key in query")
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "¡Hola"}, {"text": " Ana!"}]}}],
			"usageMetadata": {"promptTokenCount": 12, "candidatesTokenCount": 5, "totalTokenCount": 17}
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "KEY", 0)
	res, err := c.Chat(context.Background(), llm.Request{
		Model: "gemini-2.0-flash",
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "Eres un asistente."},
			{Role: llm.RoleUser, Content: "hola"},
			{Role: llm.RoleAssistant, Content: "buenas"},
			{Role: llm.RoleUser, Content: "quién eres"},
		},
		ForceJSON: true,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	if res.Text != "¡Hola Ana!" {
		t.Fatalf("Text = %q", res.Text)
	}
	if res.Usage.InputTokens != 12 || res.Usage.OutputTokens != 5 || res.Usage.TotalTokens != 17 {
		t.Fatalf("unexpected usage: %+v", res.Usage)
	}

	if got.SystemInstruction == nil || got.SystemInstruction.Parts[0].Text != "Eres un asistente." {
		t.Fatalf("system message should become systemInstruction: %+v", got.SystemInstruction)
	}
	if len(got.Contents) != 3 {
		t.Fatalf("contents length = %d, want 3", len(got.Contents))
	}
	if got.Contents[0].Role != "user" || got.Contents[1].Role != "model" || got.Contents[2].Role != "user" {
		t.Fatalf("unexpected roles: %+v", got.Contents)
	}
	if got.GenerationConfig.ResponseMimeType != "application/json" {
		t.Fatalf("ForceJSON should set responseMimeType, got %q", got.GenerationConfig.ResponseMimeType)
	}
}

func TestChatAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "BAD", 0)
	_, err := c.Chat(context.Background(), llm.Request{Model: "gemini-2.0-flash", Messages: []llm.Message{{Role: llm.RoleUser, Content: "hola"}}})
	if err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("expected API error message, got %v", err)
	}
}

func TestChatEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "KEY", 0)
	_, err := c.Chat(context.Background(), llm.Request{Model: "gemini-2.0-flash", Messages: []llm.Message{{Role: llm.RoleUser, Content: "hola"}}})
	if err == nil || !strings.Contains(err.Error(), "empty candidates") {
		t.Fatalf("expected empty-candidates error, got %v", err)
	}
}
