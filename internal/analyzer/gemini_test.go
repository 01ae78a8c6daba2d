package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func geminiOK(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient("", "gemini-1.5-pro", 0.2); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}

func TestGenerateJSONPostsPromptAndDecodesCandidate(t *testing.T) {
	var gotPath string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		geminiOK(`{"concepts": []}`)(w, r)
	}))
	defer srv.Close()

	client, err := NewClient("test-key", "gemini-1.5-pro", 0.2, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	raw, err := client.GenerateJSON(context.Background(), "extract concepts please")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(raw) != `{"concepts": []}` {
		t.Fatalf("unexpected payload: %s", raw)
	}
	if gotPath != "/v1beta/models/gemini-1.5-pro:generateContent" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "extract concepts please" {
		t.Fatalf("prompt not forwarded: %+v", gotBody)
	}
	if gotBody.GenerationConfig == nil || gotBody.GenerationConfig.ResponseMIMEType != "application/json" {
		t.Fatalf("json response mime type not requested: %+v", gotBody.GenerationConfig)
	}
}

func TestGenerateJSONSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "quota exhausted", "status": "RESOURCE_EXHAUSTED"},
		})
	}))
	defer srv.Close()

	client, err := NewClient("test-key", "gemini-1.5-pro", 0.2, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.GenerateJSON(context.Background(), "p"); err == nil {
		t.Fatalf("expected error from API failure")
	}
}

func TestGenerateJSONRejectsEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer srv.Close()

	client, err := NewClient("test-key", "gemini-1.5-pro", 0.2, WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.GenerateJSON(context.Background(), "p"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
