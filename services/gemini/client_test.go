package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestGenerateContentRelaysMessages(t *testing.T) {
	var gotPath string
	var gotReq generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"role":  "model",
						"parts": []map[string]string{{"text": "Hello "}, {"text": "there"}},
					},
					"finishReason": "STOP",
				},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "gemini-1.5-flash"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	reply, err := client.GenerateContent(context.Background(), []Message{
		{Role: "user", Text: "Hi"},
	})
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}

	if reply != "Hello there" {
		t.Errorf("expected concatenated parts, got %q", reply)
	}
	if !strings.Contains(gotPath, "gemini-1.5-flash") {
		t.Errorf("model missing from path: %s", gotPath)
	}
	if len(gotReq.Contents) != 1 || gotReq.Contents[0].Parts[0].Text != "Hi" {
		t.Errorf("message not relayed: %+v", gotReq)
	}
}

func TestGenerateContentSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "bad-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.GenerateContent(context.Background(), []Message{{Role: "user", Text: "Hi"}})
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("status code missing from error: %v", err)
	}
}
