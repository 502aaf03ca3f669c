package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/localbizintel/backend/internal/config"
)

func embeddingTestConfig(endpoint string) config.EmbeddingConfig {
	return config.EmbeddingConfig{
		Endpoint:       endpoint,
		APIKey:         "test-key",
		Model:          "text-embedding-3-small",
		Dimensions:     4,
		TimeoutSeconds: 5,
	}
}

func TestHTTPClientSendsProviderRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected Content-Type %q", got)
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "text-embedding-3-small" || req.Dimensions != 4 {
			t.Errorf("unexpected request fields: %+v", req)
		}
		if len(req.Input) != 2 || req.Input[0] != "doc-a" {
			t.Errorf("unexpected inputs: %v", req.Input)
		}

		fmt.Fprint(w, `{"data":[
			{"index":1,"embedding":[1,1,1,1]},
			{"index":0,"embedding":[0,0,0,0]}
		]}`)
	}))
	defer server.Close()

	client := NewHTTPClient(embeddingTestConfig(server.URL))
	vectors, err := client.EmbedTexts(context.Background(), []string{"doc-a", "doc-b"})
	if err != nil {
		t.Fatalf("EmbedTexts returned error: %v", err)
	}

	// Out-of-order items are restored by index.
	if vectors[0][0] != 0 || vectors[1][0] != 1 {
		t.Errorf("vectors not reordered by index: %v", vectors)
	}
}

func TestHTTPClientProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewHTTPClient(embeddingTestConfig(server.URL))
	_, err := client.EmbedTexts(context.Background(), []string{"doc-a"})
	if err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected the status and body in the error, got %v", err)
	}
}

func TestHTTPClientVectorCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[{"index":0,"embedding":[0,0,0,0]}]}`)
	}))
	defer server.Close()

	client := NewHTTPClient(embeddingTestConfig(server.URL))
	if _, err := client.EmbedTexts(context.Background(), []string{"doc-a", "doc-b"}); err == nil {
		t.Fatal("expected an error when the provider drops vectors")
	}
}

func TestHTTPClientEmptyBatch(t *testing.T) {
	client := NewHTTPClient(embeddingTestConfig("http://unused"))
	vectors, err := client.EmbedTexts(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedTexts returned error: %v", err)
	}
	if len(vectors) != 0 {
		t.Errorf("expected an empty result, got %v", vectors)
	}
}

func TestNewFromConfigSelectsLocalWithoutKey(t *testing.T) {
	cfg := embeddingTestConfig("http://unused")
	cfg.APIKey = ""
	if _, ok := NewFromConfig(cfg).(*LocalClient); !ok {
		t.Fatal("expected the local client when no API key is configured")
	}

	cfg.APIKey = "key"
	if _, ok := NewFromConfig(cfg).(*HTTPClient); !ok {
		t.Fatal("expected the provider client when an API key is configured")
	}
}
