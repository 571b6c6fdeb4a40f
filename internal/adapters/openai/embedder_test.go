package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lmonteir/handyspeech/internal/config"
)

func testEmbedderConfig(url string) config.EmbedderConfig {
	return config.EmbedderConfig{
		BaseURL:     url,
		Model:       "text-embedding-3-small",
		TimeoutSecs: 5,
		BatchSize:   2,
	}
}

func embeddingsHandler(t *testing.T, calls *int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*calls++

		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req struct {
			Input []string `json:"input"`
			Model string   `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		type item struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		}
		resp := struct {
			Data []item `json:"data"`
		}{}
		for i := range req.Input {
			resp.Data = append(resp.Data, item{Index: i, Embedding: []float64{float64(len(req.Input[i])), 1}})
		}

		json.NewEncoder(w).Encode(resp)
	}
}

func TestEmbedBatch_SplitsIntoBatches(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(embeddingsHandler(t, &calls))
	defer srv.Close()

	e := NewEmbedder(testEmbedderConfig(srv.URL))

	vectors, err := e.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	if err != nil {
		t.Fatalf("EmbedBatch() error = %v", err)
	}

	if len(vectors) != 3 {
		t.Fatalf("vector count = %d, want 3", len(vectors))
	}
	// Batch size 2 means two requests for three inputs
	if calls != 2 {
		t.Errorf("request count = %d, want 2", calls)
	}
	if vectors[2][0] != 3 {
		t.Errorf("vectors out of order: vectors[2] = %v", vectors[2])
	}
}

func TestEmbedBatch_Empty(t *testing.T) {
	e := NewEmbedder(testEmbedderConfig("http://127.0.0.1:1"))

	vectors, err := e.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch(nil) error = %v", err)
	}
	if vectors != nil {
		t.Errorf("EmbedBatch(nil) = %v, want nil", vectors)
	}
}

func TestEmbed_RetriesOnServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		embeddingsHandler(t, new(int))(w, r)
	}))
	defer srv.Close()

	e := NewEmbedder(testEmbedderConfig(srv.URL))

	vec, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("vector length = %d, want 2", len(vec))
	}
	if calls != 2 {
		t.Errorf("request count = %d, want 2 (one failure, one retry)", calls)
	}
}

func TestEmbed_ClientErrorDoesNotRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	e := NewEmbedder(testEmbedderConfig(srv.URL))

	if _, err := e.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("Embed() succeeded against 401 response")
	}
	if calls != 1 {
		t.Errorf("request count = %d, want 1", calls)
	}
}

func TestEmbed_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	e := NewEmbedder(testEmbedderConfig(srv.URL))

	if _, err := e.Embed(ctx, "hello"); err == nil {
		t.Fatal("Embed() succeeded with cancelled context")
	}
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float64{1}}},
		})
	}))
	defer srv.Close()

	e := NewEmbedder(testEmbedderConfig(srv.URL))

	if _, err := e.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("EmbedBatch() accepted short response")
	}
}
