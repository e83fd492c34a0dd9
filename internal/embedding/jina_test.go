package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingsItem struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingsResponse struct {
	Object string           `json:"object"`
	Data   []embeddingsItem `json:"data"`
	Model  string           `json:"model"`
}

func vectorFor(dim, seed int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(seed)
	}
	return v
}

func newTestClient(t *testing.T, handler http.HandlerFunc, dims, maxRetries int) *JinaClient {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	c, err := NewJinaClient(JinaConfig{
		BaseURL:           ts.URL + "/v1",
		APIKey:            "test-key",
		Model:             "jina-embeddings-v2-base-en",
		Dimensions:        dims,
		MaxRetries:        maxRetries,
		RetryDelay:        time.Millisecond,
		RequestsPerSecond: 1000,
	}, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestJinaClient_OrderPreserved(t *testing.T) {
	const dims = 4
	handler := func(w http.ResponseWriter, r *http.Request) {
		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		// Answer with items deliberately out of order; the client must
		// restore input order via the index field.
		resp := embeddingsResponse{Object: "list", Model: req.Model}
		for i := len(req.Input) - 1; i >= 0; i-- {
			resp.Data = append(resp.Data, embeddingsItem{
				Object:    "embedding",
				Embedding: vectorFor(dims, i),
				Index:     i,
			})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}

	c := newTestClient(t, handler, dims, 0)
	texts := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	vectors, err := c.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if v[0] != float32(i) {
			t.Errorf("vectors[%d] corresponds to input %v, want %d", i, v[0], i)
		}
	}
}

func TestJinaClient_CountMismatchFails(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		resp := embeddingsResponse{Object: "list", Data: []embeddingsItem{
			{Object: "embedding", Embedding: vectorFor(4, 0), Index: 0},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}
	c := newTestClient(t, handler, 4, 0)
	if _, err := c.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error when provider returns fewer embeddings than inputs")
	}
}

func TestJinaClient_DimensionMismatchFails(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		resp := embeddingsResponse{Object: "list", Data: []embeddingsItem{
			{Object: "embedding", Embedding: vectorFor(3, 0), Index: 0},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}
	c := newTestClient(t, handler, 4, 0)
	if _, err := c.EmbedBatch(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error when provider returns wrong dimension")
	}
}

func TestJinaClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
			return
		}
		resp := embeddingsResponse{Object: "list", Data: []embeddingsItem{
			{Object: "embedding", Embedding: vectorFor(4, 7), Index: 0},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}
	c := newTestClient(t, handler, 4, 3)
	vectors, err := c.EmbedBatch(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("made %d calls, want 3", calls.Load())
	}
	if vectors[0][0] != 7 {
		t.Errorf("unexpected vector %v", vectors[0])
	}
}

func TestJinaClient_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}
	c := newTestClient(t, handler, 4, 3)
	if _, err := c.EmbedBatch(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected auth error")
	}
	if calls.Load() != 1 {
		t.Errorf("made %d calls, want 1 (no retry on auth failure)", calls.Load())
	}
}

func TestJinaClient_ExhaustedRetriesFail(t *testing.T) {
	var calls atomic.Int32
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}
	c := newTestClient(t, handler, 4, 2)
	if _, err := c.EmbedBatch(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected failure after exhausting retries")
	}
	if calls.Load() != 3 {
		t.Errorf("made %d calls, want 3 (initial + 2 retries)", calls.Load())
	}
}

func TestJinaClient_EmptyInput(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for empty input")
	}, 4, 0)
	vectors, err := c.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 0 {
		t.Errorf("got %d vectors for empty input", len(vectors))
	}
}

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	a1, _ := e.Embed(context.Background(), "same text")
	a2, _ := e.Embed(context.Background(), "same text")
	b, _ := e.Embed(context.Background(), "different text")
	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatal("same text must embed identically")
		}
	}
	same := true
	for i := range a1 {
		if a1[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts should embed differently")
	}
	if e.Dimensions() != 8 {
		t.Errorf("Dimensions = %d", e.Dimensions())
	}
}
