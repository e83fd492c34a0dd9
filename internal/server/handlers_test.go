package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/vanihb04/voosh-chatbot-backend/internal/config"
	"github.com/vanihb04/voosh-chatbot-backend/internal/embedding"
	"github.com/vanihb04/voosh-chatbot-backend/internal/ingest"
	"github.com/vanihb04/voosh-chatbot-backend/internal/models"
	"github.com/vanihb04/voosh-chatbot-backend/internal/search"
	"github.com/vanihb04/voosh-chatbot-backend/internal/vectorstore"
)

type stubFetcher struct {
	articles []models.Article
}

func (f *stubFetcher) FetchAll(ctx context.Context) []models.Article { return f.articles }
func (f *stubFetcher) SourceCount() int                              { return 1 }

type stubStore struct {
	points    map[uint64]vectorstore.Point
	deleted   bool
	ensureErr error
}

func newStubStore() *stubStore {
	return &stubStore{points: make(map[uint64]vectorstore.Point)}
}

func (s *stubStore) EnsureCollection(ctx context.Context, meta models.CollectionMetadata) error {
	return s.ensureErr
}

func (s *stubStore) Upsert(ctx context.Context, points []vectorstore.Point, wait bool) error {
	for _, p := range points {
		s.points[p.ID] = p
	}
	return nil
}

func (s *stubStore) Search(ctx context.Context, vector []float32, limit int, withPayload bool) ([]models.SearchResult, error) {
	results := []models.SearchResult{
		{Score: 0.95, Payload: models.ChunkPayload{Text: "relevant chunk", Title: "A title", ChunkIndex: 1}},
	}
	if limit < len(results) {
		results = results[:limit]
	}
	return results, nil
}

func (s *stubStore) Count(ctx context.Context, exact bool) (uint64, error) {
	return uint64(len(s.points)), nil
}

func (s *stubStore) DeleteCollection(ctx context.Context) error {
	s.deleted = true
	s.points = make(map[uint64]vectorstore.Point)
	return nil
}

func (s *stubStore) Info(ctx context.Context) (*vectorstore.CollectionInfo, error) {
	return &vectorstore.CollectionInfo{Status: "green", PointsCount: uint64(len(s.points)), VectorSize: 8, Distance: "Cosine"}, nil
}

func newTestServer(t *testing.T, store vectorstore.Store, articles []models.Article) *Server {
	t.Helper()
	logger := zap.NewNop()
	embedder := embedding.NewMockEmbedder(8)
	meta := models.CollectionMetadata{Name: "news-articles", Dimension: 8, Distance: models.DistanceCosine}
	pipeline, err := ingest.NewPipeline(&stubFetcher{articles: articles}, embedder, store, meta,
		ingest.Options{ChunkSize: 500, BatchSize: 10}, logger)
	if err != nil {
		t.Fatal(err)
	}
	searcher := search.NewService(embedder, store, logger)
	return NewServer(pipeline, searcher, store, meta, nil, &config.ServerConfig{Host: "localhost", Port: 0}, logger)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleSearch_MissingQuery(t *testing.T) {
	srv := newTestServer(t, newStubStore(), nil)
	router := srv.Router()
	for _, body := range []any{
		map[string]any{},
		map[string]any{"query": ""},
		map[string]any{"query": "   "},
	} {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/search", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("search with body %v: status %d, want 400", body, rec.Code)
		}
	}
}

func TestHandleSearch_OK(t *testing.T) {
	srv := newTestServer(t, newStubStore(), nil)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/search", map[string]any{
		"query": "latest technology news",
		"limit": 3,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool                  `json:"success"`
		Query   string                `json:"query"`
		Results []models.SearchResult `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Query != "latest technology news" {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Results) != 1 || resp.Results[0].Payload.Text != "relevant chunk" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestHandleIngest_OK(t *testing.T) {
	store := newStubStore()
	srv := newTestServer(t, store, []models.Article{
		{Title: "One", Body: "first body"},
		{Title: "Two", Body: "second body"},
	})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/ingest", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool               `json:"success"`
		Stats   models.IngestStats `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Stats.Articles != 2 || resp.Stats.Chunks != 2 {
		t.Errorf("response = %+v", resp)
	}
	if len(store.points) != 2 {
		t.Errorf("stored %d points, want 2", len(store.points))
	}
}

func TestHandleIngest_Failure(t *testing.T) {
	store := newStubStore()
	store.ensureErr = vectorstore.NewError(vectorstore.KindUnavailable, "ensure_collection", errors.New("refused"))
	srv := newTestServer(t, store, []models.Article{{Title: "One", Body: "b"}})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/ingest", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
	var resp struct {
		Success bool               `json:"success"`
		Error   string             `json:"error"`
		Stats   models.IngestStats `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("response = %+v", resp)
	}
	// Partial statistics still reported.
	if resp.Stats.Articles != 1 {
		t.Errorf("stats = %+v", resp.Stats)
	}
}

func TestHandleStats(t *testing.T) {
	store := newStubStore()
	store.points[0] = vectorstore.Point{ID: 0}
	srv := newTestServer(t, store, nil)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/v1/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp struct {
		Success bool `json:"success"`
		Stats   struct {
			VectorsCount uint64 `json:"vectorsCount"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Stats.VectorsCount != 1 {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleClearCollection(t *testing.T) {
	store := newStubStore()
	store.points[0] = vectorstore.Point{ID: 0}
	srv := newTestServer(t, store, nil)
	rec := doJSON(t, srv.Router(), http.MethodDelete, "/api/v1/collection", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !store.deleted {
		t.Error("collection was not deleted")
	}
	if len(store.points) != 0 {
		t.Error("points survived the clear")
	}
}

func TestHandleChat_NotConfigured(t *testing.T) {
	srv := newTestServer(t, newStubStore(), nil)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/v1/chat", map[string]any{"message": "hi"})
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status %d, want 501", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, newStubStore(), nil)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status %d", rec.Code)
	}
}
