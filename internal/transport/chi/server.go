// Package chi exposes the specdex engine over a small REST surface.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/meridian-cloud/specdex"
	"github.com/meridian-cloud/specdex/internal/broadcast"
	"github.com/meridian-cloud/specdex/internal/metrics"
)

// Broadcaster publishes accepted filter states to peer sessions.
type Broadcaster interface {
	Publish(ctx context.Context, ev broadcast.Event) error
}

// Server serves the catalog and search endpoints over one engine. The
// engine models a single session and is not safe for concurrent use, so the
// server serializes access to it.
type Server struct {
	mu          sync.Mutex
	engine      *specdex.Engine
	broadcaster Broadcaster // nil when sync is disabled
	logger      *zap.Logger
	loaded      bool
}

// NewServer creates the HTTP API server.
func NewServer(engine *specdex.Engine, broadcaster Broadcaster, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{engine: engine, broadcaster: broadcaster, logger: logger}
}

// SetLoaded marks the catalog as indexed (used when the catalog is loaded
// at startup rather than via PUT /catalog).
func (s *Server) SetLoaded() {
	s.mu.Lock()
	s.loaded = true
	s.mu.Unlock()
}

// Routes builds the API router. Middleware is composed by the caller.
func (s *Server) Routes() *gochi.Mux {
	r := gochi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Put("/catalog", s.handleReplaceCatalog)
	r.Get("/catalog/categories", s.handleCategories)
	r.Get("/catalog/numeric-keys", s.handleNumericKeys)
	r.Get("/catalog/specs/{specKey}/range", s.handleSpecRange)
	r.Post("/search", s.handleSearch)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReplaceCatalog handles PUT /catalog.
func (s *Server) handleReplaceCatalog(w http.ResponseWriter, r *http.Request) {
	var products []specdex.Product
	if err := json.NewDecoder(r.Body).Decode(&products); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid catalog body: "+err.Error())
		return
	}

	s.mu.Lock()
	s.engine.Initialize(products)
	indexed := s.engine.Count()
	s.loaded = true
	s.mu.Unlock()

	metrics.IndexedProducts.Set(float64(indexed))
	s.logger.Info("catalog replaced",
		zap.Int("received", len(products)),
		zap.Int("indexed", indexed),
	)

	writeJSON(w, http.StatusOK, CatalogResponse{Indexed: indexed})
}

// handleSearch handles POST /search. The request's filter groups are applied
// to a cleared filter state, so every request is self-contained.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid search body: "+err.Error())
		return
	}

	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "catalog_not_loaded", "catalog not loaded")
		return
	}

	start := time.Now()
	s.engine.ClearFilters().SetTextSearch(req.Query)
	for key, rng := range req.Ranges {
		s.engine.AddRangeFilter(key, rng.Min, rng.Max)
	}
	for _, category := range req.Categories {
		s.engine.AddCategoryFilter(category)
	}
	results := s.engine.Search()
	s.mu.Unlock()

	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	outcome := "hits"
	if len(results) == 0 {
		outcome = "empty"
	}
	metrics.SearchesTotal.WithLabelValues(outcome).Inc()

	total := len(results)
	if req.Limit > 0 && len(results) > req.Limit {
		results = results[:req.Limit]
	}

	s.publishFilters(r.Context(), req)

	writeJSON(w, http.StatusOK, SearchResponse{Total: total, Results: resultsToDTO(results)})
}

// handleCategories handles GET /catalog/categories.
func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	categories := s.engine.AvailableCategories()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

// handleNumericKeys handles GET /catalog/numeric-keys.
func (s *Server) handleNumericKeys(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	keys := s.engine.NumericSpecKeys()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, NumericKeysResponse{Keys: keys})
}

// handleSpecRange handles GET /catalog/specs/{specKey}/range.
func (s *Server) handleSpecRange(w http.ResponseWriter, r *http.Request) {
	specKey := gochi.URLParam(r, "specKey")

	s.mu.Lock()
	agg, ok := s.engine.SpecRange(specKey)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "unknown_spec_key", "no numeric data for "+specKey)
		return
	}

	writeJSON(w, http.StatusOK, SpecRangeResponse{
		Key:  specKey,
		Min:  agg.Min,
		Max:  agg.Max,
		Unit: agg.Unit,
	})
}

// publishFilters broadcasts an accepted filter state to peer sessions.
// Broadcast failures are logged, never surfaced: sync is advisory.
func (s *Server) publishFilters(ctx context.Context, req SearchRequest) {
	if s.broadcaster == nil {
		return
	}

	ev := broadcast.Event{Query: req.Query, Categories: req.Categories}
	if len(req.Ranges) > 0 {
		ev.Ranges = make(map[string]broadcast.Range, len(req.Ranges))
		for key, rng := range req.Ranges {
			ev.Ranges[key] = broadcast.Range{Min: rng.Min, Max: rng.Max}
		}
	}

	if err := s.broadcaster.Publish(ctx, ev); err != nil {
		s.logger.Warn("filter broadcast failed", zap.Error(err))
		return
	}
	metrics.SyncEventsTotal.WithLabelValues("published").Inc()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
