package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/analyzer"
	"github.com/sells-group/site-analyzer/internal/model"
	"github.com/sells-group/site-analyzer/internal/resilience"
	"github.com/sells-group/site-analyzer/internal/scrape"
	"github.com/sells-group/site-analyzer/internal/store"
)

type analyzeRequest struct {
	URL    string `json:"url"`
	Schema string `json:"schema,omitempty"`
}

type analyzeResponse struct {
	Success    bool                 `json:"success"`
	AnalysisID string               `json:"analysis_id,omitempty"`
	URL        string               `json:"url"`
	Analysis   model.AnalysisResult `json:"analysis"`
	Summary    analyzer.Summary     `json:"summary"`
	Timestamp  time.Time            `json:"timestamp"`
	AIProvider string               `json:"ai_provider"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := "healthy"
	body := map[string]any{
		"provider":  s.analyzer.Provider(),
		"model":     s.analyzer.Model(),
		"timestamp": s.now().UTC(),
	}
	if s.breaker != nil {
		state := s.breaker.BreakerState()
		body["circuit"] = state.String()
		if state == resilience.CircuitOpen {
			status = "degraded"
		}
	}
	body["status"] = status
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxRequestBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestBytes)
	}
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}
	if !scrape.IsValidURL(url) {
		writeError(w, http.StatusBadRequest, "Invalid URL format")
		return
	}

	an := s.analyzer
	if req.Schema != "" {
		variant := model.SchemaVariant(strings.ToLower(req.Schema))
		if !variant.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown schema: "+req.Schema)
			return
		}
		if variant != an.Variant() {
			an = an.WithVariant(variant)
		}
	}

	ctx := r.Context()
	log := zap.L().With(
		zap.String("url", url),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := s.scraper.Scrape(ctx, url)
	if err != nil {
		log.Warn("api: crawl failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Failed to crawl website. Please check the URL and try again.")
		return
	}

	out, err := an.Analyze(ctx, res.Page)
	if err != nil {
		status, msg := errorResponse(err, an.Provider())
		log.Error("api: analysis failed", zap.Int("status", status), zap.Error(err))
		writeError(w, status, msg)
		return
	}

	resp := analyzeResponse{
		Success:    true,
		URL:        url,
		Analysis:   out.Result,
		Summary:    out.Summary,
		Timestamp:  res.Page.FetchedAt,
		AIProvider: an.Provider(),
	}
	saved, err := s.store.SaveAnalysis(ctx, url, out.Result, &res.Page)
	if err != nil {
		log.Error("api: save analysis failed", zap.Error(err))
	} else {
		resp.AnalysisID = saved.ID
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := uuid.Validate(id); err != nil {
		writeError(w, http.StatusNotFound, "Analysis not found")
		return
	}

	a, err := s.store.GetAnalysis(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Analysis not found")
		return
	}
	if err != nil {
		zap.L().Error("api: get analysis", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve analysis")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": a})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	recent, err := s.store.ListRecent(r.Context(), limit)
	if err != nil {
		zap.L().Error("api: list recent", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve recent analyses")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(recent),
		"data":    recent,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Stats(r.Context())
	if err != nil {
		zap.L().Error("api: stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to retrieve statistics")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": st})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	variant := model.SchemaVariant(chi.URLParam(r, "variant"))
	if !variant.Valid() {
		writeError(w, http.StatusNotFound, "Unknown schema variant")
		return
	}
	schema, err := analyzer.JSONSchema(variant)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build schema")
		return
	}
	writeJSON(w, http.StatusOK, schema)
}
