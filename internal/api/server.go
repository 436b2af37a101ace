// Package api serves the analyzer over HTTP.
package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/site-analyzer/internal/analyzer"
	"github.com/sells-group/site-analyzer/internal/config"
	"github.com/sells-group/site-analyzer/internal/resilience"
	"github.com/sells-group/site-analyzer/internal/scrape"
	"github.com/sells-group/site-analyzer/internal/store"
)

// Scraper fetches a single page. *scrape.Chain satisfies it.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*scrape.Result, error)
}

// BreakerReporter exposes the provider circuit breaker state.
type BreakerReporter interface {
	BreakerState() resilience.CircuitState
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	cfg      config.ServerConfig
	scraper  Scraper
	analyzer *analyzer.Analyzer
	store    store.Store
	breaker  BreakerReporter
	limiter  *rate.Limiter
	now      func() time.Time
}

// New creates a Server. rate_limit_per_hour <= 0 disables rate limiting.
func New(cfg config.ServerConfig, sc Scraper, an *analyzer.Analyzer, st store.Store) *Server {
	return &Server{
		cfg:      cfg,
		scraper:  sc,
		analyzer: an,
		store:    st,
		limiter:  newHourlyLimiter(cfg.RateLimitPerHour),
		now:      time.Now,
	}
}

// WithBreaker makes the health endpoint report the provider breaker state.
func (s *Server) WithBreaker(b BreakerReporter) *Server {
	s.breaker = b
	return s
}

func newHourlyLimiter(perHour int) *rate.Limiter {
	if perHour <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(perHour)/time.Hour.Seconds()), perHour)
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		r.Get("/health", s.handleHealth)
		r.With(s.rateLimit).Post("/analyze", s.handleAnalyze)
		r.Get("/analysis/{id}", s.handleGetAnalysis)
		r.Get("/recent", s.handleRecent)
		r.Get("/stats", s.handleStats)
		r.Get("/schema/{variant}", s.handleSchema)
	})
	return r
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			retry := math.Ceil(time.Hour.Seconds() / math.Max(float64(s.cfg.RateLimitPerHour), 1))
			w.Header().Set("Retry-After", strconv.Itoa(int(retry)))
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			zap.L().Info("api: request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
