package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liamcoop/riskscore/assessment"
	"github.com/liamcoop/riskscore/classifier"
	"github.com/liamcoop/riskscore/engine"
	"github.com/liamcoop/riskscore/internal/logger"
	"github.com/liamcoop/riskscore/internal/metrics"
)

const (
	maxBodyBytes = 1 << 20
	maxListLimit = 500
)

// Deps are the collaborators a Server needs. DB is only used for health
// checks and may be nil when the store is in memory.
type Deps struct {
	Engine   *engine.Engine
	Store    assessment.Store
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	DB       *sql.DB

	SlowRequest  time.Duration
	RequestLimit time.Duration
}

type Server struct {
	deps   Deps
	router *chi.Mux
}

func NewServer(deps Deps) (*Server, error) {
	if deps.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if deps.Store == nil {
		return nil, errors.New("assessment store is required")
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	if deps.RequestLimit <= 0 {
		deps.RequestLimit = 30 * time.Second
	}

	s := &Server{deps: deps}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.deps.RequestLimit))
	if s.deps.SlowRequest > 0 {
		r.Use(s.slowRequests)
	}

	r.Get("/api/v1/health", s.handleHealth)
	r.Get("/api/v1/rules", s.handleListRules)

	// Scoring without persistence
	r.Post("/api/v1/evaluate", s.handleEvaluate)

	r.Route("/api/v1/assessments", func(r chi.Router) {
		r.Post("/", s.handleCreateAssessment)
		r.Get("/", s.handleListAssessments)
		r.Get("/{id}", s.handleGetAssessment)
	})

	r.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) slowRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if d := time.Since(start); d > s.deps.SlowRequest {
			logger.WarnSlowRequest()
			logger.Warn("slow request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", d.String(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy", Store: "memory", Rules: len(s.deps.Engine.Rules())}

	if s.deps.DB != nil {
		resp.Store = "postgres"
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.DB.PingContext(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Error = err.Error()
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, RulesResponse{
		Rules:  s.deps.Engine.Rules(),
		Policy: s.deps.Engine.Policy(),
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEvaluateRequest(w, r)
	if !ok {
		return
	}

	result, ok := s.run(w, req)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeEvaluateRequest(w, r)
	if !ok {
		return
	}

	result, ok := s.run(w, req)
	if !ok {
		return
	}

	a := &assessment.Assessment{
		Profile:        req.Profile,
		Documents:      req.Documents,
		OCRAddressText: req.OCRAddressText,
		Result:         *result,
	}
	if err := s.deps.Store.Add(r.Context(), a); err != nil {
		logger.ErrorStore()
		logger.Error("failed to store assessment", "error", err, "request_id", middleware.GetReqID(r.Context()))
		respondError(w, http.StatusInternalServerError, "failed to store assessment", err)
		return
	}

	logger.Info("assessment stored",
		"id", a.ID.String(),
		"score", result.Score,
		"band", string(result.Band),
	)
	respondJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	var f assessment.Filter

	if band := r.URL.Query().Get("band"); band != "" {
		f.Band = classifier.Band(band)
		if !f.Band.Valid() {
			respondError(w, http.StatusBadRequest, "invalid band", fmt.Errorf("band %q must be one of: Low, Medium, High", band))
			return
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 || n > maxListLimit {
			respondError(w, http.StatusBadRequest, "invalid limit", fmt.Errorf("limit must be an integer between 1 and %d", maxListLimit))
			return
		}
		f.Limit = n
	}

	list, err := s.deps.Store.List(r.Context(), f)
	if err != nil {
		logger.ErrorStore()
		logger.Error("failed to list assessments", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list assessments", err)
		return
	}
	if list == nil {
		list = []*assessment.Assessment{}
	}

	respondJSON(w, http.StatusOK, AssessmentsListResponse{Assessments: list, Count: len(list)})
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid assessment id", err)
		return
	}

	a, err := s.deps.Store.Get(r.Context(), id)
	if errors.Is(err, assessment.ErrNotFound) {
		respondError(w, http.StatusNotFound, "assessment not found", nil)
		return
	}
	if err != nil {
		logger.ErrorStore()
		logger.Error("failed to get assessment", "id", id.String(), "error", err)
		respondError(w, http.StatusInternalServerError, "failed to get assessment", err)
		return
	}

	respondJSON(w, http.StatusOK, a)
}

// run scores req and writes the error response itself when scoring fails.
func (s *Server) run(w http.ResponseWriter, req EvaluateRequest) (*engine.RiskResult, bool) {
	start := time.Now()
	result, err := s.deps.Engine.Run(req.Profile, req.Documents, req.OCRAddressText)
	if err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			logger.WarnValidation()
			respondValidation(w, verr)
			return nil, false
		}
		logger.Error("evaluation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "evaluation failed", err)
		return nil, false
	}

	s.deps.Metrics.ObserveResult(result, time.Since(start))
	return result, true
}

func decodeEvaluateRequest(w http.ResponseWriter, r *http.Request) (EvaluateRequest, bool) {
	var req EvaluateRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return req, false
	}
	return req, true
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Debug("failed to write response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	countStatus(status)

	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	respondJSON(w, status, resp)
}

func respondValidation(w http.ResponseWriter, verr *engine.ValidationError) {
	countStatus(http.StatusBadRequest)

	respondJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "validation failed",
		Details: verr.Error(),
		Fields:  verr.Fields,
	})
}

func countStatus(status int) {
	switch {
	case status >= 500:
		logger.ErrorHttp5xx()
	case status >= 400:
		logger.WarnHttp4xx(status)
	}
}
