package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/carsuggester/vehiclesearch/core"
	"github.com/carsuggester/vehiclesearch/core/rank"
)

// Health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   "1.0.0",
	}
	s.respondWithJSON(w, http.StatusOK, response)
}

// SearchRequest is the body of POST /search
type SearchRequest struct {
	Query   string         `json:"query"`
	UserID  string         `json:"user_id,omitempty"`
	Filters core.FilterSet `json:"filters"`
}

// SearchResponse wraps one ranking pass for the wire
type SearchResponse struct {
	Results     []core.RankedResult `json:"results"`
	Explanation string              `json:"explanation"`
	Query       core.ParsedQuery    `json:"query"`
	Diagnostics rank.Diagnostics    `json:"diagnostics"`
}

// handleSearch runs the full parse-filter-rank pipeline over the
// catalog and records the query for history and trending
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	start := time.Now()

	candidates, err := s.store.FetchCandidates(ctx, req.Filters)
	if err != nil {
		searchesTotal.WithLabelValues("error").Inc()
		s.respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var recent []string
	if req.UserID != "" && s.history != nil {
		recent, err = s.history.Recent(ctx, req.UserID, 10)
		if err != nil {
			// History is advisory; search proceeds without it
			s.logger.Warn("failed to load search history",
				zap.String("user_id", req.UserID), zap.Error(err))
		}
	}

	result := s.ranker.Rank(req.Query, candidates, req.Filters, recent)

	searchDuration.Observe(time.Since(start).Seconds())
	searchesTotal.WithLabelValues("ok").Inc()
	if result.Diagnostics.SkippedCandidates > 0 {
		skippedCandidatesTotal.Add(float64(result.Diagnostics.SkippedCandidates))
		s.logger.Warn("candidates skipped during scoring",
			zap.String("query_id", result.Diagnostics.QueryID),
			zap.Int("skipped", result.Diagnostics.SkippedCandidates))
	}

	if req.UserID != "" && s.history != nil {
		if err := s.history.Record(ctx, req.UserID, req.Query); err != nil {
			s.logger.Warn("failed to record search history", zap.Error(err))
		}
	}
	if s.trending != nil {
		if err := s.trending.RecordSearch(ctx, req.Query); err != nil {
			s.logger.Warn("failed to record trending phrase", zap.Error(err))
		}
	}

	s.respondWithJSON(w, http.StatusOK, SearchResponse{
		Results:     result.Results,
		Explanation: result.Explanation,
		Query:       result.Query,
		Diagnostics: result.Diagnostics,
	})
}

// SuggestResponse is the body of GET /suggest
type SuggestResponse struct {
	Suggestions []core.SuggestionItem `json:"suggestions"`
}

// handleSuggest serves typeahead suggestions for a partial query
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	partial := r.URL.Query().Get("q")
	userID := r.URL.Query().Get("user_id")

	var recent []string
	if userID != "" && s.history != nil {
		var err error
		recent, err = s.history.Recent(ctx, userID, 3)
		if err != nil {
			s.logger.Warn("failed to load search history",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	var popular []string
	if s.trending != nil {
		var err error
		popular, err = s.trending.Popular(ctx, 3)
		if err != nil {
			s.logger.Warn("failed to load trending phrases", zap.Error(err))
		}
	}

	suggestionsTotal.Inc()
	s.respondWithJSON(w, http.StatusOK, SuggestResponse{
		Suggestions: s.generator.Suggest(partial, recent, popular),
	})
}

// handleAddVehicle stores a new vehicle record
func (s *Server) handleAddVehicle(w http.ResponseWriter, r *http.Request) {
	var rec core.VehicleRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.store.SaveVehicle(r.Context(), rec); err != nil {
		if errors.Is(err, core.ErrInvalidVehicle) {
			s.respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusCreated, rec)
}

// handleListVehicles returns catalog contents, optionally narrowed by
// price_min/price_max query parameters
func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	// A missing bound means no constraint on that side. Leaving it at
	// zero would make a min-only range look inverted and get swapped
	// during normalization, so the absent upper bound is pinned open.
	var filters core.FilterSet
	minVal, minErr := strconv.ParseFloat(q.Get("price_min"), 64)
	maxVal, maxErr := strconv.ParseFloat(q.Get("price_max"), 64)
	if minErr == nil || maxErr == nil {
		filters.PriceRange = core.Range{Max: math.MaxFloat64}
		if minErr == nil {
			filters.PriceRange.Min = minVal
		}
		if maxErr == nil {
			filters.PriceRange.Max = maxVal
		}
	}

	var (
		vehicles []core.VehicleRecord
		err      error
	)
	if filters.PriceRange.IsZero() {
		vehicles, err = s.store.ListVehicles(r.Context())
	} else {
		vehicles, err = s.store.FetchCandidates(r.Context(), filters)
	}
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, vehicles)
}

// handleGetVehicle returns a single vehicle by ID
func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := s.store.GetVehicle(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrVehicleNotFound) {
			s.respondWithError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		s.respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, rec)
}

// handleUpdateVehicle replaces a vehicle record
func (s *Server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var rec core.VehicleRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	rec.ID = id

	if _, err := s.store.GetVehicle(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrVehicleNotFound) {
			s.respondWithError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		s.respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.store.SaveVehicle(r.Context(), rec); err != nil {
		if errors.Is(err, core.ErrInvalidVehicle) {
			s.respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, rec)
}

// handleDeleteVehicle removes a vehicle by ID
func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.store.DeleteVehicle(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrVehicleNotFound) {
			s.respondWithError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		s.respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
