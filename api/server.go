package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/carsuggester/vehiclesearch/catalog"
	"github.com/carsuggester/vehiclesearch/core"
	"github.com/carsuggester/vehiclesearch/core/rank"
	"github.com/carsuggester/vehiclesearch/core/suggest"
)

// Server represents the REST API server
type Server struct {
	store      catalog.Store
	ranker     *rank.Ranker
	generator  *suggest.Generator
	history    core.SearchHistory
	trending   suggest.TrendingStore
	router     *mux.Router
	httpServer *http.Server
	config     ServerConfig
	logger     *zap.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// NewServer creates a new API server
func NewServer(
	store catalog.Store,
	ranker *rank.Ranker,
	generator *suggest.Generator,
	history core.SearchHistory,
	trending suggest.TrendingStore,
	config ServerConfig,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:     store,
		ranker:    ranker,
		generator: generator,
		history:   history,
		trending:  trending,
		config:    config,
		logger:    logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	// Middleware
	s.router.Use(s.loggingMiddleware)

	// Health check and metrics
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Search endpoints
	s.router.HandleFunc("/search", s.handleSearch).Methods("POST")
	s.router.HandleFunc("/suggest", s.handleSuggest).Methods("GET")

	// Vehicle endpoints
	s.router.HandleFunc("/vehicles", s.handleAddVehicle).Methods("POST")
	s.router.HandleFunc("/vehicles", s.handleListVehicles).Methods("GET")
	s.router.HandleFunc("/vehicles/{id}", s.handleGetVehicle).Methods("GET")
	s.router.HandleFunc("/vehicles/{id}", s.handleUpdateVehicle).Methods("PUT")
	s.router.HandleFunc("/vehicles/{id}", s.handleDeleteVehicle).Methods("DELETE")
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Info("starting vehiclesearch API server", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP implements the http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Error response helper
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

// JSON response helper
func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Error marshaling JSON"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
