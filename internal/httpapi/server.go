// ABOUTME: Local HTTP surface for tool discovery and invocation.
// ABOUTME: Invocations always answer 200 with the uniform envelope; only routing fails.

package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/golatam/sirenko-openclaw/internal/tools"
)

// maxRequestBody bounds invocation request bodies.
const maxRequestBody = 1 << 20

var invocationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "openclaw_tool_invocations_total",
	Help: "Tool invocations by operation and outcome.",
}, []string{"operation", "outcome"})

// Server is the local API server.
type Server struct {
	service *tools.Service
	logger  *slog.Logger
	metrics MetricsConfig
	router  *mux.Router
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Config holds configuration for the Server.
type Config struct {
	Service *tools.Service
	Logger  *slog.Logger
	Metrics MetricsConfig
}

// NewServer creates the API server and builds its routes.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		service: cfg.Service,
		logger:  logger,
		metrics: cfg.Metrics,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestLogging)
	r.HandleFunc("/tools", s.handleListTools).Methods(http.MethodGet)
	r.HandleFunc("/tools/{name}", s.handleInvoke).Methods(http.MethodPost)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metrics.Enabled {
		path := s.metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler()).Methods(http.MethodGet)
	}
	return r
}

// requestLogging tags each request with a uuid and logs its duration.
func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r)
		s.logger.Debug("http request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": tools.Definitions()})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !s.service.Has(name) {
		http.Error(w, "unknown tool: "+name, http.StatusNotFound)
		return
	}

	args := tools.Args{}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, "reading request body", http.StatusBadRequest)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			http.Error(w, "request body must be a JSON object", http.StatusBadRequest)
			return
		}
	}

	resp := s.service.Invoke(r.Context(), name, args)

	outcome := "ok"
	if ok, _ := resp.Details["ok"].(bool); !ok {
		outcome = "error"
	}
	invocationsTotal.WithLabelValues(name, outcome).Inc()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("encoding response", "error", err)
	}
}
