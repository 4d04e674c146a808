package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/glossaryhq/glossary/pkg/httputil"
	"github.com/glossaryhq/glossary/pkg/observability"
	"github.com/glossaryhq/glossary/pkg/storage"
)

// Options tunes optional server behavior.
type Options struct {
	// Metrics instruments requests when non-nil.
	Metrics *observability.Metrics
	// CORSOrigins enables CORS for the listed origins when non-empty.
	CORSOrigins []string
	// MaxBodyBytes limits request body size; zero means 1 MiB.
	MaxBodyBytes int64
	// Tracing wraps the handler chain in otelhttp when true.
	Tracing bool
}

// Server is the glossary HTTP API.
type Server struct {
	store   storage.Store
	router  *mux.Router
	logger  *observability.Logger
	metrics *observability.Metrics
	handler http.Handler
}

// NewServer creates a new API server over the given store.
func NewServer(store storage.Store, logger *observability.Logger, opts Options) *Server {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	s := &Server{
		store:   store,
		router:  mux.NewRouter(),
		logger:  logger,
		metrics: opts.Metrics,
	}
	s.setupRoutes()

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	middlewares := []httputil.Middleware{
		httputil.RequestIDMiddleware,
		httputil.IdentityMiddleware,
		httputil.LoggingMiddleware(logger),
		httputil.RecoveryMiddleware(logger),
		httputil.MaxBytesMiddleware(maxBody),
	}
	if len(opts.CORSOrigins) > 0 {
		middlewares = append(middlewares, httputil.CORSMiddleware(opts.CORSOrigins))
	}
	if opts.Metrics != nil {
		middlewares = append(middlewares, observability.HTTPMetricsMiddleware(opts.Metrics))
	}

	s.handler = httputil.Chain(s.router, middlewares...)
	if opts.Tracing {
		s.handler = otelhttp.NewHandler(s.handler, "glossary-api")
	}

	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.hello).Methods("GET")
	s.router.HandleFunc("/ping", s.ping).Methods("GET")

	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	// Entry routes. The search and popular routes use distinct path
	// segments so they cannot collide with the {id} routes.
	v1.HandleFunc("/glossary", s.listEntries).Methods("GET")
	v1.HandleFunc("/glossary", s.createEntry).Methods("POST")
	v1.HandleFunc("/glossary-search", s.searchEntries).Methods("GET")
	v1.HandleFunc("/glossary-popular", s.popularEntries).Methods("GET")
	v1.HandleFunc("/glossary/{id}", s.getEntry).Methods("GET")
	v1.HandleFunc("/glossary/{id}", s.updateEntry).Methods("PUT")
	v1.HandleFunc("/glossary/{id}", s.deleteEntry).Methods("DELETE")

	// History routes
	v1.HandleFunc("/glossary/{id}/history", s.listHistory).Methods("GET")

	// Like routes
	v1.HandleFunc("/glossary/{id}/likes", s.listLikes).Methods("GET")
	v1.HandleFunc("/glossary/{id}/likes", s.addLike).Methods("POST")
	v1.HandleFunc("/glossary/{id}/likes", s.removeLike).Methods("DELETE")
	v1.HandleFunc("/glossary/{id}/likes/{likeID}", s.removeLikeByID).Methods("DELETE")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) hello(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Hello world!"))
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
