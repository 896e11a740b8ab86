package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/harrylevesque/navshell/internal/auth"
	"github.com/harrylevesque/navshell/internal/shell"
	"github.com/harrylevesque/navshell/internal/ui"
)

// SessionCookie carries the shell session id.
const SessionCookie = "navshell_sid"

// Server serves the navigation shell over HTTP.
type Server struct {
	shell   *shell.Shell
	auth    *auth.Resolver
	metrics *Metrics
	logger  *zap.Logger
	authURL string
}

type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithAuthURL sets the base of the login and logout links.
func WithAuthURL(u string) Option {
	return func(s *Server) { s.authURL = u }
}

func NewServer(sh *shell.Shell, res *auth.Resolver, opts ...Option) *Server {
	s := &Server{shell: sh, auth: res, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(sh)
	}
	if s.auth == nil {
		s.auth = auth.NewResolver(nil, "", s.logger)
	}
	return s
}

func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// NewRouter wires the API endpoints, the static assets and the page
// catch-all.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprintln(w, "OK"); err != nil {
			s.logger.Debug("health write failed", zap.Error(err))
		}
	}).Methods("GET")
	r.Handle("/metrics", s.metrics.Handler()).Methods("GET")

	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/nav", s.NavHandler).Methods("GET")
	a.HandleFunc("/routes", s.RoutesHandler).Methods("GET")
	a.HandleFunc("/layout", s.LayoutHandler).Methods("GET")
	a.HandleFunc("/sidebar/toggle", s.ToggleSidebarHandler).Methods("POST")

	r.PathPrefix(ui.AssetsPrefix).Handler(
		http.StripPrefix(ui.AssetsPrefix, http.FileServer(http.FS(ui.Assets()))),
	).Methods("GET")
	r.PathPrefix("/").HandlerFunc(s.PageHandler).Methods("GET")
	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "page"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil && tpl != "/" {
				route = tpl
			}
		}
		elapsed := time.Since(start)
		s.metrics.observeRequest(route, rec.status, elapsed)
		s.logger.Debug("request",
			zap.String("request_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed),
		)
	})
}
