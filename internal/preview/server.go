package preview

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/fragy/internal/metrics"
)

// PageSource provides the mounted document and where build output lives.
type PageSource interface {
	Page() (string, error)
	OutputDir() string
}

// Server serves the mounted application, the build output and metrics.
type Server struct {
	Addr   string
	source PageSource
	reg    *prom.Registry
	router *chi.Mux
	server *http.Server
	ln     net.Listener
}

// NewServer creates a preview server. A nil registry disables /metrics.
func NewServer(addr string, source PageSource, reg *prom.Registry) *Server {
	s := &Server{Addr: addr, source: source, reg: reg, router: chi.NewRouter()}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	if s.reg != nil {
		s.router.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(s.reg))
	}
	s.router.Get("/", s.handleIndex)
	s.router.Get("/*", s.handleStatic)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on Addr and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.Addr, err)
	}
	s.ln = ln
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Preview server stopped", "error", err)
		}
	}()
	return nil
}

// URL returns the base URL of a started server.
func (s *Server) URL() string {
	if s.ln == nil {
		return "http://" + s.Addr
	}
	return "http://" + s.ln.Addr().String()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := s.source.Page()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if page == "" {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = fmt.Fprintf(w, "<!DOCTYPE html><pre>%s</pre>\n", html.EscapeString(errText(err)))
		return
	}
	if err != nil {
		w.Header().Set("X-Fragy-Build-Error", errText(err))
	}
	_, _ = w.Write([]byte(page))
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	dir := s.source.OutputDir()
	if dir == "" {
		http.NotFound(w, r)
		return
	}
	http.FileServer(http.Dir(dir)).ServeHTTP(w, r)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
