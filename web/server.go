// ABOUTME: HTTP server for the artifact handoff views behind a chi router.
// ABOUTME: Reads payloads from a handoff.Store and renders them; it never writes.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	g "maragu.dev/gomponents"

	"github.com/2389-research/campaigndash/handoff"
)

// Server serves the landing page and handoff views.
type Server struct {
	store  handoff.Store
	router chi.Router
	addr   string
	logger *slog.Logger
}

// Config holds the server's dependencies.
type Config struct {
	Addr   string // listen address (default: "127.0.0.1:5173")
	Store  handoff.Store
	Logger *slog.Logger
}

// NewServer builds a Server and its routes.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("handoff store must not be nil")
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:5173"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		store:  cfg.Store,
		addr:   cfg.Addr,
		logger: cfg.Logger.With(slog.String("scope", "web")),
	}
	s.router = s.buildRouter()
	return s, nil
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("web server listening", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown web server: %w", err)
		}
		return nil
	}
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleHome)
	r.Get("/health", s.handleHealth)

	r.Get(handoff.PathResearch, s.handleResearch)
	r.Get(handoff.PathBreakdown, s.handleBreakdown)
	r.Get(handoff.PathWebEditor, s.handleWebEditor)
	r.Get(handoff.PathWebEditor+"/preview", s.handleWebPreview)
	r.Get(handoff.PathPostmaker, s.handlePostmaker)
	r.Get(handoff.PathControl, s.handleControl)

	r.Get("/api/handoff/{key}", s.handleAPIHandoff)

	return r
}

func (s *Server) render(w http.ResponseWriter, page g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(w); err != nil {
		s.logger.Error("render page", slog.String("error", err.Error()))
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, landingPage())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// load fetches key and decodes it into dst. It reports false after writing a
// response: the empty view when nothing was handed off, or an error page.
func (s *Server) load(w http.ResponseWriter, r *http.Request, key handoff.Key, title string, dst any) bool {
	raw, err := s.store.Get(r.Context(), key)
	if errors.Is(err, handoff.ErrNotFound) {
		s.render(w, emptyView(title, key))
		return false
	}
	if err != nil {
		s.logger.Error("load handoff", slog.String("key", string(key)), slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Warn("decode handoff", slog.String("key", string(key)), slog.String("error", err.Error()))
		http.Error(w, "handoff data is corrupt", http.StatusUnprocessableEntity)
		return false
	}
	return true
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var p handoff.ResearchPayload
	if s.load(w, r, handoff.KeyResearch, "Research", &p) {
		s.render(w, researchView(p))
	}
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	var p handoff.BreakdownPayload
	if s.load(w, r, handoff.KeyBreakdown, "Campaign Breakdown", &p) {
		s.render(w, breakdownView(p))
	}
}

func (s *Server) handleWebEditor(w http.ResponseWriter, r *http.Request) {
	code, err := s.store.Get(r.Context(), handoff.KeyLandingPageCode)
	if errors.Is(err, handoff.ErrNotFound) {
		s.render(w, emptyView("Landing Page", handoff.KeyLandingPageCode))
		return
	}
	if err != nil {
		s.logger.Error("load landing page", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.render(w, webEditorView(string(code)))
}

// handleWebPreview serves the generated page as-is inside a CSP sandbox so
// its scripts cannot reach this origin.
func (s *Server) handleWebPreview(w http.ResponseWriter, r *http.Request) {
	code, err := s.store.Get(r.Context(), handoff.KeyLandingPageCode)
	if errors.Is(err, handoff.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Security-Policy", "sandbox allow-scripts")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(code)
}

func (s *Server) handlePostmaker(w http.ResponseWriter, r *http.Request) {
	var p handoff.ContentPayload
	if s.load(w, r, handoff.KeyContent, "Content Studio", &p) {
		s.render(w, postmakerView(p))
	}
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	keys, err := s.store.Keys(r.Context())
	if err != nil {
		s.logger.Error("list handoff keys", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	available := make(map[handoff.Key]bool, len(keys))
	for _, k := range keys {
		available[k] = true
	}
	s.render(w, controlView(available))
}

func (s *Server) handleAPIHandoff(w http.ResponseWriter, r *http.Request) {
	key, err := handoff.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	raw, err := s.store.Get(r.Context(), key)
	if errors.Is(err, handoff.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if key == handoff.KeyLandingPageCode {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(raw)
}
