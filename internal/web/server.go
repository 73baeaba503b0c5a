// Package web serves a tab switcher over HTTP. The page is rendered on the
// server; clicking a tab posts a form and redirects back to the page.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chris-regnier/tabset/internal/cache"
	"github.com/chris-regnier/tabset/internal/tabs"
	"github.com/chris-regnier/tabset/internal/telemetry"
)

// Server exposes a Switcher as an HTML page and a JSON API.
type Server struct {
	switcher *tabs.Switcher
	title    string
	strict   bool
	logger   *slog.Logger
	md       goldmark.Markdown
	bodies   *cache.Cache[template.HTML]
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithTitle sets the page title.
func WithTitle(title string) Option {
	return func(s *Server) { s.title = title }
}

// WithStrict makes unknown groups answer 404 instead of clearing the page.
func WithStrict(strict bool) Option {
	return func(s *Server) { s.strict = strict }
}

// WithLogger sets the request and activation logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds a Server around sw.
func New(sw *tabs.Switcher, opts ...Option) *Server {
	s := &Server{
		switcher: sw,
		title:    "tabset",
		logger:   slog.Default(),
		md:       goldmark.New(),
		bodies:   cache.New[template.HTML](),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Post("/tabs", s.handleTabForm)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/activate", s.handleActivate)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// RenderStats reports hits and misses of the panel body cache.
func (s *Server) RenderStats() cache.Stats { return s.bodies.Stats() }

// Reload swaps in a rebuilt registry, keeping the active group when it
// still exists.
func (s *Server) Reload(reg *tabs.Registry, fallback string) {
	s.switcher.Replace(reg, fallback)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readTimeout,
		ReadTimeout:       readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		return nil
	}
}

var errUnknownControl = errors.New("unknown control")

type activateRequest struct {
	Group   string `json:"group"`
	Control string `json:"control,omitempty"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.switcher.Snapshot())
}

// handleTabForm takes the group from the form body so ids never have to be
// valid URL path segments.
func (s *Server) handleTabForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	group := r.PostForm.Get("group")
	if group == "" {
		http.Error(w, "group is required", http.StatusBadRequest)
		return
	}
	if err := s.activate(r.Context(), group, r.PostForm.Get("control")); err != nil {
		http.Error(w, err.Error(), activateStatus(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}
	if req.Group == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "group is required"})
		return
	}
	if err := s.activate(r.Context(), req.Group, req.Control); err != nil {
		resp := errorResponse{Error: err.Error()}
		var unknown *tabs.UnknownGroupError
		if errors.As(err, &unknown) {
			resp.Suggestion = unknown.Suggestion
		}
		writeJSON(w, activateStatus(err), resp)
		return
	}
	writeJSON(w, http.StatusOK, s.switcher.Snapshot())
}

func activateStatus(err error) int {
	if errors.Is(err, errUnknownControl) {
		return http.StatusBadRequest
	}
	return http.StatusNotFound
}

// activate resolves the event target and switches to group. The named
// control is the target wherever it lives; without one the group's primary
// control is. It fails for an unknown control id, and for an unknown group
// in strict mode.
func (s *Server) activate(ctx context.Context, group, controlID string) error {
	_, span := telemetry.Tracer().Start(ctx, "tabset.activate",
		trace.WithAttributes(
			attribute.String("tabset.group", group),
			attribute.String("tabset.control", controlID),
		))
	defer span.End()

	reg := s.switcher.Registry()
	if s.strict {
		if err := reg.Resolve(group); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "unknown group")
			return err
		}
	}

	var target *tabs.Control
	if controlID != "" {
		c, ok := reg.ControlByID(controlID)
		if !ok {
			err := fmt.Errorf("%w %q", errUnknownControl, controlID)
			span.RecordError(err)
			span.SetStatus(codes.Error, "unknown control")
			return err
		}
		target = c
	} else if c, ok := reg.PrimaryControl(group); ok {
		target = c
	}

	s.switcher.Activate(tabs.Event{CurrentTarget: target}, group)
	span.SetAttributes(attribute.String("tabset.active", s.switcher.Active()))
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// requestLogger logs one line per request at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
