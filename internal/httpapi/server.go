// Package httpapi is the thin HTTP boundary mapping routes onto engine
// calls. It owns request parsing, defaults and the error-to-status
// mapping, nothing else.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	apperrors "github.com/eruditedesk/ticketsearch/internal/errors"
	"github.com/eruditedesk/ticketsearch/internal/search"
	"github.com/eruditedesk/ticketsearch/internal/store"
)

// Server serves the search API.
type Server struct {
	engine *search.Engine
	router chi.Router
	http   *http.Server
}

// NewServer builds the router and the underlying HTTP server.
func NewServer(engine *search.Engine, listen string) *Server {
	s := &Server{engine: engine}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/Health", s.handleHealth)
	r.Get("/find/{query}", s.handleFind)
	r.Get("/options", s.handleOptions)
	r.Post("/search", s.handleSearch)

	s.router = r
	s.http = &http.Server{
		Addr:              listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", slog.String("addr", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("http server shutting down")
		return s.http.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"Status": "OK"})
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	req := search.Request{
		Query: chi.URLParam(r, "query"),
		Limit: search.DefaultLimit,
		Alpha: search.DefaultAlpha,
	}
	s.runSearch(w, r, req)
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Metadata())
}

// searchRequest is the POST body. Limit and alpha are pointers so an
// absent field takes the default while an explicit zero is preserved.
type searchRequest struct {
	Query  string             `json:"query"`
	Limit  *int               `json:"limit"`
	Alpha  *float64           `json:"alpha"`
	Exact  bool               `json:"exact"`
	Filter store.SearchFilter `json:"filter"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body searchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}
	if body.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	req := search.Request{
		Query:  body.Query,
		Limit:  search.DefaultLimit,
		Alpha:  search.DefaultAlpha,
		Exact:  body.Exact,
		Filter: body.Filter,
	}
	if body.Limit != nil {
		req.Limit = *body.Limit
	}
	if body.Alpha != nil {
		req.Alpha = *body.Alpha
	}
	s.runSearch(w, r, req)
}

func (s *Server) runSearch(w http.ResponseWriter, r *http.Request, req search.Request) {
	items, err := s.engine.Search(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// writeError maps engine errors onto responses. An empty corpus is a
// benign outcome, not a failure.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.CodeOf(err) == apperrors.CodeEmptyCorpus:
		writeJSON(w, http.StatusOK, map[string]string{"result": "data not found"})
	case apperrors.IsClient(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("request failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("write response", slog.Any("error", err))
	}
}

// requestLogger logs one line per request at debug level, with status
// and timing.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(started)))
	})
}
