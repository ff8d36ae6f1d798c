// Package http exposes the tracker as a JSON API plus the embedded
// single-page client.
package http

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	applog "suivi/internal/log"
	"suivi/internal/services"
	appweb "suivi/web"
)

// Server wires the services to their routes. The clock is injected so
// month/year defaults stay deterministic in tests.
type Server struct {
	http.Server

	projects      *services.ProjectService
	collaborators *services.CollaboratorService
	recap         *services.RecapService
	now           func() time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, logger *applog.Logger, projects *services.ProjectService, collaborators *services.CollaboratorService, recap *services.RecapService) *Server {
	s := &Server{
		projects:      projects,
		collaborators: collaborators,
		recap:         recap,
		now:           time.Now,
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(applog.Middleware(logger.WithComponent(applog.ComponentHTTP)))
	router.Use(requestLogger)
	router.Use(securityHeaders)

	router.Get("/healthz", handleHealth)
	router.Get("/readyz", handleReady)

	router.Route("/projects", func(r chi.Router) {
		r.Get("/", s.handleListProjects)
		r.Post("/", s.handleCreateProject)
		r.Get("/recap", s.handleRecap)
		r.Put("/{id}", s.handleRenameProject)
		r.Delete("/{id}", s.handleDeleteProject)
	})
	router.Get("/recap", s.handleRecap)

	router.Route("/collaborators", func(r chi.Router) {
		r.Get("/", s.handleListCollaborators)
		r.Post("/", s.handleCreateCollaborator)
		r.Put("/{id}", s.handleUpdateCollaborator)
		r.Delete("/{id}", s.handleDeleteCollaborator)
		r.Put("/{id}/add-days", s.handleAddDays)
		r.Put("/{id}/comment", s.handleUpdateComment)
	})

	// Historical path of the TJM editor, kept as-is for the client.
	router.Put("/api/tjm/{id}/update-tjm", s.handleUpdateTJM)

	// Embedded single-page client.
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		fileServer := http.FileServer(http.FS(sub))
		router.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-cache")
			fileServer.ServeHTTP(w, r)
		})
		router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	s.Server = http.Server{
		Addr:    addr,
		Handler: router,
	}
	return s
}

// requestLogger logs each request with timing and status.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger := applog.FromContext(r.Context())
		logger.InfoContext(r.Context(), "Request completed",
			applog.FieldRequestID, chimiddleware.GetReqID(r.Context()),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, ww.Status(),
			applog.FieldDuration, time.Since(start).Milliseconds(),
			applog.FieldClientIP, r.RemoteAddr,
		)
	})
}

// securityHeaders adds the usual hardening headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
