package server

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dk3682/muscle-avatar/internal/game"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	game   *game.Engine
	log    *slog.Logger
	apiKey string
	whois  WhoIser
	router chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey leaves
// mutating routes open (tailnet-only deployments).
func New(engine *game.Engine, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		game:   engine,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/xp-table", s.handleXPTable)
		r.Get("/preview-gain", s.handlePreviewGain)
		r.Get("/export", s.handleExport)
		r.Get("/me", s.handleMe)

		r.Group(func(r chi.Router) {
			if s.apiKey != "" {
				r.Use(APIKeyAuth(s.apiKey))
			}
			r.Put("/profile/name", s.handleChangeName)
			r.Post("/profile/appearance", s.handleCycleAppearance)
			r.Post("/profile/confirm", s.handleConfirmProfile)

			r.Post("/set/start", s.handleStartSet)
			r.Put("/set/form", s.handleSetForm)
			r.Post("/set/advance", s.handleAdvance)
			r.Post("/set/tap", s.handleTap)
			r.Post("/set/ack", s.handleAcknowledge)
			r.Delete("/set", s.handleAbandon)

			r.Post("/reset", s.handleReset)
			r.Post("/import", s.handleImport)
		})
	})
}

// MountMetrics exposes the Prometheus registry at path.
func (s *Server) MountMetrics(path string) {
	s.router.Handle(path, promhttp.Handler())
}

// MountMCP exposes a streamable-HTTP MCP handler at path.
func (s *Server) MountMCP(path string, h http.Handler) {
	s.router.Handle(path, h)
}

// SetFrontend mounts a static view-layer build.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		// Try to serve the exact file first
		f, err := webFS.Open(r.URL.Path[1:]) // strip leading /
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		// Fallback to index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
