package handlers

import (
	"CaseKeeper/internal/config"
	"CaseKeeper/internal/middleware"
	"CaseKeeper/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	caseService *service.CaseService,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithCORS(config.AllowedOrigins()))
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)

	caseHandler := NewCaseHandler(caseService, logger, config)
	adminOnly := middleware.RequireAdmin(config.AdminPassword, config.AdminPasswordHash)

	r.Get("/healthz", Health)

	// Case routes
	r.Route("/api/cases", func(r chi.Router) {
		r.Get("/", caseHandler.List)
		r.Post("/", caseHandler.Create)
		r.Get("/{id}", caseHandler.Get)
		r.With(adminOnly).Put("/{id}", caseHandler.Update)
		r.Patch("/{id}/status", caseHandler.ChangeStatus)
		r.With(adminOnly).Delete("/{id}", caseHandler.Delete)
	})

	// Web front-end
	if config.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(config.StaticDir)))
	}

	return &Handler{Router: r}
}

// Health answers liveness checks.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
