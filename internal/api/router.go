package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Scorecard/internal/config"
	"github.com/MikeSquared-Agency/Scorecard/internal/export"
	"github.com/MikeSquared-Agency/Scorecard/internal/hermes"
	"github.com/MikeSquared-Agency/Scorecard/internal/scoring"
	"github.com/MikeSquared-Agency/Scorecard/internal/store"
)

func NewRouter(s store.Store, h hermes.Client, agg *scoring.Aggregator, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.Server.RateLimitPerMinute))

	aliases, err := cfg.Aliases()
	if err != nil {
		logger.Warn("invalid column overrides, using defaults", "error", err)
		aliases = nil
	}

	sessions := NewSessionsHandler(s, h, agg, SessionsConfig{
		DefaultPath:    cfg.Input.DefaultPath,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Aliases:        aliases,
		Defaults: store.Options{
			LockWeights: cfg.Editor.LockWeights,
			ScoreStep:   cfg.Editor.ScoreStep,
			ShowNotes:   cfg.Editor.ShowNotes,
		},
	}, logger)
	exports := NewExportHandler(sessions, export.NewFormatter(cfg.Export.BOM, logger))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", sessions.Create)
		r.Get("/sessions", sessions.List)

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", sessions.Get)
			r.Delete("/", sessions.Delete)
			r.Patch("/options", sessions.UpdateOptions)
			r.Patch("/items/{itemID}", sessions.UpdateItem)
			r.Get("/summary", sessions.Summary)
			r.Get("/export/summary.csv", exports.Summary)
			r.Get("/export/full.csv", exports.Full)
		})
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
