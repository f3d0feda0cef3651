package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/leveltrack/leveltrack/internal/api/handler"
	apimiddleware "github.com/leveltrack/leveltrack/internal/api/middleware"
	"github.com/leveltrack/leveltrack/internal/middleware"
	"github.com/leveltrack/leveltrack/internal/services/content"
	"github.com/leveltrack/leveltrack/internal/services/export"
	"github.com/leveltrack/leveltrack/internal/services/progress"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	ContentService *content.Service
	Tracker        *progress.Tracker
	Exporter       *export.Exporter
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	contentHandler := handler.NewContentHandler(cfg.ContentService)
	progressHandler := handler.NewProgressHandler(cfg.Tracker)
	exportHandler := handler.NewExportHandler(cfg.Exporter)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := apimiddleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Player and content routes
	api.HandleFunc("/players", contentHandler.RegisterPlayer).Methods(http.MethodPost)
	api.HandleFunc("/players/{player_id}", contentHandler.GetPlayer).Methods(http.MethodGet)
	api.HandleFunc("/prizes", contentHandler.CreatePrize).Methods(http.MethodPost)
	api.HandleFunc("/levels", contentHandler.CreateLevel).Methods(http.MethodPost)
	api.HandleFunc("/levels", contentHandler.ListLevels).Methods(http.MethodGet)

	// Progress routes
	api.HandleFunc("/players/{player_id}/levels/{level_id}/start", progressHandler.Start).Methods(http.MethodPost)
	api.HandleFunc("/players/{player_id}/levels/{level_id}/complete", progressHandler.Complete).Methods(http.MethodPost)
	api.HandleFunc("/players/{player_id}/levels/{level_id}", progressHandler.Get).Methods(http.MethodGet)

	// Export trigger
	api.HandleFunc("/export", exportHandler.Trigger).Methods(http.MethodPost)

	// Health check endpoint
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
