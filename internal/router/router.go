package router

import (
	"net/http"

	"github.com/BerylCAtieno/paper-genie/internal/handlers"
	"github.com/BerylCAtieno/paper-genie/internal/middleware"
	"github.com/BerylCAtieno/paper-genie/internal/services"
	"github.com/BerylCAtieno/paper-genie/internal/utils"

	"github.com/gorilla/mux"
)

func NewRouter(service services.AnalysisService, maxUploadBytes int64, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	h := handlers.NewAnalysisHandler(service, maxUploadBytes, logger)

	// Health check
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// UI
	r.HandleFunc("/", h.Index).Methods(http.MethodGet)
	r.HandleFunc("/extract", h.Extract).Methods(http.MethodPost)
	r.HandleFunc("/analyze", h.Analyze).Methods(http.MethodPost)

	return r
}
