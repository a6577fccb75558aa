package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/contact-finder/internal/delivery/http/handler"
	"github.com/user/contact-finder/internal/delivery/http/middleware"
)

func New(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.HandleHealthCheck)

	mux.HandleFunc("POST /api/sessions", h.HandleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleGetSession)
	mux.HandleFunc("POST /api/sessions/{id}/start", h.HandleStartSession)
	mux.HandleFunc("POST /api/sessions/{id}/resume", h.HandleStartSession)
	mux.HandleFunc("POST /api/sessions/{id}/pause", h.HandlePauseSession)
	mux.HandleFunc("POST /api/sessions/{id}/cancel", h.HandleCancelSession)
	mux.HandleFunc("POST /api/sessions/{id}/resolve", h.HandleResolveAntiBot)
	mux.HandleFunc("GET /api/sessions/{id}/results", h.HandleGetResults)
	mux.HandleFunc("GET /api/sessions/{id}/export", h.HandleExportCSV)
	mux.HandleFunc("GET /api/sessions/{id}/events", h.HandleEvents)

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Apply middlewares
	var chainedHandler http.Handler = mux
	chainedHandler = middleware.Metrics(chainedHandler)
	chainedHandler = middleware.Logging(chainedHandler)

	return chainedHandler
}
