package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes регистрирует служебные маршруты.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	chain := Chain(
		Recovery(h.logger),
		Logging(h.logger),
	)

	// Probes и метрики опрашиваются часто, поэтому без логирования запросов.
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /status", chain(http.HandlerFunc(h.Status)))
	mux.Handle("POST /trigger", chain(http.HandlerFunc(h.Trigger)))
}
