package handler

import (
	"net/http"

	"socialgraph/internal/httputil"
	"socialgraph/internal/metrics"
	"socialgraph/internal/service"
)

type SystemHandler struct {
	graphService *service.GraphService
	latency      *metrics.Recorder
}

func NewSystemHandler(graphService *service.GraphService, latency *metrics.Recorder) *SystemHandler {
	return &SystemHandler{graphService: graphService, latency: latency}
}

type metricsResponse struct {
	DurabilityErrors int64                  `json:"durability_errors"`
	Routes           []metrics.RouteLatency `json:"routes"`
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Metrics handles GET /metrics
func (h *SystemHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, metricsResponse{
		DurabilityErrors: h.graphService.DurabilityErrors(),
		Routes:           h.latency.Snapshot(),
	})
}
