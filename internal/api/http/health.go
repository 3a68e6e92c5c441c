package http

import (
	"context"
	"net/http"

	"github.com/GoSim-25-26J-441/topology-backend/internal/topology/domain"
	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Uptime      float64 `json:"uptime"`
	UptimeHuman string  `json:"uptimeHuman,omitempty"`
	Service     string  `json:"service"`
	Version     string  `json:"version"`
	Store       string  `json:"store"`
	Nodes       int     `json:"nodes"`
	Edges       int     `json:"edges"`
	Error       string  `json:"error,omitempty"`
}

// HealthChecker probes the snapshot store.
type HealthChecker interface {
	CheckHealth(ctx context.Context) *domain.Health
	StoreName() string
}

type HealthHandler struct {
	serviceName string
	version     string
	checker     HealthChecker
}

func NewHealthHandler(serviceName, version string, checker HealthChecker) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		checker:     checker,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	res := h.checker.CheckHealth(c.Request.Context())

	status := http.StatusOK
	if res.Status != domain.StatusHealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, HealthResponse{
		Status:      res.Status,
		Timestamp:   res.Timestamp,
		Uptime:      res.Uptime,
		UptimeHuman: res.UptimeHuman,
		Service:     h.serviceName,
		Version:     h.version,
		Store:       h.checker.StoreName(),
		Nodes:       res.Nodes,
		Edges:       res.Edges,
		Error:       res.Error,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
