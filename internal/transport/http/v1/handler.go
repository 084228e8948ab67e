// Package v1 implements the versioned JSON API of the dispatch layer.
package v1

import (
	"github.com/labstack/echo/v4"

	"github.com/example/switchboard/internal/service"
)

// Handler holds the service dependencies for the v1 API.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new v1 handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// RegisterRoutes registers all v1 routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/classify", h.Classify)

	e.POST("/v1/gate", h.Gate)
	e.GET("/v1/approvals/pending", h.ListPendingApprovals)
	e.POST("/v1/approvals/:approval_id/resolve", h.ResolveApproval)
	e.GET("/v1/approvals/export", h.ExportApprovals)

	e.POST("/v1/orchestrator/run", h.RunOrchestrator)
	e.POST("/v1/orchestrator/plan", h.PlanOrchestrator)

	e.GET("/v1/workers", h.ListWorkers)
	e.GET("/v1/audit", h.ListAudit)
	e.GET("/v1/models", h.ListModels)
}
