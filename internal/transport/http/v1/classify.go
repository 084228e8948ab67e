package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/example/switchboard/internal/domain"
)

// Classify routes a message to a specialist handler.
// POST /v1/classify
func (h *Handler) Classify(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.ClassifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	decision, err := h.service.Classify(ctx, req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, decision)
}

// ListWorkers returns the worker registry names.
// GET /v1/workers
func (h *Handler) ListWorkers(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"workers": h.service.Registry().Names(),
	})
}

// ListAudit returns recent audit entries, newest first.
// GET /v1/audit
func (h *Handler) ListAudit(c echo.Context) error {
	ctx := c.Request().Context()

	entries, err := h.service.Audit(ctx, 100)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"entries": entries})
}

// ListModels proxies the model list from the LLM gateway.
// GET /v1/models
func (h *Handler) ListModels(c echo.Context) error {
	ctx := c.Request().Context()

	models, err := h.service.Models(ctx)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"object": "list", "data": models})
}
