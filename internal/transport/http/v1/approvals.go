package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/example/switchboard/internal/domain"
	store "github.com/example/switchboard/internal/repository"
)

// Gate checks an action against the permission matrix.
// POST /v1/gate
func (h *Handler) Gate(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.GateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Action == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "action is required"})
	}

	resp, err := h.service.Gate(ctx, req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, resp)
}

// ListPendingApprovals returns all items still waiting on a human.
// GET /v1/approvals/pending
func (h *Handler) ListPendingApprovals(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.service.Pending(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if items == nil {
		items = []domain.ApprovalItem{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"pending": items})
}

// ResolveApproval applies an approve/deny verdict to a pending item.
// POST /v1/approvals/:approval_id/resolve
func (h *Handler) ResolveApproval(c echo.Context) error {
	ctx := c.Request().Context()
	approvalID := c.Param("approval_id")

	var req domain.ResolveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ResolveResponse{OK: false, Error: "invalid request body"})
	}

	item, err := h.service.Resolve(ctx, approvalID, req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, store.ErrAlreadyResolved) {
			status = http.StatusConflict
		}
		return c.JSON(status, domain.ResolveResponse{OK: false, Error: err.Error()})
	}

	return c.JSON(http.StatusOK, domain.ResolveResponse{
		OK:       true,
		Decision: string(item.Status),
		ID:       item.ID,
	})
}

// ExportApprovals renders the full queue as markdown, read-only.
// GET /v1/approvals/export
func (h *Handler) ExportApprovals(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.service.Approvals(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(store.RenderApprovalsMarkdown(items)))
}
