package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/example/switchboard/internal/domain"
)

// RunOrchestrator decomposes a composite task, dispatches its sub-tasks
// and returns the synthesized result.
// POST /v1/orchestrator/run
func (h *Handler) RunOrchestrator(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.RunRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Task == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "task is required"})
	}

	result, err := h.service.Run(ctx, req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// PlanOrchestrator runs the decomposition step only.
// POST /v1/orchestrator/plan
func (h *Handler) PlanOrchestrator(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.PlanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Task == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "task is required"})
	}

	subtasks, err := h.service.Plan(ctx, req.Task, req.Context)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if subtasks == nil {
		subtasks = []domain.SubTask{}
	}

	return c.JSON(http.StatusOK, domain.PlanResponse{
		Task:        req.Task,
		SubTasks:    subtasks,
		WorkerCount: len(subtasks),
	})
}
