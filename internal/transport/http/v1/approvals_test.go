package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/switchboard/internal/domain"
)

// queueApproval pushes a gated action through the gate endpoint and returns
// the minted approval id.
func queueApproval(t *testing.T, e *echo.Echo, h *Handler) string {
	t.Helper()

	c, rec := postJSON(e, "/v1/gate",
		`{"requesting_agent":"social-handler","action":"post-tweet","user_role":"ADMIN","payload":"Announcing our new release!"}`)
	require.NoError(t, h.Gate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.GateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, domain.GateQueued, resp.Decision)
	require.NotEmpty(t, resp.ApprovalID)
	return resp.ApprovalID
}

func resolveApproval(t *testing.T, e *echo.Echo, h *Handler, id, body string) *httptest.ResponseRecorder {
	t.Helper()

	c, rec := postJSON(e, "/v1/approvals/"+id+"/resolve", body)
	c.SetPath("/v1/approvals/:approval_id/resolve")
	c.SetParamNames("approval_id")
	c.SetParamValues(id)
	require.NoError(t, h.ResolveApproval(c))
	return rec
}

func TestGateValidation(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, rec := postJSON(e, "/v1/gate", `{"user_role":"ADMIN"}`)
	require.NoError(t, h.Gate(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGateOwnerApproved(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	c, rec := postJSON(e, "/v1/gate",
		`{"requesting_agent":"email-handler","action":"send-email","user_role":"OWNER","payload":"hi"}`)
	require.NoError(t, h.Gate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.GateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.GateApproved, resp.Decision)
	assert.Equal(t, "email-handler", resp.ReleaseTo)
	assert.Empty(t, resp.ApprovalID)
}

func TestGateQueuesAndListsPending(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	id := queueApproval(t, e, h)

	req := httptest.NewRequest(http.MethodGet, "/v1/approvals/pending", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.ListPendingApprovals(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Pending []domain.ApprovalItem `json:"pending"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Pending, 1)
	assert.Equal(t, id, resp.Pending[0].ID)
	assert.Equal(t, domain.ApprovalStatusPending, resp.Pending[0].Status)
}

func TestResolveApprovalFlow(t *testing.T) {
	ctx := context.Background()
	e := echo.New()
	h, db := newTestHandler(t)

	id := queueApproval(t, e, h)

	rec := resolveApproval(t, e, h, id, `{"decision":"approve","note":"looks good","resolved_by":"alice"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp domain.ResolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, string(domain.ApprovalStatusApproved), resp.Decision)
	assert.Equal(t, id, resp.ID)

	item, err := db.GetApproval(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, domain.ApprovalStatusApproved, item.Status)
	assert.Equal(t, "alice", item.ResolvedBy)
}

func TestResolveApprovalTwiceConflicts(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	id := queueApproval(t, e, h)

	first := resolveApproval(t, e, h, id, `{"decision":"deny","note":"not now"}`)
	require.Equal(t, http.StatusOK, first.Code)

	second := resolveApproval(t, e, h, id, `{"decision":"approve"}`)
	assert.Equal(t, http.StatusConflict, second.Code)

	var resp domain.ResolveResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "already resolved")
}

func TestResolveApprovalNotFound(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	rec := resolveApproval(t, e, h, "APR-9999", `{"decision":"approve"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportApprovalsMarkdown(t *testing.T) {
	e := echo.New()
	h, _ := newTestHandler(t)

	id := queueApproval(t, e, h)

	req := httptest.NewRequest(http.MethodGet, "/v1/approvals/export", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.ExportApprovals(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/markdown"))
	body := rec.Body.String()
	assert.Contains(t, body, "## ["+id+"]")
	assert.Contains(t, body, "- **Status:** PENDING")
}
