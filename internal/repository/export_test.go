package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/switchboard/internal/domain"
)

func TestRenderApprovalsMarkdown(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	resolved := created.Add(time.Hour)

	items := []domain.ApprovalItem{
		{
			ID:                "APR-0001",
			Status:            domain.ApprovalStatusApproved,
			RequestingHandler: "orchestrator",
			Action:            "send-email",
			RequesterRole:     domain.RoleAdmin,
			PayloadSummary:    "launch announcement",
			Reason:            "external effect",
			CreatedAt:         created,
			ResolvedAt:        &resolved,
			ResolvedBy:        "alice",
			ResolutionNote:    "ok to send",
		},
		{
			ID:                "APR-0002",
			Status:            domain.ApprovalStatusPending,
			RequestingHandler: "social-handler",
			Action:            "post-tweet",
			RequesterRole:     domain.RoleAdmin,
			CreatedAt:         created,
		},
	}

	out := RenderApprovalsMarkdown(items)

	assert.Contains(t, out, "## [APR-0001] 2026-03-14T09:26:53Z\n")
	assert.Contains(t, out, "- **Status:** APPROVED\n")
	assert.Contains(t, out, "- **Requesting Agent:** orchestrator\n")
	assert.Contains(t, out, "- **Requestor Role:** ADMIN\n")
	assert.Contains(t, out, "- **Payload:** launch announcement\n")
	assert.Contains(t, out, "- **Resolved At:** 2026-03-14T10:26:53Z\n")
	assert.Contains(t, out, "- **Resolved By:** alice\n")
	assert.Contains(t, out, "- **Resolution Note:** ok to send\n")

	// Blocks are separated by a literal --- line; unresolved fields render
	// as a dash.
	assert.Equal(t, 1, strings.Count(out, "---\n"))
	assert.Contains(t, out, "## [APR-0002] 2026-03-14T09:26:53Z\n")
	assert.Contains(t, out, "- **Resolved By:** -\n")
}

func TestRenderAuditLine(t *testing.T) {
	e := domain.AuditEntry{
		Timestamp:     time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Level:         "INFO",
		Component:     "classifier",
		Action:        "classify",
		Outcome:       "sre/deploy",
		ModelUsed:     "keyword",
		RequesterRole: domain.RoleAdmin,
		Escalated:     false,
		Note:          "source=chat dangerous=true",
	}

	line := RenderAuditLine(e)
	assert.Equal(t,
		`[INFO] 2026-03-14T09:26:53Z | agent=classifier | action=classify | user_role=ADMIN | model=keyword | outcome=sre/deploy | escalated=false | note="source=chat dangerous=true"`,
		line)
}
