package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/switchboard/internal/domain"
)

// The human-readable renderings below are read-only exports of the store's
// contents. The database is the source of truth; these formats are kept
// byte-compatible with the flat-file layout older tooling consumes.

// RenderApprovalsMarkdown renders approval items as markdown blocks, one
// per item, separated by a literal --- line.
func RenderApprovalsMarkdown(items []domain.ApprovalItem) string {
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteString("---\n")
		}
		fmt.Fprintf(&b, "## [%s] %s\n", item.ID, item.CreatedAt.UTC().Format(time.RFC3339))
		fmt.Fprintf(&b, "- **Status:** %s\n", item.Status)
		fmt.Fprintf(&b, "- **Requesting Agent:** %s\n", item.RequestingHandler)
		fmt.Fprintf(&b, "- **Action:** %s\n", item.Action)
		fmt.Fprintf(&b, "- **Requestor Role:** %s\n", item.RequesterRole)
		fmt.Fprintf(&b, "- **Payload:** %s\n", item.PayloadSummary)
		fmt.Fprintf(&b, "- **Reason:** %s\n", item.Reason)
		fmt.Fprintf(&b, "- **Resolved At:** %s\n", formatResolvedAt(item.ResolvedAt))
		fmt.Fprintf(&b, "- **Resolved By:** %s\n", orDash(item.ResolvedBy))
		fmt.Fprintf(&b, "- **Resolution Note:** %s\n", orDash(item.ResolutionNote))
	}
	return b.String()
}

// RenderAuditLine renders one audit entry in the fixed single-line format.
func RenderAuditLine(e domain.AuditEntry) string {
	return fmt.Sprintf("[%s] %s | agent=%s | action=%s | user_role=%s | model=%s | outcome=%s | escalated=%t | note=%q",
		e.Level, e.Timestamp.UTC().Format(time.RFC3339), e.Component, e.Action,
		e.RequesterRole, e.ModelUsed, e.Outcome, e.Escalated, e.Note)
}

func formatResolvedAt(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
