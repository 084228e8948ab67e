package service

import (
	"context"
	"log"
	"time"

	"github.com/example/switchboard/internal/domain"
	store "github.com/example/switchboard/internal/repository"
)

// audit appends one entry to the append-only audit log and mirrors the
// rendered line to the process log. Audit failures never fail the caller.
func (s *Service) audit(ctx context.Context, level, component, action, outcome, model string, role domain.Role, escalated bool, note string) {
	entry := &domain.AuditEntry{
		Timestamp:     time.Now().UTC(),
		Level:         level,
		Component:     component,
		Action:        action,
		Outcome:       outcome,
		ModelUsed:     model,
		RequesterRole: role,
		Escalated:     escalated,
		Note:          note,
	}

	if err := s.store.AppendAudit(ctx, entry); err != nil {
		log.Printf("WARN: failed to append audit entry: %v", err)
	}
	log.Println(store.RenderAuditLine(*entry))
}

// Audit returns the most recent audit entries for the reporting endpoint.
func (s *Service) Audit(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	return s.store.ListAudit(ctx, limit)
}
