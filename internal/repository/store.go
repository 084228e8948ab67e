// Package store persists the approval queue and the append-only audit log.
package store

import (
	"context"
	"errors"

	"github.com/example/switchboard/internal/domain"
)

// ErrNotFound is returned when no approval item has the requested id.
var ErrNotFound = errors.New("approval not found")

// ErrAlreadyResolved is returned when resolve is attempted on an item that
// has already left PENDING. Double resolution is surfaced, never masked.
var ErrAlreadyResolved = errors.New("approval already resolved")

// Store is the persistence boundary of the dispatch core.
type Store interface {
	// NextApprovalID mints the next APR-%04d id by scanning existing
	// items for the highest numeric suffix. Single-writer assumption.
	NextApprovalID(ctx context.Context) (string, error)

	CreateApproval(ctx context.Context, item *domain.ApprovalItem) error
	GetApproval(ctx context.Context, id string) (*domain.ApprovalItem, error)
	ListApprovals(ctx context.Context) ([]domain.ApprovalItem, error)
	ListPendingApprovals(ctx context.Context) ([]domain.ApprovalItem, error)

	// ResolveApproval performs the single PENDING -> APPROVED|DENIED
	// transition. It returns false when the item exists but is no longer
	// pending.
	ResolveApproval(ctx context.Context, id string, status domain.ApprovalStatus, resolvedBy, note string) (bool, error)

	AppendAudit(ctx context.Context, entry *domain.AuditEntry) error
	ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error)

	Close() error
}
