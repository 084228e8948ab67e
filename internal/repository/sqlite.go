package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/switchboard/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at dsn and migrates it.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS approvals (
			approval_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			requesting_handler TEXT NOT NULL,
			action TEXT NOT NULL,
			requester_role TEXT NOT NULL,
			payload_summary TEXT,
			reason TEXT,
			created_at DATETIME NOT NULL,
			resolved_at DATETIME,
			resolved_by TEXT,
			resolution_note TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_approvals_status ON approvals(status, created_at)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts DATETIME NOT NULL,
			level TEXT NOT NULL,
			component TEXT NOT NULL,
			action TEXT NOT NULL,
			outcome TEXT NOT NULL,
			model_used TEXT,
			requester_role TEXT,
			escalated INTEGER NOT NULL DEFAULT 0,
			note TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_ts ON audit_log(ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// NextApprovalID scans existing approval ids, takes the maximum numeric
// suffix and increments it. Writers are serialized by the single-process
// assumption; there is no lock here.
func (s *SQLiteStore) NextApprovalID(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT approval_id FROM approvals`)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	max := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		suffix, ok := strings.CutPrefix(id, "APR-")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(suffix); err == nil && n > max {
			max = n
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	return fmt.Sprintf("APR-%04d", max+1), nil
}

// CreateApproval inserts a new approval item.
func (s *SQLiteStore) CreateApproval(ctx context.Context, item *domain.ApprovalItem) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO approvals (approval_id, status, requesting_handler, action, requester_role, payload_summary, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Status, item.RequestingHandler, item.Action, item.RequesterRole,
		item.PayloadSummary, item.Reason, item.CreatedAt)
	return err
}

// GetApproval retrieves one approval item by id.
func (s *SQLiteStore) GetApproval(ctx context.Context, id string) (*domain.ApprovalItem, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT approval_id, status, requesting_handler, action, requester_role, payload_summary, reason, created_at, resolved_at, resolved_by, resolution_note
		 FROM approvals WHERE approval_id = ?`, id)

	item, err := scanApproval(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ListApprovals returns every approval item, oldest first.
func (s *SQLiteStore) ListApprovals(ctx context.Context) ([]domain.ApprovalItem, error) {
	return s.listApprovals(ctx,
		`SELECT approval_id, status, requesting_handler, action, requester_role, payload_summary, reason, created_at, resolved_at, resolved_by, resolution_note
		 FROM approvals ORDER BY approval_id ASC`)
}

// ListPendingApprovals returns all items still in PENDING, oldest first.
func (s *SQLiteStore) ListPendingApprovals(ctx context.Context) ([]domain.ApprovalItem, error) {
	return s.listApprovals(ctx,
		`SELECT approval_id, status, requesting_handler, action, requester_role, payload_summary, reason, created_at, resolved_at, resolved_by, resolution_note
		 FROM approvals WHERE status = 'PENDING' ORDER BY approval_id ASC`)
}

func (s *SQLiteStore) listApprovals(ctx context.Context, query string) ([]domain.ApprovalItem, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ApprovalItem
	for rows.Next() {
		item, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApproval(r rowScanner) (*domain.ApprovalItem, error) {
	var item domain.ApprovalItem
	var payload, reason, resolvedBy, note sql.NullString
	var resolvedAt sql.NullTime
	err := r.Scan(&item.ID, &item.Status, &item.RequestingHandler, &item.Action,
		&item.RequesterRole, &payload, &reason, &item.CreatedAt, &resolvedAt, &resolvedBy, &note)
	if err != nil {
		return nil, err
	}
	if payload.Valid {
		item.PayloadSummary = payload.String
	}
	if reason.Valid {
		item.Reason = reason.String
	}
	if resolvedAt.Valid {
		item.ResolvedAt = &resolvedAt.Time
	}
	if resolvedBy.Valid {
		item.ResolvedBy = resolvedBy.String
	}
	if note.Valid {
		item.ResolutionNote = note.String
	}
	return &item, nil
}

// ResolveApproval applies the PENDING -> APPROVED|DENIED transition in
// place. The status guard in the WHERE clause makes a second resolve a
// no-op reported as false.
func (s *SQLiteStore) ResolveApproval(ctx context.Context, id string, status domain.ApprovalStatus, resolvedBy, note string) (bool, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE approvals SET status = ?, resolved_at = ?, resolved_by = ?, resolution_note = ?
		 WHERE approval_id = ? AND status = ?`,
		status, now, resolvedBy, note, id, domain.ApprovalStatusPending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AppendAudit appends one audit entry. The log is append-only; nothing in
// the core reads it back except the reporting endpoint.
func (s *SQLiteStore) AppendAudit(ctx context.Context, entry *domain.AuditEntry) error {
	escalated := 0
	if entry.Escalated {
		escalated = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (ts, level, component, action, outcome, model_used, requester_role, escalated, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp, entry.Level, entry.Component, entry.Action, entry.Outcome,
		entry.ModelUsed, entry.RequesterRole, escalated, entry.Note)
	return err
}

// ListAudit returns the most recent audit entries, newest first.
func (s *SQLiteStore) ListAudit(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, level, component, action, outcome, model_used, requester_role, escalated, note
		 FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var model, role, note sql.NullString
		var escalated int
		if err := rows.Scan(&e.Timestamp, &e.Level, &e.Component, &e.Action, &e.Outcome, &model, &role, &escalated, &note); err != nil {
			return nil, err
		}
		if model.Valid {
			e.ModelUsed = model.String
		}
		if role.Valid {
			e.RequesterRole = domain.Role(role.String)
		}
		e.Escalated = escalated != 0
		if note.Valid {
			e.Note = note.String
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
