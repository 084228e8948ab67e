// Package domain defines the core types shared across the dispatch layer.
package domain

import "time"

// Role is the requester's privilege level.
type Role string

const (
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
	RoleAgent Role = "AGENT"
)

// ModelTier identifies which rung of the escalation ladder produced a
// classification.
type ModelTier string

const (
	TierFree       ModelTier = "free"
	TierEscalated1 ModelTier = "escalated-1"
	TierEscalated2 ModelTier = "escalated-2"
)

// GateDecision is the outcome of an approval-gate check.
type GateDecision string

const (
	GateApproved GateDecision = "approved"
	GateDenied   GateDecision = "denied"
	GateQueued   GateDecision = "queued"
)

// ApprovalStatus is the lifecycle state of an approval item.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusDenied   ApprovalStatus = "DENIED"
)

// UnknownIntent is returned when every escalation tier fails.
const UnknownIntent = "unknown/unclassified"

// RoutingDecision is the classifier's answer: where a request should go
// and under what constraints. Immutable once returned.
type RoutingDecision struct {
	Intent           string    `json:"intent"`
	TargetHandler    string    `json:"target_handler"`
	ModelTier        ModelTier `json:"model_tier"`
	RequiresApproval bool      `json:"requires_approval"`
	Dangerous        bool      `json:"dangerous"`
	DangerTags       []string  `json:"danger_tags,omitempty"`
	Escalated        bool      `json:"escalated"`
	Reason           string    `json:"reason"`
}

// ApprovalItem is one entry in the pending-approval queue. Items are
// append-only: resolution is an in-place status transition, never a new
// record, and items are never deleted.
type ApprovalItem struct {
	ID                string         `json:"id"`
	Status            ApprovalStatus `json:"status"`
	RequestingHandler string         `json:"requesting_handler"`
	Action            string         `json:"action"`
	RequesterRole     Role           `json:"requester_role"`
	PayloadSummary    string         `json:"payload_summary"`
	Reason            string         `json:"reason"`
	CreatedAt         time.Time      `json:"created_at"`
	ResolvedAt        *time.Time     `json:"resolved_at,omitempty"`
	ResolvedBy        string         `json:"resolved_by,omitempty"`
	ResolutionNote    string         `json:"resolution_note,omitempty"`
}

// SubTask is one element of a decomposition plan.
type SubTask struct {
	Worker  string `json:"worker"`
	Label   string `json:"label"`
	Payload string `json:"payload"`
}

// WorkerResult is the terminal outcome of dispatching one sub-task. Every
// sub-task reaches exactly one WorkerResult; failures are never retried.
type WorkerResult struct {
	Worker     string `json:"worker"`
	Label      string `json:"label"`
	Success    bool   `json:"success"`
	Result     string `json:"result,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// AuditEntry is one append-only audit log record. The core only writes
// these; reporting collaborators read them.
type AuditEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Level         string    `json:"level"`
	Component     string    `json:"component"`
	Action        string    `json:"action"`
	Outcome       string    `json:"outcome"`
	ModelUsed     string    `json:"model_used"`
	RequesterRole Role      `json:"requester_role"`
	Escalated     bool      `json:"escalated"`
	Note          string    `json:"note"`
}

// RunResult is the orchestrator's terminal answer for one composite task.
type RunResult struct {
	RunID      string         `json:"run_id"`
	Task       string         `json:"task"`
	SubTasks   []SubTask      `json:"subtasks"`
	Results    []WorkerResult `json:"results"`
	Summary    string         `json:"summary"`
	WorkersRun int            `json:"workers_run"`
	WorkersOk  int            `json:"workers_ok"`
	DurationMs int64          `json:"duration_ms"`
	DryRun     bool           `json:"dry_run,omitempty"`
}
