package domain

// ClassifyRequest is the transport shape for a classification call.
type ClassifyRequest struct {
	Source   string `json:"source"`
	UserRole Role   `json:"user_role"`
	Message  string `json:"message"`
	Context  string `json:"context,omitempty"`
}

// GateRequest is the transport shape for an approval-gate check.
type GateRequest struct {
	RequestingAgent string `json:"requesting_agent"`
	Action          string `json:"action"`
	UserRole        Role   `json:"user_role"`
	Payload         string `json:"payload,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

// GateResponse is the gate's answer.
type GateResponse struct {
	Decision   GateDecision `json:"decision"`
	Reason     string       `json:"reason"`
	ReleaseTo  string       `json:"release_to,omitempty"`
	ApprovalID string       `json:"approval_id,omitempty"`
	Logged     bool         `json:"logged"`
}

// ResolveRequest carries an approve/deny verdict for a pending item.
type ResolveRequest struct {
	Decision   string `json:"decision"` // "approve" or "deny"
	Note       string `json:"note,omitempty"`
	ResolvedBy string `json:"resolved_by,omitempty"`
}

// ResolveResponse reports the outcome of a resolve call.
type ResolveResponse struct {
	OK       bool   `json:"ok"`
	Decision string `json:"decision,omitempty"`
	ID       string `json:"id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RunRequest is the transport shape for an orchestrator run.
type RunRequest struct {
	Task     string   `json:"task"`
	Context  string   `json:"context,omitempty"`
	Workers  []string `json:"workers,omitempty"`
	UserRole Role     `json:"user_role,omitempty"`
	DryRun   bool     `json:"dry_run,omitempty"`
}

// PlanRequest is the dry-run planning variant.
type PlanRequest struct {
	Task    string `json:"task"`
	Context string `json:"context,omitempty"`
}

// PlanResponse is the planner-only answer.
type PlanResponse struct {
	Task        string    `json:"task"`
	SubTasks    []SubTask `json:"subtasks"`
	WorkerCount int       `json:"worker_count"`
}
