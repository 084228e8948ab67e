package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/example/switchboard/internal/domain"
	store "github.com/example/switchboard/internal/repository"
	"github.com/example/switchboard/policy"
)

// Gate decides whether an action may proceed. The permission matrix runs
// in priority order: OWNER always approved, AGENT always denied, ADMIN
// approved only for actions that are neither dangerous nor always-gated;
// everything else is queued as a new PENDING approval item.
func (s *Service) Gate(ctx context.Context, req domain.GateRequest) (*domain.GateResponse, error) {
	if strings.TrimSpace(req.Action) == "" {
		return nil, fmt.Errorf("action is required")
	}

	dangerous := policy.IsDangerous(req.Action + " " + req.Payload)
	alwaysGated := policy.IsAlwaysGatedAction(req.Action)

	verdict, reason, err := s.policyEngine.Evaluate(ctx, policy.MatrixInput{
		Role:        string(req.UserRole),
		Action:      req.Action,
		Dangerous:   dangerous,
		AlwaysGated: alwaysGated,
	})
	if err != nil {
		return nil, fmt.Errorf("policy evaluation failed: %w", err)
	}

	resp := &domain.GateResponse{Reason: reason, Logged: true}

	switch verdict {
	case policy.DecisionApprove:
		resp.Decision = domain.GateApproved
		resp.ReleaseTo = req.RequestingAgent

	case policy.DecisionDeny:
		resp.Decision = domain.GateDenied

	default: // queue
		id, err := s.store.NextApprovalID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to mint approval id: %w", err)
		}
		item := &domain.ApprovalItem{
			ID:                id,
			Status:            domain.ApprovalStatusPending,
			RequestingHandler: req.RequestingAgent,
			Action:            req.Action,
			RequesterRole:     req.UserRole,
			PayloadSummary:    summarize(req.Payload),
			Reason:            req.Reason,
			CreatedAt:         time.Now().UTC(),
		}
		if err := s.store.CreateApproval(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to create approval: %w", err)
		}

		// Best-effort alert. The stored item is the source of truth;
		// delivery failure is logged and swallowed.
		if err := s.notifier.Notify(ctx, "Approval required: "+id,
			fmt.Sprintf("%s wants to run %q (role: %s): %s", req.RequestingAgent, req.Action, req.UserRole, item.PayloadSummary)); err != nil {
			log.Printf("WARN: approval notification for %s failed: %v", id, err)
		}

		resp.Decision = domain.GateQueued
		resp.ApprovalID = id
	}

	s.audit(ctx, "INFO", "gate", req.Action, string(resp.Decision), "",
		req.UserRole, false, fmt.Sprintf("agent=%s dangerous=%t approval_id=%s", req.RequestingAgent, dangerous, resp.ApprovalID))

	return resp, nil
}

// Resolve applies an approve/deny verdict to a pending item. It fails
// with ErrNotFound for unknown ids and ErrAlreadyResolved for items that
// have left PENDING; a second resolve never silently re-applies.
func (s *Service) Resolve(ctx context.Context, id string, req domain.ResolveRequest) (*domain.ApprovalItem, error) {
	var status domain.ApprovalStatus
	switch strings.ToLower(strings.TrimSpace(req.Decision)) {
	case "approve":
		status = domain.ApprovalStatusApproved
	case "deny":
		status = domain.ApprovalStatusDenied
	default:
		return nil, fmt.Errorf("decision must be \"approve\" or \"deny\"")
	}

	item, err := s.store.GetApproval(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get approval: %w", err)
	}
	if item == nil {
		return nil, store.ErrNotFound
	}
	if item.Status != domain.ApprovalStatusPending {
		return nil, store.ErrAlreadyResolved
	}

	resolvedBy := req.ResolvedBy
	if resolvedBy == "" {
		resolvedBy = "operator"
	}
	updated, err := s.store.ResolveApproval(ctx, id, status, resolvedBy, req.Note)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve approval: %w", err)
	}
	if !updated {
		return nil, store.ErrAlreadyResolved
	}

	s.audit(ctx, "INFO", "gate", "resolve", string(status), "", "", false,
		fmt.Sprintf("approval_id=%s resolved_by=%s", id, resolvedBy))

	resolved, err := s.store.GetApproval(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload approval: %w", err)
	}
	return resolved, nil
}

// Pending lists every approval item still waiting on a human.
func (s *Service) Pending(ctx context.Context) ([]domain.ApprovalItem, error) {
	return s.store.ListPendingApprovals(ctx)
}

// Approvals lists every approval item, for the read-only export.
func (s *Service) Approvals(ctx context.Context) ([]domain.ApprovalItem, error) {
	return s.store.ListApprovals(ctx)
}

// summarize trims a payload down to a one-line summary for the queue.
func summarize(payload string) string {
	flat := strings.Join(strings.Fields(payload), " ")
	if len(flat) > 200 {
		return flat[:200] + "..."
	}
	return flat
}
