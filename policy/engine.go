package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decision values produced by the permission matrix.
const (
	DecisionApprove = "approve"
	DecisionDeny    = "deny"
	DecisionQueue   = "queue"
)

// MatrixInput is the input document for a permission-matrix evaluation.
type MatrixInput struct {
	Role        string `json:"role"`
	Action      string `json:"action"`
	Dangerous   bool   `json:"dangerous"`
	AlwaysGated bool   `json:"always_gated"`
}

// Engine evaluates the role/danger permission matrix.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine prepares a policy engine from rego source.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("[data.approval_matrix.decision, data.approval_matrix.reason]"),
		rego.Module("approval_matrix.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate runs the matrix for one request and returns the decision
// (approve, deny or queue) plus the matched reason.
func (e *Engine) Evaluate(ctx context.Context, input MatrixInput) (string, string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", "", fmt.Errorf("failed to evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		// The default rules in the matrix make this unreachable for any
		// well-formed policy; queue is the safe answer if it happens.
		return DecisionQueue, "no matrix rule matched", nil
	}

	pair, ok := results[0].Expressions[0].Value.([]interface{})
	if !ok || len(pair) != 2 {
		return "", "", fmt.Errorf("unexpected policy result shape: %v", results[0].Expressions[0].Value)
	}

	decision, _ := pair[0].(string)
	reason, _ := pair[1].(string)
	switch decision {
	case DecisionApprove, DecisionDeny, DecisionQueue:
		return decision, reason, nil
	}
	return "", "", fmt.Errorf("unknown policy decision %q", decision)
}

// DefaultMatrix is the shipped permission matrix, checked in priority
// order: OWNER always approved; AGENT always denied (agents may never
// self-authorize); ADMIN approved only for actions that are neither
// dangerous nor always-gated; everything else is queued for a human.
const DefaultMatrix = `
package approval_matrix

import rego.v1

default decision := "queue"
default reason := "queued for human review"

decision := "approve" if input.role == "OWNER"

reason := "owner is always approved" if input.role == "OWNER"

decision := "deny" if input.role == "AGENT"

reason := "agents may never self-authorize external effects" if input.role == "AGENT"

decision := "approve" if {
	input.role == "ADMIN"
	not input.dangerous
	not input.always_gated
}

reason := "admin approved for non-dangerous action" if {
	input.role == "ADMIN"
	not input.dangerous
	not input.always_gated
}
`
