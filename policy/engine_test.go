package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), DefaultMatrix)
	require.NoError(t, err)
	return engine
}

func TestMatrixOwnerAlwaysApproved(t *testing.T) {
	engine := newTestEngine(t)

	for _, input := range []MatrixInput{
		{Role: "OWNER", Action: "send-email"},
		{Role: "OWNER", Action: "drop-database", Dangerous: true},
		{Role: "OWNER", Action: "post-tweet", AlwaysGated: true},
		{Role: "OWNER", Action: "deploy-prod", Dangerous: true, AlwaysGated: true},
	} {
		decision, _, err := engine.Evaluate(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, DecisionApprove, decision, "input: %+v", input)
	}
}

func TestMatrixAgentAlwaysDenied(t *testing.T) {
	engine := newTestEngine(t)

	for _, input := range []MatrixInput{
		{Role: "AGENT", Action: "read-report"},
		{Role: "AGENT", Action: "drop-database", Dangerous: true},
	} {
		decision, reason, err := engine.Evaluate(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, DecisionDeny, decision, "input: %+v", input)
		assert.Contains(t, reason, "self-authorize")
	}
}

func TestMatrixAdmin(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name  string
		input MatrixInput
		want  string
	}{
		{"safe action approved", MatrixInput{Role: "ADMIN", Action: "run-report"}, DecisionApprove},
		{"dangerous action queued", MatrixInput{Role: "ADMIN", Action: "purge-logs", Dangerous: true}, DecisionQueue},
		{"always-gated action queued even when not dangerous", MatrixInput{Role: "ADMIN", Action: "post-tweet", AlwaysGated: true}, DecisionQueue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, _, err := engine.Evaluate(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, decision)
		})
	}
}

func TestMatrixUnknownRoleQueued(t *testing.T) {
	engine := newTestEngine(t)

	decision, _, err := engine.Evaluate(context.Background(), MatrixInput{Role: "VIEWER", Action: "anything"})
	require.NoError(t, err)
	assert.Equal(t, DecisionQueue, decision)
}
