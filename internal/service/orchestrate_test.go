package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/switchboard/internal/adapter/llm"
	"github.com/example/switchboard/internal/domain"
	"github.com/example/switchboard/internal/workers"
)

func TestRunRequiresTask(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	_, err := svc.Run(context.Background(), domain.RunRequest{Task: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task is required")
}

func TestRunForcedWorkersSkipPlanner(t *testing.T) {
	mock := llm.NewMockClient(
		llm.MockReply{Content: "combined summary of both workers"},
	)
	svc, _ := newTestService(t, mock, nil,
		echoWorker(workers.WorkerResearch, "found three relevant papers"),
		echoWorker(workers.WorkerAnalytics, "usage is up 12%"),
	)

	result, err := svc.Run(context.Background(), domain.RunRequest{
		Task:     "collect the quarterly numbers and the recent literature",
		Workers:  []string{workers.WorkerResearch, workers.WorkerAnalytics},
		UserRole: domain.RoleOwner,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.RunID, "run_"))
	assert.Equal(t, 2, result.WorkersRun)
	assert.Equal(t, 2, result.WorkersOk)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "combined summary of both workers", result.Summary)

	// Only the synthesis call hit a model; no planner call for a forced plan.
	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "power-model", calls[0].Model)
}

func TestRunForcedWorkersDiscardUnknown(t *testing.T) {
	mock := llm.NewMockClient(
		llm.MockReply{Content: "summary"},
	)
	svc, _ := newTestService(t, mock, nil, echoWorker(workers.WorkerResearch, "ok"))

	result, err := svc.Run(context.Background(), domain.RunRequest{
		Task:     "look into it",
		Workers:  []string{workers.WorkerResearch, "nonexistent-worker"},
		UserRole: domain.RoleOwner,
	})
	require.NoError(t, err)

	require.Len(t, result.SubTasks, 1)
	assert.Equal(t, workers.WorkerResearch, result.SubTasks[0].Worker)
}

func TestRunStuckWorkerTimesOutWithoutDelayingOthers(t *testing.T) {
	mock := llm.NewMockClient(
		llm.MockReply{Content: "partial summary"},
	)
	svc, _ := newTestService(t, mock, nil,
		echoWorker(workers.WorkerResearch, "done quickly"),
		stuckWorker(workers.WorkerEmail),
	)

	result, err := svc.Run(context.Background(), domain.RunRequest{
		Task:     "gather the notes and prepare the mail draft",
		Workers:  []string{workers.WorkerResearch, workers.WorkerEmail},
		UserRole: domain.RoleOwner,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.WorkersRun)
	assert.Equal(t, 1, result.WorkersOk)
	require.Len(t, result.Results, 2)

	byWorker := map[string]domain.WorkerResult{}
	for _, r := range result.Results {
		byWorker[r.Worker] = r
	}
	assert.True(t, byWorker[workers.WorkerResearch].Success)
	assert.Equal(t, "done quickly", byWorker[workers.WorkerResearch].Result)
	assert.False(t, byWorker[workers.WorkerEmail].Success)
	assert.Contains(t, byWorker[workers.WorkerEmail].Error, "timed out after")

	assert.Equal(t, "partial summary", result.Summary)
}

func TestRunPlannerDecomposesAndDispatches(t *testing.T) {
	plan := `[
		{"worker": "research", "label": "background", "payload": "find prior art"},
		{"worker": "code", "label": "prototype", "payload": "sketch the parser"}
	]`
	mock := llm.NewMockClient(
		llm.MockReply{Content: plan},
		llm.MockReply{Content: "both parts came together"},
	)
	svc, _ := newTestService(t, mock, nil,
		echoWorker(workers.WorkerResearch, "prior art found"),
		echoWorker(workers.WorkerCode, "parser sketched"),
	)

	result, err := svc.Run(context.Background(), domain.RunRequest{
		Task:     "build a small config parser",
		UserRole: domain.RoleOwner,
	})
	require.NoError(t, err)

	require.Len(t, result.SubTasks, 2)
	assert.Equal(t, "background", result.SubTasks[0].Label)
	assert.Equal(t, 2, result.WorkersOk)
	assert.Equal(t, "both parts came together", result.Summary)

	calls := mock.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "cheap-model", calls[0].Model)
	assert.Equal(t, "power-model", calls[1].Model)
}

func TestRunPlannerFallsBackToPowerModel(t *testing.T) {
	mock := llm.NewMockClient(
		llm.MockReply{Content: "I would break this into a few steps..."},
		llm.MockReply{Content: `[{"worker": "research", "label": "dig", "payload": "dig into it"}]`},
		llm.MockReply{Content: "final word"},
	)
	svc, _ := newTestService(t, mock, nil, echoWorker(workers.WorkerResearch, "dug"))

	result, err := svc.Run(context.Background(), domain.RunRequest{
		Task:     "figure out why signups dipped",
		UserRole: domain.RoleOwner,
	})
	require.NoError(t, err)

	require.Len(t, result.SubTasks, 1)
	assert.Equal(t, "final word", result.Summary)

	calls := mock.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "cheap-model", calls[0].Model)
	assert.Equal(t, "power-model", calls[1].Model)
	assert.Equal(t, "power-model", calls[2].Model)
}

func TestRunCouldNotDecompose(t *testing.T) {
	// No scripted replies: both planner calls fail.
	mock := llm.NewMockClient()
	svc, _ := newTestService(t, mock, nil, echoWorker(workers.WorkerResearch, "unused"))

	result, err := svc.Run(context.Background(), domain.RunRequest{
		Task:     "do the impossible",
		UserRole: domain.RoleOwner,
	})
	require.NoError(t, err)

	assert.Equal(t, CouldNotDecomposeSummary, result.Summary)
	assert.Empty(t, result.SubTasks)
	assert.Empty(t, result.Results)
	assert.Equal(t, 0, result.WorkersRun)
	assert.Len(t, mock.Calls(), 2)
}

func TestRunAllWorkersFailedSkipsSynthesis(t *testing.T) {
	mock := llm.NewMockClient()
	failing := workers.Func{WorkerName: workers.WorkerResearch, Fn: func(ctx context.Context, payload string) (string, error) {
		return "", fmt.Errorf("backend unavailable")
	}}
	svc, _ := newTestService(t, mock, nil, failing)

	result, err := svc.Run(context.Background(), domain.RunRequest{
		Task:     "check the archives",
		Workers:  []string{workers.WorkerResearch},
		UserRole: domain.RoleOwner,
	})
	require.NoError(t, err)

	assert.Equal(t, AllWorkersFailedSummary, result.Summary)
	assert.Equal(t, 1, result.WorkersRun)
	assert.Equal(t, 0, result.WorkersOk)
	require.Len(t, result.Results, 1)
	assert.Contains(t, result.Results[0].Error, "backend unavailable")

	// No synthesis call was spent on nothing.
	assert.Empty(t, mock.Calls())
}

func TestRunSynthesisFailureDegradesToConcatenation(t *testing.T) {
	plan := `[{"worker": "research", "label": "lookup", "payload": "look it up"}]`
	mock := llm.NewMockClient(
		llm.MockReply{Content: plan},
		llm.MockReply{Err: fmt.Errorf("gateway down")},
	)
	svc, _ := newTestService(t, mock, nil, echoWorker(workers.WorkerResearch, "the answer is 42"))

	result, err := svc.Run(context.Background(), domain.RunRequest{
		Task:     "answer the big question",
		UserRole: domain.RoleOwner,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.WorkersOk)
	assert.Contains(t, result.Summary, "synthesis unavailable")
	assert.Contains(t, result.Summary, "the answer is 42")
}

func TestRunDryRunPlansWithoutDispatching(t *testing.T) {
	mock := llm.NewMockClient()
	invoked := false
	tracker := workers.Func{WorkerName: workers.WorkerResearch, Fn: func(ctx context.Context, payload string) (string, error) {
		invoked = true
		return "should not run", nil
	}}
	svc, _ := newTestService(t, mock, nil, tracker)

	result, err := svc.Run(context.Background(), domain.RunRequest{
		Task:    "survey the landscape",
		Workers: []string{workers.WorkerResearch},
		DryRun:  true,
	})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	require.Len(t, result.SubTasks, 1)
	assert.Empty(t, result.Results)
	assert.Empty(t, result.Summary)
	assert.False(t, invoked)
	assert.Empty(t, mock.Calls())
}

func TestRunRiskySubTaskBlockedForUnattributedRun(t *testing.T) {
	mock := llm.NewMockClient()
	invoked := false
	tracker := workers.Func{WorkerName: workers.WorkerAnalytics, Fn: func(ctx context.Context, payload string) (string, error) {
		invoked = true
		return "purged", nil
	}}
	svc, _ := newTestService(t, mock, nil, tracker)

	// No user role on the request: the run carries agent privileges and the
	// gate denies the dangerous sub-task outright.
	result, err := svc.Run(context.Background(), domain.RunRequest{
		Task:    "purge the stale analytics rows",
		Workers: []string{workers.WorkerAnalytics},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.WorkersOk)
	require.Len(t, result.Results, 1)
	assert.Contains(t, result.Results[0].Error, "blocked by approval gate: denied")
	assert.False(t, invoked)
	assert.Equal(t, AllWorkersFailedSummary, result.Summary)
}

func TestRunRiskySubTaskApprovedForOwner(t *testing.T) {
	mock := llm.NewMockClient(
		llm.MockReply{Content: "cleanup complete"},
	)
	svc, _ := newTestService(t, mock, nil, echoWorker(workers.WorkerAnalytics, "purged 200 rows"))

	result, err := svc.Run(context.Background(), domain.RunRequest{
		Task:     "purge the stale analytics rows",
		Workers:  []string{workers.WorkerAnalytics},
		UserRole: domain.RoleOwner,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.WorkersOk)
	assert.Equal(t, "cleanup complete", result.Summary)
}

func TestPlanDiscardsUnknownWorkersAndCaps(t *testing.T) {
	var entries []string
	for i := 0; i < 7; i++ {
		entries = append(entries, fmt.Sprintf(`{"worker": "research", "label": "part-%d", "payload": "piece %d"}`, i, i))
	}
	entries = append(entries, `{"worker": "mystery", "label": "nope", "payload": "whatever"}`)
	plan := "[" + strings.Join(entries, ",") + "]"

	mock := llm.NewMockClient(llm.MockReply{Content: plan})
	svc, _ := newTestService(t, mock, nil, echoWorker(workers.WorkerResearch, "ok"))

	subtasks, err := svc.Plan(context.Background(), "a very wide task", "")
	require.NoError(t, err)

	require.Len(t, subtasks, 6)
	for _, st := range subtasks {
		assert.Equal(t, workers.WorkerResearch, st.Worker)
	}
}

func TestPlanAcceptsWrappedObject(t *testing.T) {
	mock := llm.NewMockClient(
		llm.MockReply{Content: `{"subtasks": [{"worker": "code", "payload": "write the thing"}]}`},
	)
	svc, _ := newTestService(t, mock, nil, echoWorker(workers.WorkerCode, "ok"))

	subtasks, err := svc.Plan(context.Background(), "write the thing", "")
	require.NoError(t, err)

	require.Len(t, subtasks, 1)
	assert.Equal(t, workers.WorkerCode, subtasks[0].Worker)
	// A missing label defaults to the worker name.
	assert.Equal(t, workers.WorkerCode, subtasks[0].Label)
}

func TestPlanRequiresTask(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	_, err := svc.Plan(context.Background(), "", "")
	require.Error(t, err)
}
