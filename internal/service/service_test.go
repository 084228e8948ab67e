package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/switchboard/internal/adapter/llm"
	"github.com/example/switchboard/internal/config"
	store "github.com/example/switchboard/internal/repository"
	"github.com/example/switchboard/internal/workers"
	"github.com/example/switchboard/policy"
)

// stubNotifier records notifications and can be scripted to fail.
type stubNotifier struct {
	mu       sync.Mutex
	err      error
	subjects []string
}

func (n *stubNotifier) Notify(ctx context.Context, subject, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subjects = append(n.subjects, subject)
	return n.err
}

func (n *stubNotifier) Subjects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.subjects))
	copy(out, n.subjects)
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		CheapModel:           "cheap-model",
		PowerModel:           "power-model",
		WorkerTimeout:        100 * time.Millisecond,
		MaxConcurrentWorkers: 4,
		MaxSubTasks:          6,
	}
}

func newTestService(t *testing.T, llmClient llm.LLMClient, notifier *stubNotifier, ws ...workers.Worker) (*Service, store.Store) {
	t.Helper()

	db, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	engine, err := policy.NewEngine(context.Background(), policy.DefaultMatrix)
	require.NoError(t, err)

	if notifier == nil {
		notifier = &stubNotifier{}
	}
	if llmClient == nil {
		llmClient = llm.NewMockClient()
	}

	svc := New(db, llmClient, notifier, workers.NewRegistry(ws...), testConfig(), engine)
	return svc, db
}

// echoWorker succeeds immediately with a canned result.
func echoWorker(name, result string) workers.Worker {
	return workers.Func{WorkerName: name, Fn: func(ctx context.Context, payload string) (string, error) {
		return result, nil
	}}
}

// stuckWorker never resolves until its context is cancelled.
func stuckWorker(name string) workers.Worker {
	return workers.Func{WorkerName: name, Fn: func(ctx context.Context, payload string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
}
