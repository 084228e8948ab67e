package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/example/switchboard/internal/domain"
	"github.com/example/switchboard/policy"
)

// AllWorkersFailedSummary is returned when no sub-task succeeded; no
// synthesis call is spent on nothing.
const AllWorkersFailedSummary = "all workers failed; no summary produced"

// CouldNotDecomposeSummary is the terminal result when the planner yields
// no usable sub-tasks.
const CouldNotDecomposeSummary = "could not decompose task into sub-tasks"

const synthesisSystemPrompt = `You are the synthesis step of a multi-agent dispatch system.
You receive the outputs of several workers that each handled one part of a larger task,
including any that failed. Compose them into one coherent answer for the original task.
Mention failed parts briefly; do not invent results for them.`

func decomposeSystemPrompt(workerNames []string) string {
	return fmt.Sprintf(`You are the planner of a multi-agent dispatch system.
Split the user's task into at most 6 mutually independent sub-tasks.
Each sub-task is handled by exactly one worker from this registry: %s.
Sub-tasks must not depend on each other's results; express a dependency as one larger sub-task.
Respond with strict JSON only, no prose:
[{"worker": "<registry name>", "label": "<short label>", "payload": "<instructions for the worker>"}]`,
		strings.Join(workerNames, ", "))
}

// Run executes a composite task: decompose, gate risky sub-tasks, dispatch
// the rest concurrently, synthesize. It always returns a terminal,
// well-formed result; individual worker failures never abort the job.
func (s *Service) Run(ctx context.Context, req domain.RunRequest) (*domain.RunResult, error) {
	if strings.TrimSpace(req.Task) == "" {
		return nil, fmt.Errorf("task is required")
	}
	role := req.UserRole
	if role == "" {
		// Unattributed runs carry agent privileges: risky sub-tasks will
		// be denied rather than self-approved.
		role = domain.RoleAgent
	}

	runID := "run_" + uuid.New().String()[:8]
	start := time.Now()

	var subtasks []domain.SubTask
	if len(req.Workers) > 0 {
		subtasks = s.forcedPlan(req.Workers, req.Task)
	} else {
		subtasks = s.decompose(ctx, req.Task, req.Context)
	}

	if req.DryRun {
		return &domain.RunResult{
			RunID:      runID,
			Task:       req.Task,
			SubTasks:   subtasks,
			Results:    []domain.WorkerResult{},
			DryRun:     true,
			DurationMs: time.Since(start).Milliseconds(),
		}, nil
	}

	if len(subtasks) == 0 {
		s.audit(ctx, "WARN", "orchestrator", "run", "no-plan", s.config.PowerModel, role, false, runID+" produced no usable sub-tasks")
		return &domain.RunResult{
			RunID:      runID,
			Task:       req.Task,
			SubTasks:   []domain.SubTask{},
			Results:    []domain.WorkerResult{},
			Summary:    CouldNotDecomposeSummary,
			DurationMs: time.Since(start).Milliseconds(),
		}, nil
	}

	results := s.dispatchAll(ctx, role, subtasks)

	workersOk := 0
	for _, r := range results {
		if r.Success {
			workersOk++
		}
	}

	var summary string
	if workersOk > 0 {
		summary = s.synthesize(ctx, req.Task, results)
	} else {
		summary = AllWorkersFailedSummary
	}

	s.audit(ctx, "INFO", "orchestrator", "run", fmt.Sprintf("%d/%d workers ok", workersOk, len(results)),
		s.config.PowerModel, role, false, fmt.Sprintf("%s task=%s", runID, summarize(req.Task)))

	return &domain.RunResult{
		RunID:      runID,
		Task:       req.Task,
		SubTasks:   subtasks,
		Results:    results,
		Summary:    summary,
		WorkersRun: len(results),
		WorkersOk:  workersOk,
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}

// Plan runs the decomposition step only.
func (s *Service) Plan(ctx context.Context, task, taskContext string) ([]domain.SubTask, error) {
	if strings.TrimSpace(task) == "" {
		return nil, fmt.Errorf("task is required")
	}
	return s.decompose(ctx, task, taskContext), nil
}

// forcedPlan builds one sub-task per forced worker name, skipping names
// the registry does not know.
func (s *Service) forcedPlan(names []string, task string) []domain.SubTask {
	var subtasks []domain.SubTask
	for _, name := range names {
		if !s.registry.Has(name) {
			log.Printf("WARN: forced worker %q not in registry, discarded", name)
			continue
		}
		subtasks = append(subtasks, domain.SubTask{Worker: name, Label: name, Payload: task})
		if len(subtasks) == s.config.MaxSubTasks {
			break
		}
	}
	return subtasks
}

// decompose asks the planner for sub-tasks, cheap model first and the
// high-capability model as fallback. An empty return means the task could
// not be decomposed; the caller short-circuits without touching workers.
func (s *Service) decompose(ctx context.Context, task, taskContext string) []domain.SubTask {
	user := task
	if taskContext != "" {
		user += "\n\nContext: " + taskContext
	}
	prompt := decomposeSystemPrompt(s.registry.Names())

	for _, model := range []string{s.config.CheapModel, s.config.PowerModel} {
		content, err := s.llmClient.Complete(ctx, model, prompt, user)
		if err != nil {
			log.Printf("WARN: planner call to %s failed: %v", model, err)
			continue
		}
		subtasks := s.parsePlan(content)
		if len(subtasks) > 0 {
			return subtasks
		}
		log.Printf("WARN: planner reply from %s had no usable sub-tasks", model)
	}
	return nil
}

// parsePlan extracts sub-tasks from a planner reply. Unknown workers are
// discarded rather than failing the plan; the result is capped at the
// sub-task limit.
func (s *Service) parsePlan(content string) []domain.SubTask {
	raw := stripCodeFence(content)

	var planned []domain.SubTask
	if err := json.Unmarshal([]byte(raw), &planned); err != nil {
		// Some models wrap the array in an object.
		var wrapper struct {
			SubTasks []domain.SubTask `json:"subtasks"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapper); err != nil {
			return nil
		}
		planned = wrapper.SubTasks
	}

	var subtasks []domain.SubTask
	for _, st := range planned {
		if !s.registry.Has(st.Worker) {
			log.Printf("WARN: planned worker %q not in registry, discarded", st.Worker)
			continue
		}
		if strings.TrimSpace(st.Payload) == "" {
			continue
		}
		if st.Label == "" {
			st.Label = st.Worker
		}
		subtasks = append(subtasks, st)
		if len(subtasks) == s.config.MaxSubTasks {
			break
		}
	}
	return subtasks
}

// dispatchAll gates risky sub-tasks, then runs the rest concurrently under
// the semaphore. Every sub-task reaches a terminal WorkerResult: a denied
// or queued gate check, a timeout, and a worker error are all recorded
// failures, never aborts.
func (s *Service) dispatchAll(ctx context.Context, role domain.Role, subtasks []domain.SubTask) []domain.WorkerResult {
	results := make([]domain.WorkerResult, len(subtasks))
	sem := semaphore.NewWeighted(s.config.MaxConcurrentWorkers)
	var wg sync.WaitGroup

	for i, st := range subtasks {
		if policy.IsDangerous(st.Label + " " + st.Payload) {
			gateResp, err := s.Gate(ctx, domain.GateRequest{
				RequestingAgent: "orchestrator",
				Action:          st.Worker + ":" + st.Label,
				UserRole:        role,
				Payload:         st.Payload,
				Reason:          "risky sub-task dispatch",
			})
			if err != nil {
				results[i] = domain.WorkerResult{Worker: st.Worker, Label: st.Label, Error: fmt.Sprintf("gate check failed: %v", err)}
				continue
			}
			if gateResp.Decision != domain.GateApproved {
				msg := fmt.Sprintf("blocked by approval gate: %s", gateResp.Decision)
				if gateResp.ApprovalID != "" {
					msg += " (" + gateResp.ApprovalID + ")"
				}
				results[i] = domain.WorkerResult{Worker: st.Worker, Label: st.Label, Error: msg}
				continue
			}
		}

		wg.Add(1)
		go func(i int, st domain.SubTask) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = domain.WorkerResult{Worker: st.Worker, Label: st.Label, Error: fmt.Sprintf("dispatch cancelled: %v", err)}
				return
			}
			defer sem.Release(1)
			results[i] = s.dispatch(ctx, st)
		}(i, st)
	}

	wg.Wait()
	return results
}

// dispatch runs one sub-task against its worker, racing the per-worker
// timeout. On expiry the call is abandoned; the worker goroutine drains
// into a buffered channel.
func (s *Service) dispatch(ctx context.Context, st domain.SubTask) domain.WorkerResult {
	worker, ok := s.registry.Get(st.Worker)
	if !ok {
		return domain.WorkerResult{Worker: st.Worker, Label: st.Label, Error: "worker not in registry"}
	}

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, s.config.WorkerTimeout)
	defer cancel()

	type outcome struct {
		result string
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := worker.Invoke(callCtx, st.Payload)
		done <- outcome{result, err}
	}()

	select {
	case <-callCtx.Done():
		errMsg := fmt.Sprintf("dispatch cancelled: %v", callCtx.Err())
		if callCtx.Err() == context.DeadlineExceeded {
			errMsg = fmt.Sprintf("timed out after %s", s.config.WorkerTimeout)
		}
		return domain.WorkerResult{
			Worker:     st.Worker,
			Label:      st.Label,
			Error:      errMsg,
			DurationMs: time.Since(start).Milliseconds(),
		}
	case out := <-done:
		res := domain.WorkerResult{
			Worker:     st.Worker,
			Label:      st.Label,
			DurationMs: time.Since(start).Milliseconds(),
		}
		if out.err != nil {
			res.Error = out.err.Error()
		} else {
			res.Success = true
			res.Result = out.result
		}
		return res
	}
}

// synthesize composes all worker outputs into one answer with a single
// high-capability call. A synthesis backend failure degrades to a plain
// concatenation: the job still terminates with a well-formed summary.
func (s *Service) synthesize(ctx context.Context, task string, results []domain.WorkerResult) string {
	var b strings.Builder
	for _, r := range results {
		status := "ok"
		body := r.Result
		if !r.Success {
			status = "failed"
			body = r.Error
		}
		fmt.Fprintf(&b, "### %s [%s, %s]\n%s\n\n", r.Label, r.Worker, status, body)
	}

	summary, err := s.llmClient.Complete(ctx, s.config.PowerModel, synthesisSystemPrompt,
		fmt.Sprintf("Task: %s\n\nWorker outputs:\n\n%s", task, b.String()))
	if err != nil {
		log.Printf("WARN: synthesis call failed, returning raw outputs: %v", err)
		return fmt.Sprintf("Compiled worker outputs (synthesis unavailable):\n\n%s", b.String())
	}
	return summary
}
