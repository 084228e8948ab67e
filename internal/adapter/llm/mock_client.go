package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockClient is a scriptable LLMClient for tests. Each call consumes the
// next scripted reply in order; running past the script returns an error,
// which conveniently doubles as a backend failure.
type MockClient struct {
	mu      sync.Mutex
	replies []MockReply
	calls   []MockCall
}

// MockReply is one scripted model answer.
type MockReply struct {
	Content string
	Err     error
}

// MockCall records the model and user prompt of one completion call.
type MockCall struct {
	Model string
	User  string
}

// NewMockClient creates a mock that answers with the given script.
func NewMockClient(replies ...MockReply) *MockClient {
	return &MockClient{replies: replies}
}

// Ensure MockClient implements LLMClient interface.
var _ LLMClient = (*MockClient)(nil)

// Calls returns the calls observed so far.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// CreateChatCompletion returns the next scripted reply.
func (m *MockClient) CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	var user string
	for _, msg := range req.Messages {
		if msg.Role == "user" {
			user = msg.Content
		}
	}

	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Model: req.Model, User: user})
	if len(m.replies) == 0 {
		m.mu.Unlock()
		return nil, fmt.Errorf("mock llm: script exhausted (call %d)", len(m.calls))
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	m.mu.Unlock()

	if reply.Err != nil {
		return nil, reply.Err
	}

	return &ChatCompletionResponse{
		ID:      fmt.Sprintf("mock-chatcmpl-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []Choice{
			{
				Index:        0,
				Message:      &ChatMessage{Role: "assistant", Content: reply.Content},
				FinishReason: "stop",
			},
		},
		Usage: &Usage{
			PromptTokens:     len(user) / 4,
			CompletionTokens: len(reply.Content) / 4,
			TotalTokens:      (len(user) + len(reply.Content)) / 4,
		},
	}, nil
}

// Complete runs a single-turn completion against the script.
func (m *MockClient) Complete(ctx context.Context, model, system, user string) (string, error) {
	return complete(ctx, m, model, system, user)
}

// ListModels returns a fixed mock model list.
func (m *MockClient) ListModels(ctx context.Context) ([]Model, error) {
	return []Model{
		{ID: "mock-cheap", Object: "model", Created: time.Now().Unix(), OwnedBy: "mock"},
		{ID: "mock-power", Object: "model", Created: time.Now().Unix(), OwnedBy: "mock"},
	}, nil
}
