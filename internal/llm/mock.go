package llm

import (
	"context"
	"sync"
)

// MockClient is a scriptable Client for tests. Responses are consumed in
// order; when they run out the last one repeats.
type MockClient struct {
	ResponseFn func(req Request) (Response, error)
	Responses  []Response
	Errors     []error
	Requests   []Request
	calls      int
	mu         sync.Mutex
}

// NewMockClient returns a mock that replies with the given texts in order.
func NewMockClient(texts ...string) *MockClient {
	responses := make([]Response, len(texts))
	for i, t := range texts {
		responses[i] = Response{Text: t}
	}
	return &MockClient{Responses: responses}
}

func (m *MockClient) Name() string { return "mock" }

func (m *MockClient) Infer(_ context.Context, req Request) (Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	call := m.calls
	m.calls++

	if m.ResponseFn != nil {
		return m.ResponseFn(req)
	}

	if call < len(m.Errors) && m.Errors[call] != nil {
		return Response{}, m.Errors[call]
	}

	if len(m.Responses) == 0 {
		return Response{}, nil
	}
	if call >= len(m.Responses) {
		call = len(m.Responses) - 1
	}
	return m.Responses[call], nil
}

// Calls reports how many Infer calls the mock has served.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
