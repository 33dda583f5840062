package llm

import (
	"context"
	"sync"
)

// MockResult is a canned completion for the MockProvider.
type MockResult struct {
	Text       string
	TokensUsed int
	Err        error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned results in FIFO order and records all requests.
type MockProvider struct {
	mu      sync.Mutex
	results []MockResult
	Calls   []Request
}

// NewMockProvider creates a MockProvider with the given canned results.
func NewMockProvider(results ...MockResult) *MockProvider {
	return &MockProvider{results: results}
}

// Complete returns the next canned result or ErrProviderUnavailable if
// the queue is empty.
func (m *MockProvider) Complete(_ context.Context, req Request) (*Completion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.results) == 0 {
		return nil, &ErrProviderUnavailable{Err: nil}
	}

	res := m.results[0]
	m.results = m.results[1:]

	if res.Err != nil {
		return nil, res.Err
	}

	return &Completion{
		Text:       res.Text,
		TokensUsed: res.TokensUsed,
		Model:      "mock",
	}, nil
}

// ModelID returns "mock".
func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResult appends a canned result to the queue.
func (m *MockProvider) AddResult(res MockResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, res)
}

// CallCount returns the number of Complete calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
