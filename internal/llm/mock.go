package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a configurable completion client for testing.
// Responses are handed out in order and cycle when exhausted.
type MockClient struct {
	mu sync.Mutex

	Responses     []string
	GenerateError error

	// Call tracking for assertions
	GenerateCalls []struct {
		Prompt string
		N      int
	}
	next int
}

func NewMockClient() *MockClient {
	return &MockClient{
		Responses: []string{"Mock response"},
	}
}

func (c *MockClient) Generate(ctx context.Context, prompt string, n int) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.GenerateCalls = append(c.GenerateCalls, struct {
		Prompt string
		N      int
	}{prompt, n})
	if c.GenerateError != nil {
		return nil, c.GenerateError
	}
	if n < 1 {
		return nil, fmt.Errorf("sample count must be positive, got %d", n)
	}
	if len(c.Responses) == 0 {
		return nil, fmt.Errorf("mock client has no responses configured")
	}

	out := make([]string, n)
	for i := range out {
		out[i] = c.Responses[c.next%len(c.Responses)]
		c.next++
	}
	return out, nil
}

// Complete returns the next scripted response.
func (c *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := c.Generate(ctx, prompt, 1)
	if err != nil {
		return "", err
	}
	return out[0], nil
}

// Reset clears all recorded calls and resets responses to defaults.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Responses = []string{"Mock response"}
	c.GenerateError = nil
	c.GenerateCalls = nil
	c.next = 0
}
