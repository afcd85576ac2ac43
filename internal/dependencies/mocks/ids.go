package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/scrimbot/internal/dependencies/ids"
)

// MockIDs is a mock implementation of Generator for testing
type MockIDs struct {
	mu sync.Mutex

	// Results is a queue of ids to return from NewID
	Results []string
	index   int
	counter int
}

// Ensure MockIDs implements Generator
var _ ids.Generator = (*MockIDs)(nil)

// NewMockIDs creates a new MockIDs
func NewMockIDs() *MockIDs {
	return &MockIDs{}
}

// NewID returns the next queued id, or a sequential "id-N" once the queue is empty
func (g *MockIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index < len(g.Results) {
		result := g.Results[g.index]
		g.index++
		return result
	}
	g.counter++
	return fmt.Sprintf("id-%d", g.counter)
}

// Queue adds values to the result queue
func (g *MockIDs) Queue(values ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Results = append(g.Results, values...)
}
