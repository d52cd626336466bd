package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/verity/ai"
	"github.com/poiesic/verity/core"
)

// MockVerdictClassifier is a test double for ai.VerdictClassifier.
// It allows custom behavior injection via function fields and is safe for
// concurrent use.
type MockVerdictClassifier struct {
	// ClassifyFunc is called by Classify if set.
	ClassifyFunc func(ctx context.Context, article core.Article) (core.Verdict, error)

	mu        sync.Mutex
	callCount int
}

var _ ai.VerdictClassifier = (*MockVerdictClassifier)(nil)

// NewMockVerdictClassifier creates a mock verdict classifier with default behavior.
func NewMockVerdictClassifier() *MockVerdictClassifier {
	return &MockVerdictClassifier{}
}

// Classify returns a canned verdict.
func (m *MockVerdictClassifier) Classify(ctx context.Context, article core.Article) (core.Verdict, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.ClassifyFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, article)
	}
	if err := ctx.Err(); err != nil {
		return core.VerdictUnknown, err
	}
	if strings.Contains(strings.ToLower(article.Content()), "fake") {
		return core.VerdictFake, nil
	}
	return core.VerdictReal, nil
}

// CallCount returns the number of times Classify was called.
func (m *MockVerdictClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockVerdictClassifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.ClassifyFunc = nil
}
