package ai

import (
	"context"

	"github.com/poiesic/verity/core"
)

// VerdictClassifier asks an external model whether an article is fake.
// Implementations must be thread-safe for concurrent use.
type VerdictClassifier interface {
	// Classify returns FAKE, REAL or UNKNOWN for the article.
	// UNKNOWN means the model answered but named neither label.
	// Returns an error if the service call fails.
	Classify(ctx context.Context, article core.Article) (core.Verdict, error)
}
