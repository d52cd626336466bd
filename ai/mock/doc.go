// Package mock provides test double implementations of AI service interfaces.
//
// # Usage in Tests
//
//	classifier := mock.NewMockVerdictClassifier()
//	classifier.ClassifyFunc = func(ctx context.Context, a core.Article) (core.Verdict, error) {
//	    return core.VerdictReal, nil
//	}
//	count := classifier.CallCount()
//
// # Default Behavior
//
// MockVerdictClassifier answers FAKE when the title or body mentions "fake"
// and REAL otherwise.
package mock
