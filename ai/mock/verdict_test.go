package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/verity/core"
	"github.com/stretchr/testify/assert"
)

func TestMockVerdictClassifier_Default(t *testing.T) {
	m := NewMockVerdictClassifier()
	ctx := context.Background()

	v, err := m.Classify(ctx, core.Article{Title: "Fake cure"})
	assert.NoError(t, err)
	assert.Equal(t, core.VerdictFake, v)

	v, err = m.Classify(ctx, core.Article{Body: "Parliament met"})
	assert.NoError(t, err)
	assert.Equal(t, core.VerdictReal, v)

	assert.Equal(t, 2, m.CallCount())
}

func TestMockVerdictClassifier_CustomAndReset(t *testing.T) {
	m := NewMockVerdictClassifier()
	boom := errors.New("boom")
	m.ClassifyFunc = func(ctx context.Context, a core.Article) (core.Verdict, error) {
		return core.VerdictUnknown, boom
	}

	_, err := m.Classify(context.Background(), core.Article{})
	assert.ErrorIs(t, err, boom)

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	v, err := m.Classify(context.Background(), core.Article{})
	assert.NoError(t, err)
	assert.Equal(t, core.VerdictReal, v)
}
