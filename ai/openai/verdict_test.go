package openai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/verity/ai"
	"github.com/poiesic/verity/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel is a scripted llms.Model.
type fakeModel struct {
	reply    string
	err      error
	noChoice bool
	messages []llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	if f.noChoice {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.reply}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		reply string
		want  core.Verdict
	}{
		{reply: "FAKE", want: core.VerdictFake},
		{reply: "  real\n", want: core.VerdictReal},
		{reply: "This article is fake.", want: core.VerdictFake},
		{reply: "Real", want: core.VerdictReal},
		{reply: "FAKE or REAL", want: core.VerdictFake},
		{reply: "I cannot tell", want: core.VerdictUnknown},
		{reply: "", want: core.VerdictUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVerdict(tt.reply))
		})
	}
}

func TestClassify(t *testing.T) {
	model := &fakeModel{reply: "REAL"}
	c := newVerdictClassifier(model)

	verdict, err := c.Classify(context.Background(), core.Article{Title: "Budget", Body: "Parliament   passed\n the budget"})
	require.NoError(t, err)
	assert.Equal(t, core.VerdictReal, verdict)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	human, ok := model.messages[1].Parts[0].(llms.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Article:\nBudget Parliament passed the budget", human.Text)
}

func TestClassify_UntitledArticle(t *testing.T) {
	model := &fakeModel{reply: "fake"}
	c := newVerdictClassifier(model)

	verdict, err := c.Classify(context.Background(), core.Article{Body: "aliens built the pyramids"})
	require.NoError(t, err)
	assert.Equal(t, core.VerdictFake, verdict)

	human := model.messages[1].Parts[0].(llms.TextContent)
	assert.Equal(t, "Article:\naliens built the pyramids", human.Text)
}

func TestClassify_Errors(t *testing.T) {
	boom := errors.New("connection refused")

	_, err := newVerdictClassifier(&fakeModel{err: boom}).Classify(context.Background(), core.Article{Body: "x"})
	assert.ErrorIs(t, err, boom)

	_, err = newVerdictClassifier(&fakeModel{noChoice: true}).Classify(context.Background(), core.Article{Body: "x"})
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestScrubString_Truncates(t *testing.T) {
	long := strings.Repeat("é", maxArticleRunes+10)
	assert.Equal(t, maxArticleRunes, len([]rune(scrubString(long))))
	assert.Equal(t, "a b c", scrubString("  a\t b\n\nc "))
}

func TestNewVerdictClassifier_InvalidConfig(t *testing.T) {
	_, err := NewVerdictClassifier(ai.NewConfig(ai.WithModel("")))
	assert.Error(t, err)
}

func TestNewVerdictClassifier(t *testing.T) {
	c, err := NewVerdictClassifier(ai.NewConfig(ai.WithHost("http://localhost:1")))
	require.NoError(t, err)
	assert.NotNil(t, c)
}
