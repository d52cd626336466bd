// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/poiesic/verity/ai"
	"github.com/poiesic/verity/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrNoChoices indicates the model returned an empty response.
var ErrNoChoices = errors.New("no choices returned from model")

// VerdictClassifier implements ai.VerdictClassifier using OpenAI-compatible chat APIs.
type VerdictClassifier struct {
	client llms.Model
	logger *slog.Logger
}

var _ ai.VerdictClassifier = (*VerdictClassifier)(nil)

// newVerdictClassifier is an internal constructor that returns the concrete type.
func newVerdictClassifier(client llms.Model) *VerdictClassifier {
	return &VerdictClassifier{
		client: client,
		logger: slog.Default().With("component", "openai-verdict"),
	}
}

// NewVerdictClassifier creates a verdict classifier using the provided configuration.
//
// Returns ai.VerdictClassifier interface to enforce abstraction.
func NewVerdictClassifier(config *ai.Config) (ai.VerdictClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token()),
		openai.WithModel(config.Model),
		openai.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
	)
	if err != nil {
		return nil, err
	}

	return newVerdictClassifier(client), nil
}

// Classify asks the model for a one word verdict on the article.
func (c *VerdictClassifier) Classify(ctx context.Context, article core.Article) (core.Verdict, error) {
	text := scrubString(combineArticle(article.Title, article.Body))

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(verdictSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildVerdictPrompt(text)),
			},
		},
	}

	response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		c.logger.Error("failed to generate content", "err", err)
		return core.VerdictUnknown, err
	}
	if len(response.Choices) < 1 {
		return core.VerdictUnknown, ErrNoChoices
	}

	reply := response.Choices[0].Content
	verdict := ParseVerdict(reply)
	if verdict == core.VerdictUnknown {
		c.logger.Warn("model reply named neither label", "reply", reply)
	} else {
		c.logger.Debug("classified article", "verdict", verdict)
	}
	return verdict, nil
}

// ParseVerdict maps a free-form model reply to a verdict. The reply is
// upper-cased and searched for FAKE first, then REAL.
func ParseVerdict(reply string) core.Verdict {
	reply = strings.ToUpper(strings.TrimSpace(reply))
	switch {
	case strings.Contains(reply, string(core.VerdictFake)):
		return core.VerdictFake
	case strings.Contains(reply, string(core.VerdictReal)):
		return core.VerdictReal
	default:
		return core.VerdictUnknown
	}
}
