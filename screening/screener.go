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

package screening

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/verity/ai"
	"github.com/poiesic/verity/core"
	"github.com/poiesic/verity/model"
)

const (
	DefaultMaxAttempts    = 3
	DefaultRetryDelay     = 500 * time.Millisecond
	DefaultReportInterval = 10
)

// Result is the outcome of screening one article.
type Result struct {
	Index   int // position in the input
	Article core.Article
	Verdict core.Verdict

	// ModelLabel and ModelProbability are set when a trained model is
	// attached. ModelProbability is P(REAL).
	ModelLabel       core.Label
	ModelProbability float64

	// Err is set when the classifier could not produce a verdict.
	Err error
}

// Agrees reports whether the LLM verdict matches the model label. ok is
// false when either side has no answer.
func (r Result) Agrees() (agree bool, ok bool) {
	if r.Err != nil || r.ModelLabel == 0 {
		return false, false
	}
	label, known := r.Verdict.Label()
	if !known {
		return false, false
	}
	return label == r.ModelLabel, true
}

// Screener classifies batches of articles with a verdict classifier.
type Screener struct {
	classifier     ai.VerdictClassifier
	pool           *ants.Pool
	model          *model.Pipeline
	maxAttempts    int
	retryDelay     time.Duration
	progress       io.Writer
	reportInterval int
	logger         *slog.Logger
}

// Option configures a Screener.
type Option func(*Screener) error

// WithPoolSize sets the number of concurrent classifier calls.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Screener) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if s.pool != nil {
			s.pool.Release()
		}
		s.pool = pool
		return nil
	}
}

// WithModel attaches a trained pipeline whose prediction is recorded next
// to each verdict.
func WithModel(p *model.Pipeline) Option {
	return func(s *Screener) error {
		s.model = p
		return nil
	}
}

// WithRetry sets the attempts per article and the base backoff delay.
// Defaults are 3 attempts and 500ms.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(s *Screener) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		s.maxAttempts = maxAttempts
		s.retryDelay = baseDelay
		return nil
	}
}

// WithProgress reports progress to w every interval articles.
// Progress is not reported by default.
func WithProgress(w io.Writer, interval int) Option {
	return func(s *Screener) error {
		s.progress = w
		if interval > 0 {
			s.reportInterval = interval
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Screener) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewScreener creates a Screener. Call Release when done.
func NewScreener(classifier ai.VerdictClassifier, opts ...Option) (*Screener, error) {
	if classifier == nil {
		return nil, ErrClassifierRequired
	}

	s := &Screener{
		classifier:     classifier,
		maxAttempts:    DefaultMaxAttempts,
		retryDelay:     DefaultRetryDelay,
		reportInterval: DefaultReportInterval,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}

	if s.pool == nil {
		pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
		if err != nil {
			return nil, err
		}
		s.pool = pool
	}
	s.logger = s.logger.With("component", "screener")
	return s, nil
}

// Release stops the worker pool.
func (s *Screener) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Screen classifies every article and returns one Result per article in
// input order. Per-article failures are reported in Result.Err; the
// returned error is non-nil only when ctx ends before the batch completes.
func (s *Screener) Screen(ctx context.Context, articles core.Dataset) ([]Result, error) {
	results := make([]Result, len(articles))
	if len(articles) == 0 {
		return results, nil
	}

	var tracker *ProgressTracker
	if s.progress != nil {
		tracker = NewProgressTracker(s.progress, len(articles), s.reportInterval)
		tracker.Start()
	}

	var wg sync.WaitGroup
	for i, article := range articles {
		results[i] = Result{Index: i, Article: article, Verdict: core.VerdictUnknown}

		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			s.screenOne(ctx, &results[i])
			if tracker != nil {
				tracker.Increment(1)
			}
		})
		if err != nil {
			wg.Done()
			results[i].Err = err
			s.logger.Error("failed to submit article", "index", i, "err", err)
		}
	}
	wg.Wait()

	if tracker != nil {
		tracker.Finish()
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}
	s.logger.Info("screening complete", "articles", len(articles))
	return results, nil
}

func (s *Screener) screenOne(ctx context.Context, r *Result) {
	if s.model != nil {
		r.ModelLabel, r.ModelProbability = s.model.PredictArticle(r.Article)
	}

	err := RetryWithBackoff(ctx, func() error {
		verdict, err := s.classifier.Classify(ctx, r.Article)
		if err != nil {
			return err
		}
		r.Verdict = verdict
		return nil
	}, s.maxAttempts, s.retryDelay)
	if err != nil {
		r.Err = err
		s.logger.Warn("article screening failed", "index", r.Index, "err", err)
	}
}

// Summary aggregates a batch of results.
type Summary struct {
	Total      int
	Fake       int
	Real       int
	Unknown    int
	Failed     int
	Compared   int // results with both a verdict label and a model label
	Agreements int
	Labeled    int // results with both a verdict label and a ground-truth label
	Correct    int
}

// Summarize counts verdicts and model agreement over results.
func Summarize(results []Result) Summary {
	sum := Summary{Total: len(results)}
	for _, r := range results {
		if r.Err != nil {
			sum.Failed++
			continue
		}
		switch r.Verdict {
		case core.VerdictFake:
			sum.Fake++
		case core.VerdictReal:
			sum.Real++
		default:
			sum.Unknown++
		}
		if agree, ok := r.Agrees(); ok {
			sum.Compared++
			if agree {
				sum.Agreements++
			}
		}
		if label, ok := r.Verdict.Label(); ok && r.Article.Label != 0 {
			sum.Labeled++
			if label == r.Article.Label {
				sum.Correct++
			}
		}
	}
	return sum
}

// Accuracy is Correct / Labeled, or 0 when no input article carried a label.
func (s Summary) Accuracy() float64 {
	if s.Labeled == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Labeled)
}

// AgreementRate is Agreements / Compared, or 0 when nothing was compared.
func (s Summary) AgreementRate() float64 {
	if s.Compared == 0 {
		return 0
	}
	return float64(s.Agreements) / float64(s.Compared)
}
