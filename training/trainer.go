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

// Package training runs the end-to-end fit of a fake news classifier:
// load, shuffle and split, fit TF-IDF features, fit logistic regression,
// evaluate on the held-out set and persist the artifact.
package training

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/poiesic/verity/classifier"
	"github.com/poiesic/verity/core"
	"github.com/poiesic/verity/corpus"
	"github.com/poiesic/verity/evaluate"
	"github.com/poiesic/verity/features"
	"github.com/poiesic/verity/model"
)

const (
	DefaultRealPath   = "True.csv"
	DefaultFakePath   = "Fake.csv"
	DefaultOutputPath = "fake_news_model.vrty"
)

// RunRecorder stores a summary of a completed training run.
// storage.RunRepository satisfies it.
type RunRecorder interface {
	AddRun(ctx context.Context, run *core.TrainingRun) (*core.TrainingRun, error)
}

// Config holds the inputs and hyperparameters of a training run.
type Config struct {
	// RealPath and FakePath are the labeled CSV sources.
	RealPath string
	FakePath string

	// OutputPath is where the artifact is written.
	OutputPath string

	// TrainRatio is the fraction of articles used for fitting.
	TrainRatio float64

	// Seed drives the train/test split.
	Seed int64

	// ShuffleSeed drives the initial shuffle. Nil draws a seed from the clock.
	ShuffleSeed *int64

	// C is the inverse regularization strength.
	C float64

	// MaxIterations bounds the optimizer.
	MaxIterations int

	// StripMarkup removes HTML from titles and bodies while loading.
	StripMarkup bool
}

// DefaultConfig returns a Config with the standard file names and hyperparameters.
func DefaultConfig() *Config {
	return &Config{
		RealPath:      DefaultRealPath,
		FakePath:      DefaultFakePath,
		OutputPath:    DefaultOutputPath,
		TrainRatio:    corpus.DefaultTrainRatio,
		Seed:          corpus.DefaultSeed,
		C:             classifier.DefaultC,
		MaxIterations: classifier.DefaultMaxIterations,
	}
}

// Validate checks that the configuration can be run.
func (c *Config) Validate() error {
	if c.RealPath == "" || c.FakePath == "" {
		return fmt.Errorf("training config: both real and fake paths are required")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("training config: output path is required")
	}
	if !(c.TrainRatio > 0 && c.TrainRatio < 1) {
		return fmt.Errorf("training config: train ratio must be in (0,1), got %v", c.TrainRatio)
	}
	if c.C <= 0 {
		return fmt.Errorf("training config: C must be positive, got %v", c.C)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("training config: max iterations must be positive, got %d", c.MaxIterations)
	}
	return nil
}

// Result summarizes a successful training run.
type Result struct {
	Pipeline *model.Pipeline
	Report   *evaluate.Report
	Run      *core.TrainingRun
}

// Trainer executes the training pipeline once per Run call.
type Trainer struct {
	config   Config
	base     *slog.Logger
	logger   *slog.Logger
	report   io.Writer
	recorder RunRecorder
	now      func() time.Time

	mu    sync.Mutex
	stage Stage
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trainer) {
		if logger != nil {
			t.base = logger
		}
	}
}

// WithReportWriter sets where the classification report is printed.
// Default is os.Stdout. Pass io.Discard to suppress it.
func WithReportWriter(w io.Writer) Option {
	return func(t *Trainer) {
		if w != nil {
			t.report = w
		}
	}
}

// WithRunRecorder records each successful run after the artifact is persisted.
func WithRunRecorder(r RunRecorder) Option {
	return func(t *Trainer) {
		t.recorder = r
	}
}

// NewTrainer creates a Trainer. A nil config uses DefaultConfig.
func NewTrainer(config *Config, opts ...Option) (*Trainer, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	t := &Trainer{
		config: *config,
		base:   slog.Default(),
		report: os.Stdout,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.base.With("component", "trainer")
	return t, nil
}

// State returns the last stage the pipeline reached.
func (t *Trainer) State() Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stage
}

func (t *Trainer) advance(s Stage) {
	t.mu.Lock()
	t.stage = s
	t.mu.Unlock()
	t.logger.Debug("stage reached", "stage", s)
}

// Run executes every stage in order. The first failure halts the pipeline
// and is returned as a *StageError naming the stage that was attempted.
func (t *Trainer) Run(ctx context.Context) (*Result, error) {
	t.advance(StageInit)
	started := t.now().UTC()
	cfg := t.config

	fail := func(s Stage, err error) (*Result, error) {
		t.logger.Error("training halted", "stage", s, "error", err)
		return nil, &StageError{Stage: s, Err: err}
	}

	loader := corpus.NewLoader(
		corpus.WithMarkupStripping(cfg.StripMarkup),
		corpus.WithLogger(t.base),
	)
	dataset, err := loader.Load(ctx, cfg.RealPath, cfg.FakePath)
	if err != nil {
		return fail(StageLoaded, err)
	}
	t.advance(StageLoaded)

	shuffleSeed := t.now().UnixNano()
	if cfg.ShuffleSeed != nil {
		shuffleSeed = *cfg.ShuffleSeed
	}
	split, err := corpus.Split(corpus.Shuffle(dataset, shuffleSeed), cfg.TrainRatio, cfg.Seed)
	if err != nil {
		return fail(StageSplit, err)
	}
	t.advance(StageSplit)
	t.logger.Info("dataset split", "train", len(split.Train), "test", len(split.Test))

	if err := ctx.Err(); err != nil {
		return fail(StageFeaturesFit, err)
	}
	vectorizer, err := features.Fit(split.Train.Contents())
	if err != nil {
		return fail(StageFeaturesFit, err)
	}
	t.advance(StageFeaturesFit)
	t.logger.Info("vocabulary built", "terms", vectorizer.Len())

	if err := ctx.Err(); err != nil {
		return fail(StageClassifierFit, err)
	}
	clf, err := classifier.Fit(
		vectorizer.Transform(split.Train.Contents()),
		split.Train.Labels(),
		vectorizer.Len(),
		classifier.WithC(cfg.C),
		classifier.WithMaxIterations(cfg.MaxIterations),
		classifier.WithLogger(t.base),
	)
	if err != nil {
		return fail(StageClassifierFit, err)
	}
	pipeline, err := model.NewPipeline(vectorizer, clf)
	if err != nil {
		return fail(StageClassifierFit, err)
	}
	t.advance(StageClassifierFit)

	predicted := clf.PredictAll(vectorizer.Transform(split.Test.Contents()))
	report, err := evaluate.Evaluate(split.Test.Labels(), predicted)
	if err != nil {
		return fail(StageEvaluated, err)
	}
	fmt.Fprint(t.report, report.String())
	t.advance(StageEvaluated)

	digest, err := model.Save(cfg.OutputPath, pipeline)
	if err != nil {
		return fail(StagePersisted, err)
	}

	run := &core.TrainingRun{
		ArtifactPath:   cfg.OutputPath,
		Digest:         digest,
		StartedAt:      started,
		FinishedAt:     t.now().UTC(),
		TrainSize:      len(split.Train),
		TestSize:       len(split.Test),
		VocabularySize: vectorizer.Len(),
		Accuracy:       report.Accuracy,
		Classes:        report.Classes,
	}
	if t.recorder != nil {
		if run, err = t.recorder.AddRun(ctx, run); err != nil {
			return fail(StagePersisted, err)
		}
	}
	t.advance(StagePersisted)
	t.logger.Info("model saved", "path", cfg.OutputPath, "digest", digest, "accuracy", report.Accuracy)

	return &Result{Pipeline: pipeline, Report: report, Run: run}, nil
}
