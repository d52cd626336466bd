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

package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/verity"
	"github.com/poiesic/verity/ai"
	"github.com/poiesic/verity/ai/openai"
	"github.com/poiesic/verity/config"
	"github.com/poiesic/verity/core"
	"github.com/poiesic/verity/corpus"
	"github.com/poiesic/verity/model"
	"github.com/poiesic/verity/screening"
	"github.com/poiesic/verity/training"
	"github.com/urfave/cli/v2"
)

// newVerdictClassifier is replaced in tests.
var newVerdictClassifier = func(cfg *ai.Config) (ai.VerdictClassifier, error) {
	return openai.NewVerdictClassifier(cfg)
}

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "verity",
		Usage: "Fake news classifier: train, predict, and screen articles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "train",
				Usage:  "Train a TF-IDF logistic regression model and save it",
				Action: trainCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Optional YAML config file",
					},
					&cli.StringFlag{
						Name:  "real",
						Usage: "CSV file of REAL articles",
						Value: training.DefaultRealPath,
					},
					&cli.StringFlag{
						Name:  "fake",
						Usage: "CSV file of FAKE articles",
						Value: training.DefaultFakePath,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Path of the model artifact to write",
						Value:   training.DefaultOutputPath,
					},
					&cli.Int64Flag{
						Name:  "seed",
						Usage: "Seed for the train/test split",
						Value: corpus.DefaultSeed,
					},
					&cli.Int64Flag{
						Name:  "shuffle-seed",
						Usage: "Seed for the initial shuffle (omit to seed from the clock)",
					},
					&cli.Float64Flag{
						Name:  "ratio",
						Usage: "Fraction of articles used for training",
						Value: corpus.DefaultTrainRatio,
					},
					&cli.Float64Flag{
						Name:  "regularization",
						Usage: "Inverse regularization strength C",
						Value: training.DefaultConfig().C,
					},
					&cli.IntFlag{
						Name:  "max-iterations",
						Usage: "Optimizer iteration limit",
						Value: training.DefaultConfig().MaxIterations,
					},
					&cli.BoolFlag{
						Name:  "strip-markup",
						Usage: "Strip HTML from titles and bodies",
					},
					&cli.StringFlag{
						Name:    "registry",
						Aliases: []string{"r"},
						Usage:   "Record the run in this BadgerDB registry directory",
					},
				},
			},
			{
				Name:      "predict",
				Usage:     "Classify text with a saved model",
				ArgsUsage: "TEXT...",
				Action:    predictCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "model",
						Aliases: []string{"m"},
						Usage:   "Path of the model artifact",
						Value:   training.DefaultOutputPath,
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Optional article title",
					},
				},
			},
			{
				Name:   "runs",
				Usage:  "List recorded training runs, newest first",
				Action: runsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "registry",
						Aliases:  []string{"r"},
						Usage:    "Path to BadgerDB registry directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to list",
						Value: 10,
					},
				},
			},
			{
				Name:   "screen",
				Usage:  "Ask an LLM for a FAKE/REAL verdict on every article in a CSV",
				Action: screenCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "CSV file with title and text columns and an optional label column",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Optional YAML config file",
					},
					&cli.StringFlag{
						Name:  "host",
						Usage: "OpenAI-compatible service host URL",
						Value: ai.DefaultConfig().Host,
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Chat model name",
						Value: ai.DefaultConfig().Model,
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "API key for the service",
						EnvVars: []string{"VERITY_API_KEY"},
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent classifier calls",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per article",
						Value: screening.DefaultMaxAttempts,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: screening.DefaultRetryDelay,
					},
					&cli.StringFlag{
						Name:  "compare-model",
						Usage: "Saved model artifact to compare verdicts against",
					},
					&cli.BoolFlag{
						Name:  "strip-markup",
						Usage: "Strip HTML from titles and bodies",
					},
				},
			},
		},
	}
}

func trainCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	fileCfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	cfg := fileCfg.TrainingConfig()
	if c.IsSet("real") || cfg.RealPath == "" {
		cfg.RealPath = c.String("real")
	}
	if c.IsSet("fake") || cfg.FakePath == "" {
		cfg.FakePath = c.String("fake")
	}
	if c.IsSet("out") {
		cfg.OutputPath = c.String("out")
	}
	if c.IsSet("seed") {
		cfg.Seed = c.Int64("seed")
	}
	if c.IsSet("shuffle-seed") {
		seed := c.Int64("shuffle-seed")
		cfg.ShuffleSeed = &seed
	}
	if c.IsSet("ratio") {
		cfg.TrainRatio = c.Float64("ratio")
	}
	if c.IsSet("regularization") {
		cfg.C = c.Float64("regularization")
	}
	if c.IsSet("max-iterations") {
		cfg.MaxIterations = c.Int("max-iterations")
	}
	if c.IsSet("strip-markup") {
		cfg.StripMarkup = c.Bool("strip-markup")
	}

	opts := []training.Option{training.WithReportWriter(c.App.Writer)}

	registryPath := c.String("registry")
	if registryPath == "" {
		registryPath = fileCfg.Registry
	}

	var trainer *training.Trainer
	if registryPath != "" {
		reg, err := verity.OpenRegistry(registryPath)
		if err != nil {
			return fmt.Errorf("failed to open registry: %w", err)
		}
		defer reg.Close()
		trainer, err = reg.NewTrainer(cfg, opts...)
		if err != nil {
			return err
		}
	} else {
		trainer, err = training.NewTrainer(cfg, opts...)
		if err != nil {
			return err
		}
	}

	res, err := trainer.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Model saved to %s (digest %s)\n", cfg.OutputPath, res.Run.Digest)
	if res.Run.Id != 0 {
		fmt.Fprintf(c.App.Writer, "Recorded run %d\n", res.Run.Id)
	}
	return nil
}

func predictCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" && strings.TrimSpace(c.String("title")) == "" {
		return errors.New("text to classify is required")
	}

	pipeline, err := model.Load(c.String("model"))
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}

	article := core.Article{Title: c.String("title"), Body: text}
	label, prob := pipeline.PredictArticle(article)
	fmt.Fprintf(c.App.Writer, "%s\t%.4f\n", label, prob)
	return nil
}

func runsCommand(c *cli.Context) error {
	reg, err := verity.OpenRegistry(c.String("registry"))
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer reg.Close()

	runs, err := reg.Runs().ListRuns(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(c.App.Writer, "No runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFINISHED\tTRAIN\tTEST\tTERMS\tACCURACY\tARTIFACT\tDIGEST")
	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%.4f\t%s\t%s\n",
			run.Id, run.FinishedAt.Format(time.RFC3339), run.TrainSize, run.TestSize,
			run.VocabularySize, run.Accuracy, run.ArtifactPath, shortDigest(run.Digest))
	}
	return w.Flush()
}

func screenCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	fileCfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	aiConfig := fileCfg.AIConfig()
	if c.IsSet("host") {
		aiConfig.Host = c.String("host")
	}
	if c.IsSet("model") {
		aiConfig.Model = c.String("model")
	}
	if key := c.String("api-key"); key != "" {
		aiConfig.APIKey = key
	}
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	articles, err := corpus.NewLoader(corpus.WithMarkupStripping(c.Bool("strip-markup"))).
		ReadArticles(ctx, c.String("input"))
	if err != nil {
		return err
	}

	workers := c.Int("workers")
	if !c.IsSet("workers") && fileCfg.Screening.Workers > 0 {
		workers = fileCfg.Screening.Workers
	}
	attempts, delay := c.Int("max-retries"), c.Duration("retry-delay")
	if !c.IsSet("max-retries") && fileCfg.Screening.MaxAttempts > 0 {
		attempts = fileCfg.Screening.MaxAttempts
	}
	if !c.IsSet("retry-delay") && fileCfg.Screening.RetryDelay > 0 {
		delay = fileCfg.Screening.RetryDelay
	}

	opts := []screening.Option{
		screening.WithPoolSize(workers),
		screening.WithRetry(attempts, delay),
		screening.WithProgress(c.App.ErrWriter, screening.DefaultReportInterval),
	}
	if path := c.String("compare-model"); path != "" {
		pipeline, err := model.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load model: %w", err)
		}
		opts = append(opts, screening.WithModel(pipeline))
	}

	classifier, err := newVerdictClassifier(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create verdict classifier: %w", err)
	}
	screener, err := screening.NewScreener(classifier, opts...)
	if err != nil {
		return err
	}
	defer screener.Release()

	fmt.Fprintf(c.App.ErrWriter, "Input: %s (%d articles)\n", c.String("input"), len(articles))
	fmt.Fprintf(c.App.ErrWriter, "Host: %s\n", aiConfig.Host)
	fmt.Fprintf(c.App.ErrWriter, "Model: %s\n", aiConfig.Model)
	fmt.Fprintln(c.App.ErrWriter)

	results, err := screener.Screen(ctx, articles)
	if err != nil {
		return fmt.Errorf("screening interrupted: %w", err)
	}
	printScreening(c, results)
	return nil
}

func printScreening(c *cli.Context, results []screening.Result) {
	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tVERDICT\tMODEL\tP(REAL)\tTITLE")
	for _, r := range results {
		verdict := string(r.Verdict)
		if r.Err != nil {
			verdict = "ERROR"
		}
		modelLabel, prob := "-", "-"
		if r.ModelLabel != 0 {
			modelLabel = r.ModelLabel.String()
			prob = fmt.Sprintf("%.4f", r.ModelProbability)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.Index+1, verdict, modelLabel, prob, truncate(r.Article.Title, 60))
	}
	w.Flush()

	sum := screening.Summarize(results)
	fmt.Fprintf(c.App.Writer, "\nFAKE: %d  REAL: %d  UNKNOWN: %d  FAILED: %d\n",
		sum.Fake, sum.Real, sum.Unknown, sum.Failed)
	if sum.Labeled > 0 {
		fmt.Fprintf(c.App.Writer, "Verdict accuracy: %d/%d (%.1f%%)\n",
			sum.Correct, sum.Labeled, sum.Accuracy()*100)
	}
	if sum.Compared > 0 {
		fmt.Fprintf(c.App.Writer, "Model agreement: %d/%d (%.1f%%)\n",
			sum.Agreements, sum.Compared, sum.AgreementRate()*100)
	}
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
