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

package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/verity/core"
)

const (
	titleColumn = "title"
	bodyColumn  = "text"
	labelColumn = "label"

	// rows between context checks
	cancelCheckInterval = 1024
)

// Loader reads labeled article corpora from CSV files.
type Loader struct {
	stripMarkup bool
	logger      *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithMarkupStripping removes HTML markup from titles and bodies as they are read.
// Default is false.
func WithMarkupStripping(enabled bool) Option {
	return func(l *Loader) {
		l.stripMarkup = enabled
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "corpus-loader")
	return l
}

// Load reads the REAL corpus and the FAKE corpus and concatenates them,
// REAL rows first. Both files must exist, carry title and text columns,
// and contain at least one data row. An article appearing in both corpora
// is rejected since it would carry two labels.
func (l *Loader) Load(ctx context.Context, realPath, fakePath string) (core.Dataset, error) {
	reals, err := l.LoadFile(ctx, realPath, core.LabelReal)
	if err != nil {
		return nil, err
	}
	fakes, err := l.LoadFile(ctx, fakePath, core.LabelFake)
	if err != nil {
		return nil, err
	}

	seen := make(map[core.ID]struct{}, len(reals))
	for _, a := range reals {
		seen[core.IDFromContent(a.Content())] = struct{}{}
	}
	overlap := 0
	for _, a := range fakes {
		if _, ok := seen[core.IDFromContent(a.Content())]; ok {
			overlap++
		}
	}
	if overlap > 0 {
		return nil, fmt.Errorf("%w: %d articles appear in both %s and %s", core.ErrLoad, overlap, realPath, fakePath)
	}

	dataset := make(core.Dataset, 0, len(reals)+len(fakes))
	dataset = append(dataset, reals...)
	dataset = append(dataset, fakes...)

	l.logger.Info("loaded corpora", "real", len(reals), "fake", len(fakes))
	return dataset, nil
}

// LoadFile reads a single corpus and assigns label to every row.
func (l *Loader) LoadFile(ctx context.Context, path string, label core.Label) (core.Dataset, error) {
	if err := core.ValidateLabel(label); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrLoad, path, err)
	}
	articles, err := l.readFile(ctx, path, false)
	if err != nil {
		return nil, err
	}
	for i := range articles {
		articles[i].Label = label
	}
	return articles, nil
}

// ReadArticles reads title and text columns from a CSV file. An optional
// label column (FAKE or REAL, any case) sets each article's label; rows
// without one stay unlabeled. Other columns are ignored. Short rows are
// padded with empty fields.
func (l *Loader) ReadArticles(ctx context.Context, path string) (core.Dataset, error) {
	return l.readFile(ctx, path, true)
}

// readFile reads one CSV. The label column is only interpreted when
// withLabels is set; training corpora take their label from the file.
func (l *Loader) readFile(ctx context.Context, path string, withLabels bool) (core.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrLoad, err)
	}
	defer f.Close()

	articles, err := l.readCSV(ctx, f, withLabels)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrLoad, path, err)
	}
	l.logger.Debug("read corpus file", "path", path, "rows", len(articles))
	return articles, nil
}

func (l *Loader) readCSV(ctx context.Context, r io.Reader, withLabels bool) (core.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty")
		}
		return nil, err
	}

	titleIdx, bodyIdx, labelIdx := -1, -1, -1
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch name {
		case titleColumn:
			if titleIdx < 0 {
				titleIdx = i
			}
		case bodyColumn:
			if bodyIdx < 0 {
				bodyIdx = i
			}
		case labelColumn:
			if withLabels && labelIdx < 0 {
				labelIdx = i
			}
		}
	}
	if titleIdx < 0 || bodyIdx < 0 {
		return nil, fmt.Errorf("missing required columns %q and %q", titleColumn, bodyColumn)
	}

	var articles core.Dataset
	for row := 0; ; row++ {
		if row%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		article := core.Article{
			Title: l.clean(field(record, titleIdx)),
			Body:  l.clean(field(record, bodyIdx)),
		}
		if raw := strings.TrimSpace(field(record, labelIdx)); raw != "" {
			if article.Label, err = core.ParseLabel(raw); err != nil {
				return nil, fmt.Errorf("row %d: %w", row+2, err)
			}
		}
		articles = append(articles, article)
	}

	if len(articles) == 0 {
		return nil, errors.New("no data rows")
	}
	return articles, nil
}

func (l *Loader) clean(s string) string {
	if !l.stripMarkup {
		return s
	}
	return stripMarkup(s)
}

// field returns record[idx], or "" when the row is too short or idx is -1.
func field(record []string, idx int) string {
	if idx >= 0 && idx < len(record) {
		return record[idx]
	}
	return ""
}
