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

// Package config loads the optional verity YAML file and applies
// environment overrides. Command line flags are layered on top by the CLI.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/poiesic/verity/ai"
	"github.com/poiesic/verity/training"
	"gopkg.in/yaml.v3"
)

const (
	apiKeyEnv = "VERITY_API_KEY"
	hostEnv   = "VERITY_LLM_HOST"
	modelEnv  = "VERITY_LLM_MODEL"
)

// Config mirrors the YAML file layout.
type Config struct {
	Training  TrainingConfig  `yaml:"training"`
	LLM       LLMConfig       `yaml:"llm"`
	Screening ScreeningConfig `yaml:"screening"`
	Registry  string          `yaml:"registry"`
}

// TrainingConfig holds training inputs and hyperparameters.
// Pointer fields distinguish an explicit zero from an omitted key.
type TrainingConfig struct {
	RealPath      string  `yaml:"real"`
	FakePath      string  `yaml:"fake"`
	OutputPath    string  `yaml:"out"`
	TrainRatio    float64 `yaml:"trainRatio"`
	Seed          *int64  `yaml:"seed"`
	ShuffleSeed   *int64  `yaml:"shuffleSeed"`
	C             float64 `yaml:"c"`
	MaxIterations int     `yaml:"maxIterations"`
	StripMarkup   *bool   `yaml:"stripMarkup"`
}

// LLMConfig describes the OpenAI-compatible verdict service.
type LLMConfig struct {
	Host    string        `yaml:"host"`
	Model   string        `yaml:"model"`
	APIKey  string        `yaml:"apiKey"`
	Timeout time.Duration `yaml:"timeout"`
}

// ScreeningConfig tunes batch screening.
type ScreeningConfig struct {
	Workers     int           `yaml:"workers"`
	MaxAttempts int           `yaml:"maxAttempts"`
	RetryDelay  time.Duration `yaml:"retryDelay"`
}

// Load reads the YAML file at path, if path is not empty, and applies
// environment overrides. Unlike defaults, a broken file is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: cannot parse %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(apiKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(hostEnv); v != "" {
		c.LLM.Host = v
	}
	if v := os.Getenv(modelEnv); v != "" {
		c.LLM.Model = v
	}
}

// TrainingConfig merges the file's training section over training.DefaultConfig.
func (c *Config) TrainingConfig() *training.Config {
	base := training.DefaultConfig()
	t := c.Training

	if t.RealPath != "" {
		base.RealPath = t.RealPath
	}
	if t.FakePath != "" {
		base.FakePath = t.FakePath
	}
	if t.OutputPath != "" {
		base.OutputPath = t.OutputPath
	}
	if t.TrainRatio != 0 {
		base.TrainRatio = t.TrainRatio
	}
	if t.Seed != nil {
		base.Seed = *t.Seed
	}
	if t.ShuffleSeed != nil {
		seed := *t.ShuffleSeed
		base.ShuffleSeed = &seed
	}
	if t.C != 0 {
		base.C = t.C
	}
	if t.MaxIterations != 0 {
		base.MaxIterations = t.MaxIterations
	}
	if t.StripMarkup != nil {
		base.StripMarkup = *t.StripMarkup
	}
	return base
}

// AIConfig merges the file's llm section over ai.DefaultConfig.
func (c *Config) AIConfig() *ai.Config {
	var opts []ai.ConfigOption
	if c.LLM.Host != "" {
		opts = append(opts, ai.WithHost(c.LLM.Host))
	}
	if c.LLM.Model != "" {
		opts = append(opts, ai.WithModel(c.LLM.Model))
	}
	if c.LLM.APIKey != "" {
		opts = append(opts, ai.WithAPIKey(c.LLM.APIKey))
	}
	if c.LLM.Timeout != 0 {
		opts = append(opts, ai.WithTimeout(c.LLM.Timeout))
	}
	return ai.NewConfig(opts...)
}
