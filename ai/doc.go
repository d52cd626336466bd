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

// Package ai provides abstractions for the LLM services used in verity.
//
// The trained TF-IDF model is the primary classifier. This package defines
// a second opinion: a chat model is asked to label an article as FAKE or
// REAL, and the screening package runs it over whole corpora.
//
// # Implementation Packages
//
//   - ai/openai: implementation for OpenAI-compatible chat APIs via langchaingo
//   - ai/mock: test doubles for unit testing without external services
//
// Public constructors return interfaces. Mock constructors return concrete
// types so tests can inject behavior and inspect call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434"), ai.WithModel("qwen2.5:3b"))
//	classifier, err := openai.NewVerdictClassifier(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	verdict, err := classifier.Classify(ctx, core.Article{Title: title, Body: body})
package ai
