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

// Package screening runs an LLM verdict classifier over a batch of
// articles.
//
// Articles are classified concurrently on an ants worker pool. Failed calls
// are retried with exponential backoff; an article whose calls keep failing
// carries the error in its Result and does not stop the batch. When a
// trained model is attached, each result also carries the model's label so
// the two opinions can be compared.
//
// # Usage
//
//	screener, err := screening.NewScreener(classifier,
//	    screening.WithPoolSize(4),
//	    screening.WithModel(pipeline),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer screener.Release()
//
//	results, err := screener.Screen(ctx, articles)
//	summary := screening.Summarize(results)
package screening
