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

import "fmt"

const verdictSystemPrompt = `You are a news verification assistant.
Determine whether the news article supplied by the user is FAKE or REAL.
Only reply with one word: FAKE or REAL.`

// buildVerdictPrompt renders the user turn for an article.
func buildVerdictPrompt(text string) string {
	return fmt.Sprintf("Article:\n%s", text)
}
