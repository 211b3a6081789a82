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


package ingestion

// Default chunking parameters.
const (
	DefaultChunkSize = 800
	DefaultOverlap   = 100
)

// SplitText splits text into fixed-size chunks with overlap. The window
// advances by chunkSize-overlap per step, clamped to at least 1 so a
// degenerate overlap >= chunkSize still terminates. Non-empty text always
// yields at least one chunk; the final chunk may be shorter than
// chunkSize. Size and overlap count characters, not bytes, so window
// edges never split a multibyte rune.
func SplitText(text string, chunkSize, overlap int) []string {
	if text == "" || chunkSize <= 0 {
		return nil
	}

	advance := chunkSize - overlap
	if advance < 1 {
		advance = 1
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += advance {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}
