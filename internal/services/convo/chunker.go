// File: internal/services/convo/chunker.go
package convo

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Sentences end at . ! or ?, punctuation kept with the sentence.
var sentencePattern = regexp.MustCompile(`[^.!?]*[.!?]+`)

// ChunkMessage splits delivery text into human-paced typing segments:
// consecutive sentences are grouped greedily while the running chunk stays at
// or under limit characters. Text with no sentence punctuation comes back as
// a single chunk. At least one chunk is always returned.
func ChunkMessage(text string, limit int) []string {
	sentences := sentencePattern.FindAllString(text, -1)
	if sentences == nil {
		return []string{text}
	}

	var chunks []string
	current := ""
	for _, sentence := range sentences {
		trimmed := strings.TrimSpace(sentence)
		candidate := current + " " + trimmed
		if utf8.RuneCountInString(candidate) > limit && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
			current = trimmed
		} else {
			current = candidate
		}
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
