// Package translation orchestrates chunking, caching and provider dispatch
// for text translation.
package translation

import (
	"strings"
	"unicode"
)

// sentenceTerminators are the characters that end a sentence. Half-width and
// full-width forms are treated as equivalent boundaries.
var sentenceTerminators = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true,
}

// Chunk splits text into pieces of at most maxSize runes whose content,
// rejoined, covers the whole input. Splits happen at sentence boundaries;
// a single sentence longer than maxSize is hard-split at fixed-size rune
// boundaries. Text already within maxSize is returned as a single chunk
// unchanged, which also makes chunking idempotent for short strings.
func Chunk(text string, maxSize int) []string {
	if maxSize <= 0 || len([]rune(text)) <= maxSize {
		return []string{text}
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		sentences = []string{text}
	}

	var chunks []string
	var current []string
	currentLen := 0

	for _, sentence := range sentences {
		sentenceLen := len([]rune(sentence))
		if len(current) > 0 && currentLen+sentenceLen+1 > maxSize {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			currentLen = 0
		}
		if sentenceLen > maxSize {
			if len(current) > 0 {
				chunks = append(chunks, strings.Join(current, " "))
				current = current[:0]
				currentLen = 0
			}
			chunks = append(chunks, hardSplit(sentence, maxSize)...)
			continue
		}
		current = append(current, sentence)
		currentLen += sentenceLen + 1
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// splitSentences breaks text at whitespace runs that follow a sentence
// terminator, keeping the terminator with its sentence. Segments are trimmed;
// empty segments are dropped.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	i := 0
	for i < len(runes) {
		if sentenceTerminators[runes[i]] && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			seg := strings.TrimSpace(string(runes[start : i+1]))
			if seg != "" {
				sentences = append(sentences, seg)
			}
			i++
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	if start < len(runes) {
		seg := strings.TrimSpace(string(runes[start:]))
		if seg != "" {
			sentences = append(sentences, seg)
		}
	}
	return sentences
}

// hardSplit cuts a sentence into maxSize-rune windows. Providers enforce hard
// request limits, so an oversized sentence is never left intact.
func hardSplit(sentence string, maxSize int) []string {
	runes := []rune(sentence)
	var parts []string
	for start := 0; start < len(runes); start += maxSize {
		end := start + maxSize
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
