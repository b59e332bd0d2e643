// Package chunker splits document text into token-bounded, paragraph-aware
// chunks with configurable overlap.
package chunker

import (
	"strings"

	"github.com/hyperjump/kagami/internal/models"
)

// DefaultMaxTokens is the default chunk budget in words.
const DefaultMaxTokens = 800

// DefaultOverlapTokens is the default overlap carried between chunks, in words.
const DefaultOverlapTokens = 200

// Chunker accumulates paragraphs into chunks of at most maxTokens words,
// seeding each new chunk with roughly overlapTokens words from the previous
// one. Token counts are whitespace word counts, an approximation of provider
// tokenization; callers must not assume parity with the embedding provider's
// own accounting.
type Chunker struct {
	maxTokens     int
	overlapTokens int
}

// New creates a chunker. Non-positive maxTokens falls back to the default;
// negative overlap is treated as zero.
func New(maxTokens, overlapTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	return &Chunker{maxTokens: maxTokens, overlapTokens: overlapTokens}
}

// Chunk splits text into an ordered sequence of chunks owned by recordID.
// Paragraphs are never split: a single paragraph longer than the budget is
// emitted whole as an oversized chunk. Empty or whitespace-only input yields
// no chunks. The result is deterministic for identical input and settings.
func (c *Chunker) Chunk(recordID, text string) []models.Chunk {
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	var chunks []models.Chunk
	var current []string
	tokenCount := 0
	chunkIndex := 0

	for _, paragraph := range paragraphs {
		tokens := countWords(paragraph)
		if tokenCount+tokens > c.maxTokens && len(current) > 0 {
			chunks = append(chunks, models.Chunk{
				RecordID:   recordID,
				ChunkIndex: chunkIndex,
				Content:    strings.Join(current, "\n\n"),
				Tokens:     tokenCount,
			})
			chunkIndex++
			current, tokenCount = c.overlapSeed(current)
		}
		current = append(current, paragraph)
		tokenCount += tokens
	}

	if len(current) > 0 {
		chunks = append(chunks, models.Chunk{
			RecordID:   recordID,
			ChunkIndex: chunkIndex,
			Content:    strings.Join(current, "\n\n"),
			Tokens:     tokenCount,
		})
	}
	return chunks
}

// overlapSeed returns the trailing paragraphs of the just-closed chunk that
// seed the next one, in original order, together with their word count.
// Whole paragraphs are taken walking backward until the overlap budget is
// reached; the paragraph that crosses the budget is included in full.
func (c *Chunker) overlapSeed(closed []string) ([]string, int) {
	if c.overlapTokens == 0 {
		return nil, 0
	}
	tokens := 0
	start := len(closed)
	for start > 0 {
		start--
		tokens += countWords(closed[start])
		if tokens >= c.overlapTokens {
			break
		}
	}
	seed := make([]string, len(closed)-start)
	copy(seed, closed[start:])
	return seed, tokens
}

// splitParagraphs breaks text into paragraphs on runs of blank lines. Each
// paragraph is a maximal run of non-blank lines joined by newlines, trimmed of
// leading and trailing whitespace. Empty paragraphs are dropped.
func splitParagraphs(text string) []string {
	var paragraphs []string
	var lines []string
	flush := func() {
		if len(lines) == 0 {
			return
		}
		p := strings.TrimSpace(strings.Join(lines, "\n"))
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
		lines = lines[:0]
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		lines = append(lines, line)
	}
	flush()
	return paragraphs
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
