package analyzer

import (
	"github.com/sells-group/site-analyzer/internal/model"
)

// Default chunking parameters.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 100
)

// chunkSeparators are tried in priority order when choosing where a chunk
// ends. The break falls immediately after the separator.
var chunkSeparators = [][]rune{
	[]rune("\n\n"),
	[]rune("\n"),
	[]rune(". "),
	[]rune("! "),
	[]rune("? "),
	[]rune(" "),
}

// Split divides text into chunks of at most size runes. Consecutive chunks
// share exactly overlap runes: each chunk after the first begins overlap
// runes before the previous chunk ended. Within a window the chunk ends after
// the last occurrence of the highest-priority separator that still leaves
// room for progress; with no such separator the window is hard-cut.
//
// Empty text yields an empty slice. A non-positive size falls back to
// DefaultChunkSize and an overlap outside [0, size) is treated as zero.
func Split(text string, size, overlap int) []model.Chunk {
	runes := []rune(text)
	n := len(runes)
	chunks := []model.Chunk{}
	if n == 0 {
		return chunks
	}

	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	start := 0
	for {
		end := start + size
		if end >= n {
			end = n
		} else {
			end = breakPoint(runes, start, end, overlap)
		}

		chunks = append(chunks, model.Chunk{
			Content: string(runes[start:end]),
			Index:   len(chunks),
			Start:   start,
			End:     end,
		})

		if end == n {
			return chunks
		}
		start = end - overlap
	}
}

// breakPoint returns the chunk end for the window [start, limit). The result
// is always greater than start+overlap so the next chunk makes progress.
func breakPoint(runes []rune, start, limit, overlap int) int {
	floor := start + overlap
	for _, sep := range chunkSeparators {
		for i := limit - len(sep); i >= start; i-- {
			if !hasRunesAt(runes, i, sep) {
				continue
			}
			if brk := i + len(sep); brk > floor {
				return brk
			}
			// Earlier occurrences only move the break further left.
			break
		}
	}
	return limit
}

func hasRunesAt(runes []rune, at int, sep []rune) bool {
	if at+len(sep) > len(runes) {
		return false
	}
	for j, r := range sep {
		if runes[at+j] != r {
			return false
		}
	}
	return true
}
