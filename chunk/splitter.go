package chunk

import (
	"strings"
	"unicode"
)

// Default splitter parameters, in characters.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// sentenceBoundaries are searched first, in order of discovery position.
// Each is a sentence terminator followed by a space or newline.
var sentenceBoundaries = []string{". ", ".\n", "! ", "!\n", "? ", "?\n"}

// Segment is one chunk of the source text. Start and End are a half-open
// byte range into the source after whitespace trimming; Index is the
// 0-based position in the emission order.
type Segment struct {
	Text  string
	Start int
	End   int
	Index int
}

// Splitter carves text into overlapping boundary-aware segments.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a Splitter. chunkSize must be positive and overlap must be
// in [0, chunkSize).
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, ErrInvalidOverlap
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// Split carves text into segments. Text no longer than the chunk size is
// returned as a single untrimmed segment, even when empty; the caller
// filters emptiness upstream. Longer text yields trimmed, non-empty
// segments in non-decreasing start order.
func (s *Splitter) Split(text string) []Segment {
	if len(text) <= s.chunkSize {
		return []Segment{{Text: text, Start: 0, End: len(text), Index: 0}}
	}

	var segments []Segment
	start := 0

	for start < len(text) {
		end := start + s.chunkSize

		if end < len(text) {
			// Not the last chunk: prefer a natural boundary.
			if b := lastBoundary(text, start, end); b != -1 {
				end = b
			}
		}

		// The advance below uses the unclamped end; only the emitted
		// slice is clamped to the text. Advancing from a clamped end
		// would re-emit overlapping suffixes of the tail.
		sliceEnd := end
		if sliceEnd > len(text) {
			sliceEnd = len(text)
		}

		if seg, ok := trimSegment(text, start, sliceEnd, len(segments)); ok {
			segments = append(segments, seg)
		}

		// Advance with overlap. The max(start+1, ...) rule guarantees
		// forward progress even when the overlap covers the whole segment.
		next := end - s.overlap
		if next < start+1 {
			next = start + 1
		}
		start = next
	}

	return segments
}

// lastBoundary finds the right-most natural boundary in text[start:end) and
// returns the position just past it, or -1 if none exists. Sentence
// terminators win over paragraph breaks, which win over single newlines.
func lastBoundary(text string, start, end int) int {
	window := text[start:end]

	best := -1
	for _, b := range sentenceBoundaries {
		if pos := strings.LastIndex(window, b); pos != -1 && pos+len(b) > best {
			best = pos + len(b)
		}
	}

	if best == -1 {
		if pos := strings.LastIndex(window, "\n\n"); pos != -1 {
			best = pos + 2
		}
	}

	if best == -1 {
		if pos := strings.LastIndex(window, "\n"); pos != -1 {
			best = pos + 1
		}
	}

	if best == -1 {
		return -1
	}
	return start + best
}

// trimSegment trims surrounding whitespace from text[start:end) and builds
// a Segment with offsets adjusted to the trimmed span. Returns false when
// the trimmed result is empty.
func trimSegment(text string, start, end, index int) (Segment, bool) {
	raw := text[start:end]
	leftTrimmed := strings.TrimLeftFunc(raw, unicode.IsSpace)
	trimmed := strings.TrimRightFunc(leftTrimmed, unicode.IsSpace)
	if trimmed == "" {
		return Segment{}, false
	}
	segStart := start + len(raw) - len(leftTrimmed)
	return Segment{
		Text:  trimmed,
		Start: segStart,
		End:   segStart + len(trimmed),
		Index: index,
	}, true
}
