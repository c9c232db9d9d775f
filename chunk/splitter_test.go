package chunk

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		s, err := New(1000, 200)
		require.NoError(t, err)
		assert.NotNil(t, s)
	})

	t.Run("zero overlap", func(t *testing.T) {
		s, err := New(10, 0)
		require.NoError(t, err)
		assert.NotNil(t, s)
	})

	t.Run("zero chunk size", func(t *testing.T) {
		_, err := New(0, 0)
		assert.ErrorIs(t, err, ErrInvalidChunkSize)
	})

	t.Run("negative chunk size", func(t *testing.T) {
		_, err := New(-5, 0)
		assert.ErrorIs(t, err, ErrInvalidChunkSize)
	})

	t.Run("negative overlap", func(t *testing.T) {
		_, err := New(10, -1)
		assert.ErrorIs(t, err, ErrInvalidOverlap)
	})

	t.Run("overlap equal to chunk size", func(t *testing.T) {
		_, err := New(10, 10)
		assert.ErrorIs(t, err, ErrInvalidOverlap)
	})
}

func TestSplit_ShortTextPassthrough(t *testing.T) {
	s, err := New(1000, 200)
	require.NoError(t, err)

	segments := s.Split("short text")
	require.Len(t, segments, 1)
	assert.Equal(t, "short text", segments[0].Text)
	assert.Equal(t, 0, segments[0].Start)
	assert.Equal(t, len("short text"), segments[0].End)
	assert.Equal(t, 0, segments[0].Index)
}

func TestSplit_EmptyText(t *testing.T) {
	s, err := New(100, 10)
	require.NoError(t, err)

	// Empty input passes through as a single empty segment; the caller
	// filters emptiness upstream.
	segments := s.Split("")
	require.Len(t, segments, 1)
	assert.Equal(t, "", segments[0].Text)
}

func TestSplit_SentenceBoundaryPreference(t *testing.T) {
	s, err := New(15, 0)
	require.NoError(t, err)

	segments := s.Split("Sentence one. Sentence two. Sentence three.")
	require.Len(t, segments, 3)
	assert.Equal(t, "Sentence one.", segments[0].Text)
	assert.Equal(t, "Sentence two.", segments[1].Text)
	assert.Equal(t, "Sentence three.", segments[2].Text)
}

func TestSplit_ParagraphBreakFallback(t *testing.T) {
	s, err := New(20, 0)
	require.NoError(t, err)

	// No sentence terminators inside the window, so the paragraph break
	// should win over the hard cut.
	text := "first paragraph\n\nsecond paragraph here"
	segments := s.Split(text)
	require.NotEmpty(t, segments)
	assert.Equal(t, "first paragraph", segments[0].Text)
}

func TestSplit_NewlineFallback(t *testing.T) {
	s, err := New(20, 0)
	require.NoError(t, err)

	text := "first line of text\nsecond line of text"
	segments := s.Split(text)
	require.NotEmpty(t, segments)
	assert.Equal(t, "first line of text", segments[0].Text)
}

func TestSplit_HardCutWithoutBoundaries(t *testing.T) {
	s, err := New(10, 3)
	require.NoError(t, err)

	text := strings.Repeat("a", 25)
	segments := s.Split(text)
	require.NotEmpty(t, segments)

	assert.Equal(t, 10, len(segments[0].Text))
	// Middle segments overlap their predecessor by exactly the configured
	// amount when no boundary snapping happens.
	for i := 1; i < len(segments)-1; i++ {
		assert.Equal(t, 3, segments[i-1].End-segments[i].Start)
	}
}

func TestSplit_TailAdvancesPastEnd(t *testing.T) {
	s, err := New(10, 3)
	require.NoError(t, err)

	// The cursor advances by chunkSize-overlap even on the final chunk,
	// so a boundary-free tail yields exactly one short segment instead of
	// a run of shrinking suffixes.
	segments := s.Split(strings.Repeat("a", 25))
	require.Len(t, segments, 4)

	wantStarts := []int{0, 7, 14, 21}
	wantEnds := []int{10, 17, 24, 25}
	for i, seg := range segments {
		assert.Equal(t, wantStarts[i], seg.Start)
		assert.Equal(t, wantEnds[i], seg.End)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s, err := New(50, 10)
	require.NoError(t, err)

	text := "One sentence here. Another one follows! A question? Yes.\n\nA new paragraph with more words in it. The end."
	first := s.Split(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.Split(text))
	}
}

func TestSplit_OffsetsMatchSource(t *testing.T) {
	s, err := New(40, 10)
	require.NoError(t, err)

	text := "Alpha beta gamma. Delta epsilon zeta! Eta theta iota kappa?\nLambda mu nu.\n\nXi omicron pi rho sigma tau."
	segments := s.Split(text)
	require.NotEmpty(t, segments)

	for i, seg := range segments {
		assert.Equal(t, i, seg.Index)
		assert.Equal(t, text[seg.Start:seg.End], seg.Text, "segment %d offsets", i)
		assert.NotEmpty(t, seg.Text)
		if i > 0 {
			assert.GreaterOrEqual(t, seg.Start, segments[i-1].Start, "segment %d start order", i)
		}
	}
}

func TestSplit_Coverage(t *testing.T) {
	s, err := New(30, 5)
	require.NoError(t, err)

	text := "The quick brown fox jumps over the lazy dog. Pack my box with five dozen liquor jugs. How vexingly quick daft zebras jump!"
	segments := s.Split(text)
	require.NotEmpty(t, segments)

	// Every character between the end of one segment's span and the start
	// of the next (and before the first / after the last) is whitespace.
	isSpaceOnly := func(s string) bool {
		return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) == -1
	}

	assert.True(t, isSpaceOnly(text[:segments[0].Start]))
	covered := segments[0].End
	for _, seg := range segments[1:] {
		if seg.Start > covered {
			assert.True(t, isSpaceOnly(text[covered:seg.Start]), "gap [%d, %d)", covered, seg.Start)
		}
		if seg.End > covered {
			covered = seg.End
		}
	}
	assert.True(t, isSpaceOnly(text[covered:]))
}

func TestSplit_TerminatesWithLargeOverlap(t *testing.T) {
	// Overlap nearly as large as the chunk size plus aggressive boundary
	// snapping must still make forward progress on every iteration.
	s, err := New(5, 4)
	require.NoError(t, err)

	text := "a\nb\nc\nd\ne\nf\ng\nh\ni\nj"
	segments := s.Split(text)
	require.NotEmpty(t, segments)
	assert.LessOrEqual(t, len(segments), len(text))

	for i := 1; i < len(segments); i++ {
		assert.GreaterOrEqual(t, segments[i].Start, segments[i-1].Start)
	}
}

func TestSplit_SegmentCountBound(t *testing.T) {
	s, err := New(100, 20)
	require.NoError(t, err)

	// Boundary-free text, so every cut is a hard cut and the cursor
	// advances by exactly chunkSize-overlap per iteration.
	text := strings.Repeat("a", 1000)
	segments := s.Split(text)

	// At most ceil(len / (chunkSize - overlap)) iterations, each emitting
	// at most one segment.
	bound := (len(text) + 79) / 80
	assert.LessOrEqual(t, len(segments), bound)
}
