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


package verbatim

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// SpeakerInfo holds parsed speaker identity and attributes.
type SpeakerInfo struct {
	Name          string
	Demographics  string // "Gender, AgeRange" when parsed, otherwise empty
	Location      string
	RawIdentifier string
}

// Verbatim is a single extracted quotation with attribution.
type Verbatim struct {
	Quote          string // Original spoken content, surrounding whitespace trimmed
	CleanedQuote   string
	Speaker        SpeakerInfo
	RelevanceScore float32 // Inherited unchanged from the source passage
	SourceChunk    string
	Timestamp      string
	WordCount      int
}

// Passage is one retrieved text passage with its relevance score.
type Passage struct {
	Text  string
	Score float32
}

// Options controls extraction filtering.
type Options struct {
	// MinLength and MaxLength bound the cleaned quote's character count.
	MinLength int
	MaxLength int

	// ExcludeModerator drops quotes whose speaker matches a moderator alias.
	ExcludeModerator bool

	// ParticipantFilter is a comma-separated list of criteria tokens
	// (e.g. "M, 18-24"). When set, a quote is kept only if some token is a
	// case-insensitive substring of the speaker's demographics or location.
	ParticipantFilter string

	// IncludeContext keeps the full source passage on each verbatim.
	IncludeContext bool
}

// DefaultOptions returns the standard extraction settings.
func DefaultOptions() Options {
	return Options{
		MinLength:        20,
		MaxLength:        500,
		ExcludeModerator: true,
	}
}

// Extractor parses speaker-tagged transcript segments out of passages.
type Extractor struct {
	headerPattern       *regexp.Regexp
	demographicsPattern *regexp.Regexp
	whitespacePattern   *regexp.Regexp
	fillerPattern       *regexp.Regexp
	logger              *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewExtractor creates an Extractor with its patterns precompiled.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		// Speaker header: comma-separated identifier run, optional
		// trailing comma, optional bracketed timestamp, colon. The spoken
		// content that follows is delimited separately; see contentEnd.
		headerPattern: regexp.MustCompile(`([^,:\[\n]+(?:,[ \t]*[^,:\[\n]+)*),?[ \t]*(?:\[([^\]]+)\])?[ \t]*:`),

		// Demographic identifier: Name, Gender, AgeRange, LOCATION
		demographicsPattern: regexp.MustCompile(`^([^,]+),\s*([MF]),\s*(\d+-\d+),\s*([A-Z]+)`),

		whitespacePattern: regexp.MustCompile(`\s+`),
		fillerPattern:     regexp.MustCompile(`(?i)\b(um|uh|like|you know)\b`),
		logger:            slog.Default().With("component", "verbatim-extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract scans the passages for speaker-tagged segments and returns the
// verbatims that pass the configured filters, sorted by relevance score
// descending. The sort is stable, so ties keep passage-then-discovery
// order. Malformed segments are logged and skipped; extraction never fails
// on bad transcript text.
func (e *Extractor) Extract(query string, passages []Passage, opts Options) ([]Verbatim, error) {
	if opts.MinLength > opts.MaxLength {
		return nil, ErrInvalidLengthBounds
	}

	e.logger.Info("extracting verbatims", "query", truncate(query, 50), "passages", len(passages))

	verbatims := []Verbatim{}
	for _, passage := range passages {
		verbatims = append(verbatims, e.extractFromPassage(passage, opts)...)
	}

	sort.SliceStable(verbatims, func(i, j int) bool {
		return verbatims[i].RelevanceScore > verbatims[j].RelevanceScore
	})

	e.logger.Info("extracted verbatims", "count", len(verbatims))
	return verbatims, nil
}

// extractFromPassage finds all speaker segments in one passage, left to
// right and non-overlapping.
func (e *Extractor) extractFromPassage(passage Passage, opts Options) []Verbatim {
	var verbatims []Verbatim

	text := passage.Text
	pos := 0
	for pos < len(text) {
		loc := e.headerPattern.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			break
		}

		speakerRaw := strings.TrimSpace(text[pos+loc[2] : pos+loc[3]])
		timestamp := ""
		if loc[4] != -1 {
			timestamp = strings.TrimSpace(text[pos+loc[4] : pos+loc[5]])
		}

		// Content starts after the colon, minus same-line whitespace.
		contentStart := pos + loc[1]
		for contentStart < len(text) && (text[contentStart] == ' ' || text[contentStart] == '\t') {
			contentStart++
		}
		end := contentEnd(text, contentStart)
		quote := strings.TrimSpace(text[contentStart:end])
		pos = end

		if speakerRaw == "" {
			e.logger.Debug("skipping segment with empty speaker identifier")
			continue
		}

		speaker := e.parseSpeakerInfo(speakerRaw)

		if opts.ExcludeModerator && isModerator(speaker.Name) {
			continue
		}

		cleaned := e.cleanQuote(quote)

		// Length bounds are in characters, not bytes.
		if n := utf8.RuneCountInString(cleaned); n < opts.MinLength || n > opts.MaxLength {
			continue
		}

		if opts.ParticipantFilter != "" && !matchesParticipantFilter(speaker, opts.ParticipantFilter) {
			continue
		}

		verbatims = append(verbatims, Verbatim{
			Quote:          quote,
			CleanedQuote:   cleaned,
			Speaker:        speaker,
			RelevanceScore: passage.Score,
			SourceChunk:    passage.Text,
			Timestamp:      timestamp,
			WordCount:      len(strings.Fields(cleaned)),
		})
	}

	return verbatims
}

// contentEnd finds where spoken content ends: at the first newline that is
// followed by an uppercase letter or a blank line, or at a trailing
// newline, or at end of text. The delimiting newline is not consumed, so
// the scan resumes on it.
func contentEnd(text string, start int) int {
	for i := start; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		if i+1 == len(text) {
			return i
		}
		next := text[i+1]
		if next == '\n' || (next >= 'A' && next <= 'Z') {
			return i
		}
	}
	return len(text)
}

// cleanQuote normalizes spoken content: whitespace runs collapse to single
// spaces, whole-word fillers are removed, and a single trailing period is
// stripped.
func (e *Extractor) cleanQuote(quote string) string {
	cleaned := strings.TrimSpace(e.whitespacePattern.ReplaceAllString(quote, " "))
	cleaned = e.fillerPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSuffix(cleaned, ".")
	return strings.TrimSpace(e.whitespacePattern.ReplaceAllString(cleaned, " "))
}

// matchesParticipantFilter reports whether any comma-separated criteria
// token is a case-insensitive substring of the speaker's demographics or
// location.
func matchesParticipantFilter(speaker SpeakerInfo, filter string) bool {
	demographics := strings.ToUpper(speaker.Demographics)
	location := strings.ToUpper(speaker.Location)

	for _, part := range strings.Split(filter, ",") {
		token := strings.ToUpper(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		if strings.Contains(demographics, token) || strings.Contains(location, token) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
