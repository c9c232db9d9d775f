// Package verbatim extracts clean, speaker-attributed quotations from
// transcript text.
//
// Transcripts tag each spoken segment with a speaker identifier and a
// bracketed timestamp, for example:
//
//	Jane, F, 25-34, NYC [00:12:03]: I really liked the second concept.
//
// The Extractor scans retrieved passages for such segments, parses speaker
// identity and demographics, cleans the spoken content of disfluencies,
// applies length and participant filters, and returns structured verbatims
// ranked by the relevance score of the passage they came from.
//
// An Extractor holds only immutable compiled patterns and is safe for
// concurrent use.
package verbatim
