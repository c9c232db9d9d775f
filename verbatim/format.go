package verbatim

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// Format selects the textual rendering style for verbatims.
type Format int

const (
	// FormatResearch renders `"quote" - Name, Location, Demographics`.
	FormatResearch Format = iota
	// FormatQuotesOnly renders the quoted text alone.
	FormatQuotesOnly
	// FormatDetailed renders the research style plus a metadata line.
	FormatDetailed
	// FormatCSV renders tabular output; see ExportCSV.
	FormatCSV
)

// String returns the format's canonical name.
func (f Format) String() string {
	switch f {
	case FormatResearch:
		return "research"
	case FormatQuotesOnly:
		return "quotes_only"
	case FormatDetailed:
		return "detailed"
	case FormatCSV:
		return "csv"
	default:
		return "unknown"
	}
}

// ParseFormat converts a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "research":
		return FormatResearch, nil
	case "quotes_only":
		return FormatQuotesOnly, nil
	case "detailed":
		return FormatDetailed, nil
	case "csv":
		return FormatCSV, nil
	default:
		return FormatResearch, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Render formats each verbatim according to the style. It applies no
// filtering. FormatCSV callers should use ExportCSV; here it falls back to
// the research style.
func Render(verbatims []Verbatim, format Format) []string {
	formatted := make([]string, 0, len(verbatims))
	for _, v := range verbatims {
		switch format {
		case FormatQuotesOnly:
			formatted = append(formatted, fmt.Sprintf(`"%s"`, v.CleanedQuote))
		case FormatDetailed:
			formatted = append(formatted, fmt.Sprintf("\"%s\" - %s\n[Relevance: %.3f | Words: %d | Time: %s]",
				v.CleanedQuote, attribution(v.Speaker), v.RelevanceScore, v.WordCount, v.Timestamp))
		default:
			formatted = append(formatted, fmt.Sprintf(`"%s" - %s`, v.CleanedQuote, attribution(v.Speaker)))
		}
	}
	return formatted
}

// attribution joins the non-empty speaker fields: Name, then Location,
// then Demographics.
func attribution(speaker SpeakerInfo) string {
	parts := []string{speaker.Name}
	if speaker.Location != "" {
		parts = append(parts, speaker.Location)
	}
	if speaker.Demographics != "" {
		parts = append(parts, speaker.Demographics)
	}
	return strings.Join(parts, ", ")
}

// csvHeader is the stable column order of the CSV export.
var csvHeader = []string{"Quote", "Speaker", "Demographics", "Location", "Relevance_Score", "Word_Count", "Timestamp"}

// ExportCSV renders verbatims as CSV with a fixed header row. Relevance
// scores are formatted to three decimals. An empty input yields the header
// row alone.
func ExportCSV(verbatims []Verbatim) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}

	for _, v := range verbatims {
		row := []string{
			v.CleanedQuote,
			v.Speaker.Name,
			v.Speaker.Demographics,
			v.Speaker.Location,
			fmt.Sprintf("%.3f", v.RelevanceScore),
			strconv.Itoa(v.WordCount),
			v.Timestamp,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return sb.String(), w.Error()
}
