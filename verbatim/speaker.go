package verbatim

import "strings"

// moderatorAliases are matched as substrings of the speaker identifier,
// case-insensitively.
var moderatorAliases = []string{"Moderator", "MODERATOR", "Mod", "MOD"}

// parseSpeakerInfo derives speaker identity from the raw identifier.
//
// The demographic form "Name, Gender, AgeRange, LOCATION" is tried first;
// otherwise any moderator alias collapses to "Moderator"; otherwise the raw
// identifier is used verbatim as the name. This always succeeds.
func (e *Extractor) parseSpeakerInfo(raw string) SpeakerInfo {
	if m := e.demographicsPattern.FindStringSubmatch(raw); m != nil {
		return SpeakerInfo{
			Name:          strings.TrimSpace(m[1]),
			Demographics:  m[2] + ", " + m[3],
			Location:      m[4],
			RawIdentifier: raw,
		}
	}

	if isModerator(raw) {
		return SpeakerInfo{
			Name:          "Moderator",
			RawIdentifier: raw,
		}
	}

	return SpeakerInfo{
		Name:          raw,
		RawIdentifier: raw,
	}
}

// isModerator reports whether the name contains a moderator alias,
// case-insensitively.
func isModerator(name string) bool {
	lower := strings.ToLower(name)
	for _, alias := range moderatorAliases {
		if strings.Contains(lower, strings.ToLower(alias)) {
			return true
		}
	}
	return false
}
