package verbatim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSpeakerInfo(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name string
		raw  string
		want SpeakerInfo
	}{
		{
			name: "full demographics",
			raw:  "Jane, F, 25-34, NYC",
			want: SpeakerInfo{
				Name:          "Jane",
				Demographics:  "F, 25-34",
				Location:      "NYC",
				RawIdentifier: "Jane, F, 25-34, NYC",
			},
		},
		{
			name: "male speaker",
			raw:  "Bob, M, 18-24, LA",
			want: SpeakerInfo{
				Name:          "Bob",
				Demographics:  "M, 18-24",
				Location:      "LA",
				RawIdentifier: "Bob, M, 18-24, LA",
			},
		},
		{
			name: "moderator canonical",
			raw:  "Moderator",
			want: SpeakerInfo{Name: "Moderator", RawIdentifier: "Moderator"},
		},
		{
			name: "moderator abbreviated",
			raw:  "MOD",
			want: SpeakerInfo{Name: "Moderator", RawIdentifier: "MOD"},
		},
		{
			name: "moderator mixed case",
			raw:  "moderator 2",
			want: SpeakerInfo{Name: "Moderator", RawIdentifier: "moderator 2"},
		},
		{
			name: "bare name falls back",
			raw:  "Participant 3",
			want: SpeakerInfo{Name: "Participant 3", RawIdentifier: "Participant 3"},
		},
		{
			name: "partial demographics fall back",
			raw:  "Jane, F",
			want: SpeakerInfo{Name: "Jane, F", RawIdentifier: "Jane, F"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.parseSpeakerInfo(tt.raw)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsModerator(t *testing.T) {
	assert.True(t, isModerator("Moderator"))
	assert.True(t, isModerator("MODERATOR"))
	assert.True(t, isModerator("mod"))
	assert.True(t, isModerator("Session Moderator"))
	assert.False(t, isModerator("Jane"))
	assert.False(t, isModerator("Participant 3"))
}
