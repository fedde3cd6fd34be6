package tts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want Tone
	}{
		{"That's amazing progress!", ToneExcited},
		{"WOW, brilliant work", ToneExcited},
		{"Great job on that problem", ToneEncouraging},
		{"Let me explain how this works", ToneThoughtful},
		{"Let's explore the water cycle", ToneEnthusiastic},
		{"The mitochondria is the powerhouse of the cell", ToneExplanatory},
		{"", ToneExplanatory},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.text), "text: %q", tc.text)
	}
}

func TestClassifyPriorityOrder(t *testing.T) {
	t.Parallel()

	// Excited keywords win over later categories when both match.
	got := Classify("Amazing! Let me explain why.")
	assert.Equal(t, ToneExcited, got)
}

func TestProsodyForUnknownTone(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ProsodyFor(ToneExplanatory), ProsodyFor(Tone("nonsense")))
}

func TestProsodyProfiles(t *testing.T) {
	t.Parallel()

	p := ProsodyFor(ToneExcited)
	assert.Equal(t, "+4st", p.Pitch)
	assert.Equal(t, "1.05", p.Rate)
	assert.Equal(t, "+3dB", p.Volume)
}
