package tts

import "strings"

// Tone is a coarse emotional category selecting a prosody profile.
type Tone string

const (
	ToneExcited      Tone = "excited"
	ToneCalm         Tone = "calm"
	ToneEnthusiastic Tone = "enthusiastic"
	ToneThoughtful   Tone = "thoughtful"
	ToneEncouraging  Tone = "encouraging"
	ToneExplanatory  Tone = "explanatory"
)

// Prosody is the SSML profile applied at the utterance root.
type Prosody struct {
	Pitch  string
	Rate   string
	Volume string
}

var prosodyByTone = map[Tone]Prosody{
	ToneExcited:      {Pitch: "+4st", Rate: "1.05", Volume: "+3dB"},
	ToneCalm:         {Pitch: "+1st", Rate: "0.90", Volume: "+2dB"},
	ToneEnthusiastic: {Pitch: "+3st", Rate: "1.10", Volume: "+4dB"},
	ToneThoughtful:   {Pitch: "0st", Rate: "0.85", Volume: "+1dB"},
	ToneEncouraging:  {Pitch: "+2st", Rate: "0.95", Volume: "+3dB"},
	ToneExplanatory:  {Pitch: "+1st", Rate: "0.88", Volume: "+2dB"},
}

// toneKeywords is checked in order; the first category with a match wins.
var toneKeywords = []struct {
	tone     Tone
	keywords []string
}{
	{ToneExcited, []string{"amazing", "fantastic", "incredible", "wow", "excellent", "brilliant"}},
	{ToneEncouraging, []string{"great job", "well done", "perfect", "exactly", "good work"}},
	{ToneThoughtful, []string{"let me explain", "consider this", "think about", "understand"}},
	{ToneEnthusiastic, []string{"let's explore", "discover", "learn about", "dive into"}},
}

// Classify maps reply text to a tone by keyword heuristics. Total: always
// returns a tone, defaulting to explanatory.
func Classify(text string) Tone {
	lower := strings.ToLower(text)
	for _, entry := range toneKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.tone
			}
		}
	}
	return ToneExplanatory
}

// ProsodyFor returns the profile for a tone, falling back to explanatory.
func ProsodyFor(tone Tone) Prosody {
	if p, ok := prosodyByTone[tone]; ok {
		return p
	}
	return prosodyByTone[ToneExplanatory]
}
