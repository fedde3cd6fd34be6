package tts

import (
	"fmt"
	"regexp"
	"strings"
)

// RenderSSML converts plain reply text plus a tone into an SSML utterance.
// Pure and deterministic: no synthesis backend involved. If the generated
// markup fails the balance check, the plain-text cleanup is returned instead
// so the backend never receives malformed SSML.
func RenderSSML(text string, tone Tone) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 5 {
		return trimmed
	}

	sentences := splitSentences(trimmed)
	if len(sentences) == 0 {
		return trimmed
	}

	prosody := ProsodyFor(tone)

	var b strings.Builder
	b.WriteString("<speak>")
	fmt.Fprintf(&b, `<prosody rate=%q pitch=%q volume=%q>`, prosody.Rate, prosody.Pitch, prosody.Volume)

	for i, s := range sentences {
		emphasized := addEmphasis(s.text)
		b.WriteString(applySpeechPattern(emphasized, i, len(sentences)))

		if i < len(sentences)-1 {
			b.WriteString(pauseAfter(s.terminator))
		}
	}

	b.WriteString("</prosody>")
	b.WriteString("</speak>")

	ssml := b.String()
	if !validSSML(ssml) {
		return cleanPlainText(text)
	}
	return ssml
}

type sentence struct {
	text       string
	terminator byte
}

// splitSentences splits on terminal punctuation, remembering which
// terminator ended each sentence so pause lengths can vary.
func splitSentences(text string) []sentence {
	var out []sentence
	var current strings.Builder
	var lastTerm byte

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			out = append(out, sentence{text: s, terminator: lastTerm})
		}
		current.Reset()
	}

	inRun := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '.' || c == '!' || c == '?' {
			if !inRun {
				lastTerm = c
				inRun = true
			}
			continue
		}
		if inRun {
			flush()
			inRun = false
		}
		current.WriteByte(c)
	}
	if inRun {
		flush()
	} else {
		lastTerm = 0
		flush()
	}
	return out
}

func pauseAfter(terminator byte) string {
	switch terminator {
	case '?':
		return `<break time="0.6s"/>`
	case '!':
		return `<break time="0.4s"/>`
	default:
		return `<break time="0.3s"/>`
	}
}

var emphasisPatterns = []struct {
	level string
	re    *regexp.Regexp
}{
	{"strong", regexp.MustCompile(`(?i)\b(important|crucial|essential|key|vital|critical)\b`)},
	{"moderate", regexp.MustCompile(`(?i)\b(remember|note|notice|observe|consider|understand)\b`)},
}

func addEmphasis(sentence string) string {
	result := sentence
	for _, p := range emphasisPatterns {
		result = p.re.ReplaceAllString(result, `<emphasis level="`+p.level+`">$1</emphasis>`)
	}
	return result
}

// applySpeechPattern varies prosody by sentence position: a pitch lift on the
// opener, a rate drop on the closer, and a small lift on alternating interior
// sentences of longer utterances.
func applySpeechPattern(sentence string, position, total int) string {
	switch {
	case position == 0 && total > 1:
		return `<prosody pitch="+1st">` + sentence + `</prosody>`
	case position == total-1 && total > 1:
		return `<prosody rate="0.95">` + sentence + `</prosody>`
	case total > 2 && position%2 == 1:
		return `<prosody pitch="+0.5st">` + sentence + `</prosody>`
	default:
		return sentence
	}
}

// validSSML checks that open and close tag counts balance for the root,
// prosody, and emphasis elements.
func validSSML(ssml string) bool {
	if strings.Count(ssml, "<speak>") != 1 || strings.Count(ssml, "</speak>") != 1 {
		return false
	}
	if strings.Count(ssml, "<prosody") != strings.Count(ssml, "</prosody>") {
		return false
	}
	return strings.Count(ssml, "<emphasis") == strings.Count(ssml, "</emphasis>")
}

var sentenceSpacing = regexp.MustCompile(`([.!?])\s+`)

// cleanPlainText is the fallback when SSML generation fails: normalize the
// whitespace after sentence punctuation and return the text unmarked.
func cleanPlainText(text string) string {
	return sentenceSpacing.ReplaceAllString(strings.TrimSpace(text), "$1 ")
}

// IsSSML reports whether rendered output is markup rather than plain text.
func IsSSML(s string) bool {
	return strings.HasPrefix(s, "<speak>")
}
