package workflow

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// maxTTSChars bounds the text handed to the TTS worker.
const maxTTSChars = 5000

var (
	timestampPattern = regexp.MustCompile(`\[\d{1,2}:\d{2}\]`)
	speakerCue       = regexp.MustCompile(`(?m)^\s*(HOST|NARRATOR|SPEAKER)\s*:\s*`)
	stageDirection   = regexp.MustCompile(`\[[^\]]*\]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// normalizeForTTS strips script markup the TTS engine would read aloud:
// [M:SS] timestamps, leading speaker cues, [bracketed] stage directions.
// Whitespace is collapsed and the result truncated to the worker budget.
func normalizeForTTS(script string) string {
	s := timestampPattern.ReplaceAllString(script, " ")
	s = speakerCue.ReplaceAllString(s, "")
	s = stageDirection.ReplaceAllString(s, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if len(s) > maxTTSChars {
		// Never cut a multi-byte rune in half.
		cut := maxTTSChars
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
