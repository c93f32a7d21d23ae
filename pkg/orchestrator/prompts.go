package orchestrator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/stumpworks/stumpcast/pkg/models"
)

const scriptSystemPrompt = `You are a podcast script writer. You build engaging single-narrator episodes out of archived political speeches.

RULES:
1. Ground every claim in the provided speech material - do not invent quotes or events
2. Open with a hook, then move chronologically or thematically through the material
3. Use natural spoken language - contractions, short sentences, no bullet points
4. Mark timestamps like [0:00] at section boundaries
5. Close with a brief reflection tying the speeches together

Return ONLY the script text. No preamble, no markdown fences.`

const (
	agentContentAnalyst    = "content analyst"
	agentNarrativeDesigner = "narrative designer"
	agentAudioProducer     = "audio producer"
)

const excerptLimit = 500

// speechBlock renders one speech for prompt embedding: title, date,
// location and a bounded transcript excerpt.
func speechBlock(sp models.Speech) string {
	var b strings.Builder
	fmt.Fprintf(&b, "TITLE: %s\n", sp.Title)
	if sp.Date != "" {
		fmt.Fprintf(&b, "DATE: %s\n", sp.Date)
	}
	if sp.RallyLocation != "" {
		fmt.Fprintf(&b, "LOCATION: %s\n", sp.RallyLocation)
	}
	if sp.Transcript != "" {
		fmt.Fprintf(&b, "EXCERPT: %s\n", truncateAtRune(sp.Transcript, excerptLimit))
	}
	return b.String()
}

// truncateAtRune cuts s to at most limit bytes, backing off to the nearest
// rune boundary so the result stays valid UTF-8.
func truncateAtRune(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func speechBlocks(speeches []models.Speech) string {
	blocks := make([]string, 0, len(speeches))
	for _, sp := range speeches {
		blocks = append(blocks, speechBlock(sp))
	}
	return strings.Join(blocks, "\n---\n")
}

func titlesOf(speeches []models.Speech) []string {
	titles := make([]string, 0, len(speeches))
	for _, sp := range speeches {
		titles = append(titles, sp.Title)
	}
	return titles
}

// buildSinglePrompt asks for a complete script over all speeches in one call.
func buildSinglePrompt(speeches []models.Speech, style string, durationMinutes int) string {
	return fmt.Sprintf(`Write a %d-minute podcast script in a %s style covering the following %d speeches.

%s`, durationMinutes, style, len(speeches), speechBlocks(speeches))
}

// buildBatchSummaryPrompt asks for a compact summary of one batch.
func buildBatchSummaryPrompt(batch []models.Speech) string {
	return fmt.Sprintf(`Summarize the key themes, notable quotes and context of the following %d speeches in at most 200 words. Write prose, not a list.

%s`, len(batch), speechBlocks(batch))
}

// buildBatchSynthesisPrompt combines batch summaries into the final script.
func buildBatchSynthesisPrompt(summaries []string, style string, durationMinutes int, total int) string {
	return fmt.Sprintf(`You are given summaries of %d archived speeches, produced in batches. Write a %d-minute podcast script in a %s style that weaves them into one coherent episode.

SUMMARIES:
%s`, total, durationMinutes, style, strings.Join(summaries, "\n\n"))
}

// buildAgentPrompt produces one specialized swarm agent prompt over a
// contiguous slice of the input.
func buildAgentPrompt(role string, slice []models.Speech) string {
	var task string
	switch role {
	case agentContentAnalyst:
		task = "Extract the key claims, themes and most quotable lines from these speeches. Note dates and locations where relevant."
	case agentNarrativeDesigner:
		task = "Design a narrative arc for a podcast episode drawing on these speeches: opening hook, act structure, transitions, closing beat."
	case agentAudioProducer:
		task = "Plan the audio treatment for an episode built from these speeches: pacing, tone shifts, where to slow down or punch a line, rough timestamp layout."
	}
	return fmt.Sprintf(`You are the %s on a podcast production team.

%s

%s`, role, task, speechBlocks(slice))
}

// buildSwarmSynthesisPrompt joins the three agent analyses into the script.
func buildSwarmSynthesisPrompt(analyses map[string]string, style string, durationMinutes int) string {
	return fmt.Sprintf(`Three specialists prepared an episode. Combine their work into a final %d-minute podcast script in a %s style.

CONTENT ANALYSIS:
%s

NARRATIVE DESIGN:
%s

AUDIO PRODUCTION PLAN:
%s`, durationMinutes, style,
		analyses[agentContentAnalyst],
		analyses[agentNarrativeDesigner],
		analyses[agentAudioProducer])
}
