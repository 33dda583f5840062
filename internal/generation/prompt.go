package generation

import (
	"fmt"
	"strings"

	"github.com/skillence/skillence/internal/lesson"
)

const systemPrompt = `You are an expert teaching assistant who writes structured micro-lessons.

Rules:
- Respond ONLY with a JSON object. No prose before or after, no markdown fences.
- The object must have exactly these keys: "title", "objectives", "plan", "content".
- "title" is a short lesson title as a string.
- "objectives" is an array of at least 1 learning objective, each a string.
- "plan" is an array of at least 2 ordered lesson steps, each a string.
- "content" is the lesson body as a string. Plain prose, short paragraphs.
- Adjust vocabulary and sentence length to the target audience.
- Adjust the amount of material to the requested duration.`

// audienceHints describe the expected register for each audience.
var audienceHints = map[lesson.Audience]string{
	lesson.AudienceChild: "a child (simple words, short sentences, concrete examples)",
	lesson.AudienceTeen:  "a teenager (accessible language, relatable examples)",
	lesson.AudienceAdult: "an adult (precise vocabulary, structured reasoning)",
}

// durationHints describe the expected depth for each duration.
var durationHints = map[lesson.Duration]string{
	lesson.DurationShort:  "a short lesson (around 5 minutes of reading)",
	lesson.DurationMedium: "a medium lesson (around 15 minutes of reading)",
	lesson.DurationLong:   "a long lesson (around 30 minutes of reading)",
}

// buildUserPrompt constructs the user message for a lesson request.
func buildUserPrompt(req lesson.Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a lesson about: %s\n", req.Subject)
	fmt.Fprintf(&b, "Target audience: %s\n", audienceHints[req.Audience])
	fmt.Fprintf(&b, "Expected length: %s\n", durationHints[req.Duration])

	b.WriteString(`
Respond with JSON in this exact shape:
{
  "title": "Lesson title",
  "objectives": ["first objective", "second objective"],
  "plan": ["first step", "second step", "third step"],
  "content": "The full lesson text."
}`)

	return b.String()
}
