// Package formatter renders validated lesson content to Markdown and
// annotates it with readability metrics.
package formatter

import (
	"fmt"
	"strings"

	"github.com/skillence/skillence/internal/lesson"
	"github.com/skillence/skillence/internal/readability"
)

// Lesson is a fully rendered lesson document.
type Lesson struct {
	Title       string
	Markdown    string
	Readability readability.Summary
}

// Format renders the content to Markdown in two passes: the lesson body is
// rendered first and scored, then the final document is rendered with a
// metrics section appended. The score reflects the lesson text only, never
// the metrics section itself.
func Format(content lesson.Content, audience lesson.Audience) (Lesson, error) {
	base := render(content)

	score, err := readability.Analyze(base, audience)
	if err != nil {
		return Lesson{}, err
	}
	summary := score.Summary()

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n## Readability metrics\n\n")
	fmt.Fprintf(&b, "- Flesch-Kincaid score: %.1f\n", summary.Score)
	fmt.Fprintf(&b, "- Level: %s\n", summary.Level)
	fmt.Fprintf(&b, "- Word count: %d\n", summary.WordCount)
	fmt.Fprintf(&b, "- Appropriate for %s audience: %s\n", summary.Audience, yesNo(summary.Acceptable))
	fmt.Fprintf(&b, "- %s\n", summary.Message)

	return Lesson{
		Title:       content.Title,
		Markdown:    b.String(),
		Readability: summary,
	}, nil
}

// render produces the base lesson Markdown without metrics.
func render(content lesson.Content) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", content.Title)

	b.WriteString("## Objectives\n\n")
	for _, obj := range content.Objectives {
		fmt.Fprintf(&b, "- %s\n", obj)
	}

	b.WriteString("\n## Plan\n\n")
	for i, step := range content.Plan {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}

	b.WriteString("\n## Content\n\n")
	b.WriteString(content.Body)
	b.WriteString("\n")

	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
