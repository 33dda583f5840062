package formatter

import (
	"strings"
	"testing"

	"github.com/skillence/skillence/internal/lesson"
)

func sampleContent() lesson.Content {
	return lesson.Content{
		Title:      "Photosynthesis",
		Objectives: []string{"Explain how plants make food", "Name the inputs and outputs"},
		Plan:       []string{"Intro", "Steps", "Recap"},
		Body:       "Plants use light to make food. They take in water and air. The leaves do the work.",
	}
}

func TestFormat_Structure(t *testing.T) {
	doc, err := Format(sampleContent(), lesson.AudienceTeen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Photosynthesis" {
		t.Fatalf("unexpected title: %q", doc.Title)
	}

	wantParts := []string{
		"# Photosynthesis",
		"## Objectives",
		"- Explain how plants make food",
		"- Name the inputs and outputs",
		"## Plan",
		"1. Intro",
		"2. Steps",
		"3. Recap",
		"## Content",
		"Plants use light to make food.",
		"## Readability metrics",
		"Flesch-Kincaid score:",
	}
	for _, part := range wantParts {
		if !strings.Contains(doc.Markdown, part) {
			t.Fatalf("markdown missing %q:\n%s", part, doc.Markdown)
		}
	}

	// Section order must be stable.
	idxObjectives := strings.Index(doc.Markdown, "## Objectives")
	idxPlan := strings.Index(doc.Markdown, "## Plan")
	idxContent := strings.Index(doc.Markdown, "## Content")
	idxMetrics := strings.Index(doc.Markdown, "## Readability metrics")
	if !(idxObjectives < idxPlan && idxPlan < idxContent && idxContent < idxMetrics) {
		t.Fatalf("sections out of order:\n%s", doc.Markdown)
	}
}

func TestFormat_SummaryPopulated(t *testing.T) {
	doc, err := Format(sampleContent(), lesson.AudienceTeen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := doc.Readability
	if s.Audience != "teen" {
		t.Fatalf("expected audience_target teen, got %q", s.Audience)
	}
	if s.WordCount == 0 {
		t.Fatal("expected non-zero word count")
	}
	if s.Level == "" || s.Message == "" {
		t.Fatalf("expected populated level and message, got %+v", s)
	}
	if strings.Contains(s.Message, "\n") {
		t.Fatalf("quality message must be a single line: %q", s.Message)
	}
}

func TestFormat_ScoreIgnoresMetricsSection(t *testing.T) {
	content := sampleContent()
	first, err := Format(content, lesson.AudienceTeen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Format(content, lesson.AudienceTeen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Markdown != second.Markdown {
		t.Fatal("formatting is not deterministic")
	}
	if first.Readability != second.Readability {
		t.Fatalf("readability summary not deterministic: %+v vs %+v",
			first.Readability, second.Readability)
	}
}

func TestFormat_UnsupportedAudience(t *testing.T) {
	_, err := Format(sampleContent(), lesson.Audience("elder"))
	if err == nil {
		t.Fatal("expected error for unknown audience")
	}
}
