// Package readability computes a Flesch-Kincaid style language-complexity
// score and grades it against per-audience acceptability bands. Everything
// here is a pure function of (text, audience): identical inputs always give
// bit-identical output.
package readability

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/skillence/skillence/internal/lesson"
)

// band is the acceptable score range for one audience.
type band struct {
	min float64
	max float64
}

// bands calibrate the score thresholds per audience tier, from "needs very
// easy text" down to "tolerates technical text".
var bands = map[lesson.Audience]band{
	lesson.AudienceChild: {min: 80, max: 100},
	lesson.AudienceTeen:  {min: 60, max: 80},
	lesson.AudienceAdult: {min: 40, max: 70},
}

// The formula coefficients are a language-specific calibration of the
// classical Flesch formula. Reproduce exactly; tests and any reference
// corpus depend on numeric parity.
const (
	formulaBase       = 207
	wordsPerSentenceW = 1.015
	syllablesPerWordW = 84.6
)

// vowels includes the accented vowels of the target language. Consecutive
// vowels count as a single syllable.
const vowels = "aeiouàáâäèéêëìíîïòóôöùúûü"

var (
	headerRE   = regexp.MustCompile(`#{1,6}\s*`)
	markupRE   = regexp.MustCompile("[*_`\\[\\]]+")
	newlineRE  = regexp.MustCompile(`\n+`)
	spaceRE    = regexp.MustCompile(`\s+`)
	sentenceRE = regexp.MustCompile(`[.!?]+`)
	wordRE     = regexp.MustCompile(`[a-zA-ZàâäéèêëïîôöùûüçÀÂÄÉÈÊËÏÎÔÖÙÛÜÇ]{2,}`)
)

// UnsupportedAudienceError reports an audience outside the fixed set.
type UnsupportedAudienceError struct {
	Audience string
}

func (e *UnsupportedAudienceError) Error() string {
	return fmt.Sprintf("unsupported audience %q", e.Audience)
}

// Score is the full readability analysis for one (text, audience) pair.
type Score struct {
	FleschKincaid       float64
	WordCount           int
	SentenceCount       int
	AvgWordsPerSentence float64
	AvgSyllablesPerWord float64
	Acceptable          bool
	Message             string
	Audience            lesson.Audience
}

// Summary is the compact fixed-field record exposed through the API.
// Named fields rather than an open map: consumers rely on these exact
// keys and types.
type Summary struct {
	Score      float64 `json:"flesch_kincaid_score"`
	Level      string  `json:"readability_level"`
	WordCount  int     `json:"word_count"`
	Acceptable bool    `json:"is_appropriate_for_audience"`
	Audience   string  `json:"audience_target"`
	Message    string  `json:"quality_message"`
}

// Analyze scores text against the audience's acceptability band.
// Empty or degenerate text yields all-zero metrics, never an error;
// only an unknown audience fails.
func Analyze(text string, audience lesson.Audience) (Score, error) {
	b, ok := bands[audience]
	if !ok {
		return Score{}, &UnsupportedAudienceError{Audience: string(audience)}
	}

	words, sentences, wps, spw := textStats(text)
	score := fleschKincaid(words, sentences, wps, spw)
	acceptable := score >= b.min && score <= b.max

	var msg string
	switch {
	case acceptable:
		msg = fmt.Sprintf("Readability suits the %s audience (score: %.1f)", audience, score)
	case score < b.min:
		msg = fmt.Sprintf(
			"Text too difficult for %s (score: %.1f, expected: >=%.0f)\nSuggestions: shorten sentences (%.1f words/sentence), use simpler words",
			audience, score, b.min, wps,
		)
	default:
		msg = fmt.Sprintf(
			"Text very easy for %s (score: %.1f, recommended max: %.0f)\nCould be enriched with more specialized vocabulary",
			audience, score, b.max,
		)
	}

	return Score{
		FleschKincaid:       score,
		WordCount:           words,
		SentenceCount:       sentences,
		AvgWordsPerSentence: wps,
		AvgSyllablesPerWord: spw,
		Acceptable:          acceptable,
		Message:             msg,
		Audience:            audience,
	}, nil
}

// Summary reduces the full analysis to the fixed record shape: score rounded
// to one decimal, qualitative level, and the first line of the message.
func (s Score) Summary() Summary {
	return Summary{
		Score:      math.Round(s.FleschKincaid*10) / 10,
		Level:      level(s.FleschKincaid),
		WordCount:  s.WordCount,
		Acceptable: s.Acceptable,
		Audience:   string(s.Audience),
		Message:    firstLine(s.Message),
	}
}

// countSyllables estimates syllables by counting transitions into a vowel
// run. Every word counts at least one syllable, degenerate input included.
func countSyllables(word string) int {
	if utf8.RuneCountInString(word) < 2 {
		return 1
	}

	count := 0
	prevVowel := false
	for _, r := range strings.ToLower(word) {
		isVowel := strings.ContainsRune(vowels, r)
		if isVowel && !prevVowel {
			count++
		}
		prevVowel = isVowel
	}

	if count < 1 {
		return 1
	}
	return count
}

// textStats strips Markdown markup and returns word count, sentence count,
// average words per sentence and average syllables per word.
func textStats(text string) (words, sentences int, wps, spw float64) {
	cleaned := headerRE.ReplaceAllString(text, "")
	cleaned = markupRE.ReplaceAllString(cleaned, "")
	cleaned = newlineRE.ReplaceAllString(cleaned, " ")
	cleaned = spaceRE.ReplaceAllString(strings.TrimSpace(cleaned), " ")

	if utf8.RuneCountInString(cleaned) < 2 {
		return 0, 0, 0, 0
	}

	for _, fragment := range sentenceRE.Split(cleaned, -1) {
		if utf8.RuneCountInString(strings.TrimSpace(fragment)) > 2 {
			sentences++
		}
	}
	if sentences == 0 {
		return 0, 0, 0, 0
	}

	tokens := wordRE.FindAllString(cleaned, -1)
	words = len(tokens)
	if words == 0 {
		return 0, sentences, 0, 0
	}

	totalSyllables := 0
	for _, w := range tokens {
		totalSyllables += countSyllables(w)
	}

	wps = float64(words) / float64(sentences)
	spw = float64(totalSyllables) / float64(words)
	return words, sentences, wps, spw
}

// fleschKincaid applies the calibrated linear formula, clamped to [0, 100].
// Zero words or sentences score 0.
func fleschKincaid(words, sentences int, wps, spw float64) float64 {
	if words == 0 || sentences == 0 {
		return 0
	}
	score := formulaBase - wordsPerSentenceW*wps - syllablesPerWordW*spw
	return math.Max(0, math.Min(100, score))
}

// level buckets a score into a qualitative label.
func level(score float64) string {
	switch {
	case score >= 80:
		return "very easy"
	case score >= 60:
		return "easy"
	case score >= 40:
		return "fairly difficult"
	case score >= 20:
		return "difficult"
	default:
		return "very difficult"
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
