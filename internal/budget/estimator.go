// Package budget approximates token costs so oversized prompts are rejected
// before any network call is made.
package budget

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTokensPerRequest is the total token ceiling for one generation.
	MaxTokensPerRequest = 2000

	// ResponseReserve is held back for the model's response.
	ResponseReserve = 200

	// MaxPromptTokens is what remains for the prompt itself.
	MaxPromptTokens = MaxTokensPerRequest - ResponseReserve

	// charsPerToken is the rough average used for estimation.
	charsPerToken = 4

	// safetyMargin inflates the estimate so it errs on the large side.
	safetyMargin = 1.2

	// subjectExcerptLen bounds the subject echoed back in error messages.
	subjectExcerptLen = 50
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// Estimate approximates the token count of text: collapse whitespace, divide
// the character count by 4, add a 20% margin, truncate. Not a tokenizer —
// a calibration chosen to over-estimate rather than under-estimate. The
// constants are load-bearing; downstream rejection thresholds depend on them.
func Estimate(text string) int {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}
	cleaned := whitespaceRE.ReplaceAllString(trimmed, " ")
	estimated := utf8.RuneCountInString(cleaned) / charsPerToken
	return int(float64(estimated) * safetyMargin)
}

// ExceededError reports a prompt that does not fit the token budget.
// Carries enough context for an actionable client message.
type ExceededError struct {
	Estimated int
	Limit     int
	Subject   string
}

func (e *ExceededError) Error() string {
	msg := fmt.Sprintf("prompt too large: %d estimated tokens (limit: %d)", e.Estimated, e.Limit)
	if e.Subject != "" {
		msg += fmt.Sprintf(" for %q", e.Subject)
	}
	return msg + "; shorten the subject or choose a shorter duration"
}

// ValidateBudget rejects prompts whose estimated cost exceeds MaxPromptTokens.
// Runs strictly before the remote call so oversized requests cost nothing.
func ValidateBudget(prompt, subject string) error {
	if prompt == "" {
		return nil
	}
	estimated := Estimate(prompt)
	if estimated <= MaxPromptTokens {
		return nil
	}
	return &ExceededError{
		Estimated: estimated,
		Limit:     MaxPromptTokens,
		Subject:   truncateRunes(subject, subjectExcerptLen),
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
