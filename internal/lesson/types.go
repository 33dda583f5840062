// Package lesson holds the domain types shared across the generation
// pipeline: the validated request, the generated content, and the
// idempotency hash derived from the request.
package lesson

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Audience is the target audience level for a lesson. Closed set.
type Audience string

const (
	AudienceChild Audience = "child"
	AudienceTeen  Audience = "teen"
	AudienceAdult Audience = "adult"
)

// Audiences lists the supported audience levels in difficulty order.
var Audiences = []Audience{AudienceChild, AudienceTeen, AudienceAdult}

// Duration is the requested lesson length. Closed set.
type Duration string

const (
	DurationShort  Duration = "short"
	DurationMedium Duration = "medium"
	DurationLong   Duration = "long"
)

// Durations lists the supported lesson durations.
var Durations = []Duration{DurationShort, DurationMedium, DurationLong}

const (
	minSubjectLen = 2
	maxSubjectLen = 200
)

// ValidationError reports a client-fault problem with a single request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Request is a validated, whitespace-normalized lesson request.
// Immutable once constructed.
type Request struct {
	Subject  string
	Audience Audience
	Duration Duration
}

// Normalize trims s and collapses internal whitespace runs into single
// spaces. Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NewRequest normalizes the subject and validates all three fields.
// Failures are *ValidationError values carrying the offending field.
func NewRequest(subject, audience, duration string) (Request, error) {
	normalized := Normalize(subject)
	if n := utf8.RuneCountInString(normalized); n < minSubjectLen || n > maxSubjectLen {
		return Request{}, &ValidationError{
			Field:   "subject",
			Message: fmt.Sprintf("must be between %d and %d characters after whitespace normalization", minSubjectLen, maxSubjectLen),
		}
	}

	aud, err := ParseAudience(audience)
	if err != nil {
		return Request{}, err
	}
	dur, err := ParseDuration(duration)
	if err != nil {
		return Request{}, err
	}

	return Request{Subject: normalized, Audience: aud, Duration: dur}, nil
}

// ParseAudience validates an audience label against the closed set.
func ParseAudience(s string) (Audience, error) {
	for _, a := range Audiences {
		if Audience(s) == a {
			return a, nil
		}
	}
	return "", &ValidationError{
		Field:   "audience",
		Message: fmt.Sprintf("must be one of %s", joinAudiences()),
	}
}

// ParseDuration validates a duration label against the closed set.
func ParseDuration(s string) (Duration, error) {
	for _, d := range Durations {
		if Duration(s) == d {
			return d, nil
		}
	}
	return "", &ValidationError{
		Field:   "duration",
		Message: fmt.Sprintf("must be one of %s", joinDurations()),
	}
}

func joinAudiences() string {
	parts := make([]string, len(Audiences))
	for i, a := range Audiences {
		parts[i] = string(a)
	}
	return strings.Join(parts, ", ")
}

func joinDurations() string {
	parts := make([]string, len(Durations))
	for i, d := range Durations {
		parts[i] = string(d)
	}
	return strings.Join(parts, ", ")
}

// Content is the generator's output after it passed structural validation.
// Never constructed partially populated.
type Content struct {
	Title      string
	Objectives []string
	Plan       []string
	Body       string
}
