package generation

import (
	"fmt"
	"strings"
)

// Kind classifies a generation failure.
type Kind string

const (
	KindBudgetExceeded      Kind = "budget_exceeded"
	KindTimeout             Kind = "timeout"
	KindRateLimited         Kind = "rate_limited"
	KindQuotaExceeded       Kind = "quota_exceeded"
	KindAuthInvalid         Kind = "auth_invalid"
	KindEmptyResponse       Kind = "empty_response"
	KindInvalidJSON         Kind = "invalid_json"
	KindMissingFields       Kind = "missing_fields"
	KindWrongType           Kind = "wrong_type"
	KindInsufficientContent Kind = "insufficient_content"
	KindConstruction        Kind = "construction"
	KindUnknown             Kind = "unknown"
)

// Error is a classified generation failure carrying the HTTP status a
// transport layer should report.
type Error struct {
	Kind    Kind
	Status  int
	Message string

	// Fields names the offending JSON keys for structural failures.
	Fields []string

	Err error
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, strings.Join(e.Fields, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }
