package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/skillence/skillence/internal/budget"
	"github.com/skillence/skillence/internal/lesson"
	"github.com/skillence/skillence/internal/llm"
	"github.com/skillence/skillence/internal/logger"
)

// Config bounds the generation loop.
type Config struct {
	// TokenCeilings lists the completion budgets tried in order. A response
	// that fails to parse as JSON escalates to the next ceiling.
	TokenCeilings []int

	Temperature float64
}

// DefaultConfig starts with a tight completion budget and allows one
// escalation for responses truncated mid-JSON.
func DefaultConfig() Config {
	return Config{
		TokenCeilings: []int{200, 320},
		Temperature:   0.3,
	}
}

// Generator produces validated lesson content from an LLM provider.
type Generator struct {
	provider llm.Provider
	config   Config
	log      *logger.Logger
}

// New creates a Generator with the given provider and config.
func New(provider llm.Provider, cfg Config, log *logger.Logger) *Generator {
	if len(cfg.TokenCeilings) == 0 {
		cfg.TokenCeilings = DefaultConfig().TokenCeilings
	}
	return &Generator{provider: provider, config: cfg, log: log}
}

// lessonOutput is the raw LLM response after schema validation.
type lessonOutput struct {
	Title      string   `json:"title"`
	Objectives []string `json:"objectives"`
	Plan       []string `json:"plan"`
	Content    string   `json:"content"`
}

// Generate produces lesson content for the request. It returns the content,
// the total provider tokens consumed across attempts, and a classified
// *Error on failure.
func (g *Generator) Generate(ctx context.Context, req lesson.Request) (lesson.Content, int, error) {
	prompt := buildUserPrompt(req)

	if err := budget.ValidateBudget(systemPrompt+"\n\n"+prompt, req.Subject); err != nil {
		return lesson.Content{}, 0, &Error{
			Kind:    KindBudgetExceeded,
			Status:  http.StatusRequestEntityTooLarge,
			Message: err.Error(),
			Err:     err,
		}
	}

	tokensUsed := 0
	var lastText string
	var lastParseErr error

	for i, ceiling := range g.config.TokenCeilings {
		resp, err := g.provider.Complete(ctx, llm.Request{
			System:      systemPrompt,
			Prompt:      prompt,
			MaxTokens:   ceiling,
			Temperature: g.config.Temperature,
		})
		if err != nil {
			return lesson.Content{}, tokensUsed, classifyCallError(err)
		}
		tokensUsed += resp.TokensUsed

		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return lesson.Content{}, tokensUsed, &Error{
				Kind:    KindEmptyResponse,
				Status:  http.StatusInternalServerError,
				Message: "LLM returned an empty response",
			}
		}

		var parsed map[string]any
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			lastText = text
			lastParseErr = err
			if i < len(g.config.TokenCeilings)-1 {
				g.log.Warn("lesson response is not valid JSON, escalating token ceiling",
					"ceiling", ceiling,
					"next_ceiling", g.config.TokenCeilings[i+1],
					"error", err,
				)
				continue
			}
			break
		}

		content, derr := decodeContent(text, parsed)
		if derr != nil {
			return lesson.Content{}, tokensUsed, derr
		}
		return content, tokensUsed, nil
	}

	return lesson.Content{}, tokensUsed, &Error{
		Kind:   KindInvalidJSON,
		Status: http.StatusInternalServerError,
		Message: fmt.Sprintf("LLM response is not valid JSON after %d attempts: %s (response excerpt: %s)",
			len(g.config.TokenCeilings), truncate(lastParseErr.Error(), 100), truncate(lastText, 200)),
		Err: lastParseErr,
	}
}

// decodeContent validates the parsed response against the lesson schema and
// converts it to lesson.Content, classifying structural failures.
func decodeContent(text string, parsed map[string]any) (lesson.Content, *Error) {
	schema, err := compiledLessonSchema()
	if err != nil {
		return lesson.Content{}, &Error{
			Kind:    KindUnknown,
			Status:  http.StatusInternalServerError,
			Message: "lesson schema is not usable",
			Err:     err,
		}
	}

	if err := schema.Validate(parsed); err != nil {
		return lesson.Content{}, classifyStructural(parsed, err)
	}

	var out lessonOutput
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return lesson.Content{}, &Error{
			Kind:    KindConstruction,
			Status:  http.StatusInternalServerError,
			Message: "lesson response could not be decoded",
			Err:     err,
		}
	}

	return lesson.Content{
		Title:      out.Title,
		Objectives: out.Objectives,
		Plan:       out.Plan,
		Body:       out.Content,
	}, nil
}

// classifyStructural turns a schema violation into a typed failure by
// inspecting the parsed document.
func classifyStructural(parsed map[string]any, err error) *Error {
	required := []string{"title", "objectives", "plan", "content"}

	var missing []string
	for _, key := range required {
		if _, ok := parsed[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &Error{
			Kind:    KindMissingFields,
			Status:  http.StatusInternalServerError,
			Message: "lesson response is missing required fields",
			Fields:  missing,
			Err:     err,
		}
	}

	var wrongType []string
	if _, ok := parsed["title"].(string); !ok {
		wrongType = append(wrongType, "title")
	}
	if _, ok := parsed["content"].(string); !ok {
		wrongType = append(wrongType, "content")
	}
	objectives, objOK := stringArray(parsed["objectives"])
	if !objOK {
		wrongType = append(wrongType, "objectives")
	}
	plan, planOK := stringArray(parsed["plan"])
	if !planOK {
		wrongType = append(wrongType, "plan")
	}
	if len(wrongType) > 0 {
		sort.Strings(wrongType)
		return &Error{
			Kind:    KindWrongType,
			Status:  http.StatusInternalServerError,
			Message: "lesson response fields have the wrong type",
			Fields:  wrongType,
			Err:     err,
		}
	}

	var thin []string
	if objOK && len(objectives) < 1 {
		thin = append(thin, "objectives")
	}
	if planOK && len(plan) < 2 {
		thin = append(thin, "plan")
	}
	if len(thin) > 0 {
		return &Error{
			Kind:    KindInsufficientContent,
			Status:  http.StatusInternalServerError,
			Message: "lesson response has too few items",
			Fields:  thin,
			Err:     err,
		}
	}

	return &Error{
		Kind:    KindWrongType,
		Status:  http.StatusInternalServerError,
		Message: "lesson response does not match the expected shape",
		Err:     err,
	}
}

// stringArray reports whether v is an array whose elements are all strings.
func stringArray(v any) ([]any, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	for _, item := range arr {
		if _, ok := item.(string); !ok {
			return nil, false
		}
	}
	return arr, true
}

// classifyCallError maps provider failures to classified generation errors.
func classifyCallError(err error) *Error {
	var timeout *llm.ErrTimeout
	if errors.As(err, &timeout) {
		return &Error{
			Kind:    KindTimeout,
			Status:  http.StatusGatewayTimeout,
			Message: "LLM provider timed out",
			Err:     err,
		}
	}
	var rateLimit *llm.ErrRateLimit
	if errors.As(err, &rateLimit) {
		return &Error{
			Kind:    KindRateLimited,
			Status:  http.StatusTooManyRequests,
			Message: "LLM provider rate limit reached, try again later",
			Err:     err,
		}
	}
	var quota *llm.ErrQuotaExceeded
	if errors.As(err, &quota) {
		return &Error{
			Kind:    KindQuotaExceeded,
			Status:  http.StatusPaymentRequired,
			Message: "LLM provider quota exhausted",
			Err:     err,
		}
	}
	var auth *llm.ErrAuthInvalid
	if errors.As(err, &auth) {
		return &Error{
			Kind:    KindAuthInvalid,
			Status:  http.StatusUnauthorized,
			Message: "LLM provider rejected the configured credentials",
			Err:     err,
		}
	}
	return &Error{
		Kind:    KindUnknown,
		Status:  http.StatusInternalServerError,
		Message: "LLM call failed",
		Err:     err,
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
