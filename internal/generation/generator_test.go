package generation

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/skillence/skillence/internal/lesson"
	"github.com/skillence/skillence/internal/llm"
	"github.com/skillence/skillence/internal/logger"
)

const validLessonJSON = `{
	"title": "Photosynthesis",
	"objectives": ["Explain how plants make food"],
	"plan": ["Introduce the concept", "Walk through the process"],
	"content": "Plants use sunlight to turn water and carbon dioxide into sugar."
}`

func testRequest(t *testing.T) lesson.Request {
	t.Helper()
	req, err := lesson.NewRequest("Photosynthesis", "teen", "short")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return req
}

func newTestGenerator(mock *llm.MockProvider) *Generator {
	return New(mock, DefaultConfig(), logger.NewNop())
}

func TestGenerate_Success(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResult{Text: validLessonJSON, TokensUsed: 150},
	)
	g := newTestGenerator(mock)

	content, tokens, err := g.Generate(context.Background(), testRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Title != "Photosynthesis" {
		t.Fatalf("unexpected title: %q", content.Title)
	}
	if len(content.Objectives) != 1 || len(content.Plan) != 2 {
		t.Fatalf("unexpected shape: %d objectives, %d plan steps", len(content.Objectives), len(content.Plan))
	}
	if content.Body == "" {
		t.Fatal("expected non-empty body")
	}
	if tokens != 150 {
		t.Fatalf("expected 150 tokens, got %d", tokens)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].MaxTokens != 200 {
		t.Fatalf("expected first ceiling 200, got %d", mock.Calls[0].MaxTokens)
	}
	if mock.Calls[0].Temperature != 0.3 {
		t.Fatalf("expected temperature 0.3, got %v", mock.Calls[0].Temperature)
	}
}

func TestGenerate_BudgetExceededSkipsProvider(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResult{Text: validLessonJSON, TokensUsed: 150},
	)
	g := newTestGenerator(mock)

	req := testRequest(t)
	req.Subject = strings.Repeat("photosynthesis ", 500)

	_, tokens, err := g.Generate(context.Background(), req)
	if err == nil {
		t.Fatal("expected error")
	}
	var genErr *Error
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if genErr.Kind != KindBudgetExceeded {
		t.Fatalf("expected budget_exceeded, got %s", genErr.Kind)
	}
	if genErr.Status != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d", genErr.Status)
	}
	if tokens != 0 {
		t.Fatalf("expected 0 tokens, got %d", tokens)
	}
	if mock.CallCount() != 0 {
		t.Fatalf("expected no provider calls, got %d", mock.CallCount())
	}
}

func TestGenerate_EscalatesOnTruncatedJSON(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResult{Text: `{"title": "Photosynthesis", "objectives": ["Expl`, TokensUsed: 200},
		llm.MockResult{Text: validLessonJSON, TokensUsed: 280},
	)
	g := newTestGenerator(mock)

	content, tokens, err := g.Generate(context.Background(), testRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Title != "Photosynthesis" {
		t.Fatalf("unexpected title: %q", content.Title)
	}
	if tokens != 480 {
		t.Fatalf("expected 480 total tokens, got %d", tokens)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
	if mock.Calls[0].MaxTokens != 200 || mock.Calls[1].MaxTokens != 320 {
		t.Fatalf("expected ceilings 200 then 320, got %d then %d",
			mock.Calls[0].MaxTokens, mock.Calls[1].MaxTokens)
	}
}

func TestGenerate_InvalidJSONAfterAllCeilings(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResult{Text: "not json at all", TokensUsed: 10},
		llm.MockResult{Text: "still not json", TokensUsed: 10},
	)
	g := newTestGenerator(mock)

	_, _, err := g.Generate(context.Background(), testRequest(t))
	var genErr *Error
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if genErr.Kind != KindInvalidJSON {
		t.Fatalf("expected invalid_json, got %s", genErr.Kind)
	}
	if genErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", genErr.Status)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestGenerate_EmptyResponse(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResult{Text: "   \n  ", TokensUsed: 5},
	)
	g := newTestGenerator(mock)

	_, _, err := g.Generate(context.Background(), testRequest(t))
	var genErr *Error
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if genErr.Kind != KindEmptyResponse {
		t.Fatalf("expected empty_response, got %s", genErr.Kind)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call (no escalation), got %d", mock.CallCount())
	}
}

func TestGenerate_MissingFieldsNamed(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResult{Text: `{"title": "T", "objectives": ["o"], "plan": ["a", "b"]}`, TokensUsed: 50},
	)
	g := newTestGenerator(mock)

	_, _, err := g.Generate(context.Background(), testRequest(t))
	var genErr *Error
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if genErr.Kind != KindMissingFields {
		t.Fatalf("expected missing_fields, got %s", genErr.Kind)
	}
	if len(genErr.Fields) != 1 || genErr.Fields[0] != "content" {
		t.Fatalf("expected fields [content], got %v", genErr.Fields)
	}
}

func TestGenerate_WrongType(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResult{Text: `{"title": "T", "objectives": "not an array", "plan": ["a", "b"], "content": "c"}`, TokensUsed: 50},
	)
	g := newTestGenerator(mock)

	_, _, err := g.Generate(context.Background(), testRequest(t))
	var genErr *Error
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if genErr.Kind != KindWrongType {
		t.Fatalf("expected wrong_type, got %s", genErr.Kind)
	}
	if len(genErr.Fields) != 1 || genErr.Fields[0] != "objectives" {
		t.Fatalf("expected fields [objectives], got %v", genErr.Fields)
	}
}

func TestGenerate_InsufficientContent(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResult{Text: `{"title": "T", "objectives": [], "plan": ["only one"], "content": "c"}`, TokensUsed: 50},
	)
	g := newTestGenerator(mock)

	_, _, err := g.Generate(context.Background(), testRequest(t))
	var genErr *Error
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *Error, got %T (%v)", err, err)
	}
	if genErr.Kind != KindInsufficientContent {
		t.Fatalf("expected insufficient_content, got %s", genErr.Kind)
	}
	if len(genErr.Fields) != 2 {
		t.Fatalf("expected fields [objectives plan], got %v", genErr.Fields)
	}
}

func TestGenerate_ProviderErrorsMapped(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"timeout", &llm.ErrTimeout{Err: errors.New("deadline")}, KindTimeout, http.StatusGatewayTimeout},
		{"rate limit", &llm.ErrRateLimit{Err: errors.New("429")}, KindRateLimited, http.StatusTooManyRequests},
		{"quota", &llm.ErrQuotaExceeded{Err: errors.New("no credit")}, KindQuotaExceeded, http.StatusPaymentRequired},
		{"auth", &llm.ErrAuthInvalid{Err: errors.New("bad key")}, KindAuthInvalid, http.StatusUnauthorized},
		{"unavailable", &llm.ErrProviderUnavailable{Err: errors.New("500")}, KindUnknown, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := llm.NewMockProvider(llm.MockResult{Err: tc.err})
			g := newTestGenerator(mock)

			_, _, err := g.Generate(context.Background(), testRequest(t))
			var genErr *Error
			if !errors.As(err, &genErr) {
				t.Fatalf("expected *Error, got %T (%v)", err, err)
			}
			if genErr.Kind != tc.kind {
				t.Fatalf("expected %s, got %s", tc.kind, genErr.Kind)
			}
			if genErr.Status != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, genErr.Status)
			}
		})
	}
}

func TestGenerate_TransientRetriedThroughDecorator(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResult{Err: &llm.ErrTimeout{Err: errors.New("deadline")}},
		llm.MockResult{Text: validLessonJSON, TokensUsed: 120},
	)
	retried := llm.WithRetry(mock, llm.RetryConfig{MaxAttempts: 2, Delay: 1 * time.Millisecond})
	g := New(retried, DefaultConfig(), logger.NewNop())

	content, tokens, err := g.Generate(context.Background(), testRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Title != "Photosynthesis" {
		t.Fatalf("unexpected title: %q", content.Title)
	}
	if tokens != 120 {
		t.Fatalf("expected 120 tokens, got %d", tokens)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 provider calls, got %d", mock.CallCount())
	}
}

func TestGenerate_PromptMentionsRequestFields(t *testing.T) {
	req := testRequest(t)
	prompt := buildUserPrompt(req)

	for _, want := range []string{"Photosynthesis", "teenager", "short lesson"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
