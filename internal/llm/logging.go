package llm

import (
	"context"
	"time"

	"github.com/skillence/skillence/internal/logger"
)

// LoggingProvider is a decorator that records every LLM call with its
// latency and token usage.
type LoggingProvider struct {
	inner Provider
	log   *logger.Logger
}

// WithLogging wraps a Provider with structured call logging.
func WithLogging(p Provider, log *logger.Logger) Provider {
	return &LoggingProvider{inner: p, log: log}
}

func (l *LoggingProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	start := time.Now()

	resp, err := l.inner.Complete(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	if err != nil {
		l.log.Warn("llm call failed",
			"model", l.inner.ModelID(),
			"max_tokens", req.MaxTokens,
			"latency_ms", latencyMs,
			"error", err,
		)
		return nil, err
	}

	l.log.Debug("llm call completed",
		"model", resp.Model,
		"max_tokens", req.MaxTokens,
		"latency_ms", latencyMs,
		"tokens_used", resp.TokensUsed,
	)

	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
