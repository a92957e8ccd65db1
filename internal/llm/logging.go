package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type contextKey string

const purposeKey contextKey = "llm_purpose"

// WithPurpose labels requests made with ctx, e.g. "theme".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// LoggingProvider records every request as a structured log line.
type LoggingProvider struct {
	inner    Provider
	provider string
	log      zerolog.Logger
}

// WithLogging wraps a Provider with request logging.
func WithLogging(p Provider, provider string, log zerolog.Logger) Provider {
	return &LoggingProvider{inner: p, provider: provider, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	ev := l.log.Info()
	if err != nil {
		ev = l.log.Warn().Err(err)
	}
	ev = ev.Str("provider", l.provider).
		Str("model", l.inner.ModelID()).
		Str("purpose", PurposeFrom(ctx)).
		Dur("latency", time.Since(start))
	if req.Schema != nil {
		ev = ev.Str("schema", req.Schema.Name)
	}
	if resp != nil {
		ev = ev.Str("model", resp.Model).
			Int("input_tokens", resp.Usage.InputTokens).
			Int("output_tokens", resp.Usage.OutputTokens)
		if c := LookupCost(resp.Model); c != nil {
			ev = ev.Float64("cost_usd", c.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens))
		}
	}
	ev.Msg("llm request")

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
