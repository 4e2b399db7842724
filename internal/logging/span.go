package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span times one core operation. The derived context carries a logger
// annotated with the trace and span ids so nested calls log under it.
type Span struct {
	name   string
	logger *slog.Logger
	start  time.Time
	err    error
}

// StartSpan opens a span named name beneath whatever span ctx already holds.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := FromContext(ctx)

	traceID := stringValue(ctx, traceIDKey)
	if traceID == "" {
		traceID = uuid.NewString()
		ctx = withString(ctx, traceIDKey, traceID)
		logger = logger.With(slog.String("trace_id", traceID))
	}

	spanID := uuid.NewString()
	attrs := []any{slog.String("span", name), slog.String("span_id", spanID)}
	if parent := stringValue(ctx, spanIDKey); parent != "" {
		attrs = append(attrs, slog.String("parent_span_id", parent))
	}
	logger = logger.With(attrs...)

	ctx = withString(ctx, spanIDKey, spanID)
	ctx = WithLogger(ctx, logger)
	return ctx, &Span{name: name, logger: logger, start: time.Now()}
}

// Fail marks the span as failed. The last error recorded wins.
func (s *Span) Fail(err error) {
	if s != nil && err != nil {
		s.err = err
	}
}

// End emits one record with the elapsed time. Failed spans log at warn.
func (s *Span) End() {
	if s == nil {
		return
	}
	elapsed := slog.Duration("duration", time.Since(s.start))
	if s.err != nil {
		s.logger.Warn("span failed", elapsed, slog.String("error", s.err.Error()))
		return
	}
	s.logger.Debug("span completed", elapsed)
}

// TraceIDFromContext returns the trace id set by StartSpan, or "".
func TraceIDFromContext(ctx context.Context) string {
	return stringValue(ctx, traceIDKey)
}
