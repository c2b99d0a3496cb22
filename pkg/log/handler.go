package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// StackSuffix is appended to the key of an error field to name its stack trace field,
// so an "error" attribute gets an "error.stack" companion.
const StackSuffix = ".stack"

// errorStack returns the stack trace cockroachdb/errors recorded on the outermost
// stack-carrying layer of err, or "" when there is none.
func errorStack(err error) string {
	for e := err; e != nil; e = errors.UnwrapOnce(e) {
		if details := errors.GetSafeDetails(e).SafeDetails; len(details) > 0 && details[0] != "" {
			return details[0]
		}
	}
	return ""
}

// stackHandler decorates every error-valued attribute of a record with its stack trace.
type stackHandler struct {
	next slog.Handler
}

func withErrorStacks(next slog.Handler) slog.Handler {
	return stackHandler{next: next}
}

func (h stackHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h stackHandler) Handle(ctx context.Context, r slog.Record) error {
	var stacks []slog.Attr
	r.Attrs(func(a slog.Attr) bool {
		if err, ok := a.Value.Any().(error); ok {
			if stack := errorStack(err); stack != "" {
				stacks = append(stacks, slog.String(a.Key+StackSuffix, stack))
			}
		}
		return true
	})
	r.AddAttrs(stacks...)
	return h.next.Handle(ctx, r)
}

func (h stackHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return stackHandler{next: h.next.WithAttrs(attrs)}
}

func (h stackHandler) WithGroup(name string) slog.Handler {
	return stackHandler{next: h.next.WithGroup(name)}
}
