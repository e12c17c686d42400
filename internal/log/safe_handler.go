package log

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"unicode"
)

// SafeHandler wraps an slog.Handler so that values taken from documents
// cannot corrupt the log. Control characters in the message and in string
// or error attributes are replaced by their Go escape sequences, and
// passwords embedded in URLs are redacted.
type SafeHandler struct {
	// handler is the underlying slog handler that receives cleaned records.
	handler slog.Handler
}

// NewSafeHandler creates a new SafeHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSafeHandler(handler slog.Handler) *SafeHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SafeHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *SafeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle cleans the record and passes it to the underlying handler.
func (h *SafeHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, Escape(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(h.cleanAttr(a))
		return true
	})

	return h.handler.Handle(ctx, clean)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *SafeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		cleaned[i] = h.cleanAttr(a)
	}
	return &SafeHandler{handler: h.handler.WithAttrs(cleaned)}
}

// WithGroup returns a new handler with the given group name.
func (h *SafeHandler) WithGroup(name string) slog.Handler {
	return &SafeHandler{handler: h.handler.WithGroup(name)}
}

// cleanAttr cleans a single attribute, recursively handling groups.
func (h *SafeHandler) cleanAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		cleaned := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			cleaned[i] = h.cleanAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(cleaned...)}
	case slog.KindString:
		return slog.String(a.Key, clean(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok && err != nil {
			return slog.String(a.Key, clean(err.Error()))
		}
	}
	return a
}

func clean(s string) string {
	return Escape(RedactURLs(s))
}

// Escape replaces control characters and line separators in s with their
// Go escape sequences, e.g. a newline becomes `\n`.
func Escape(s string) string {
	if !strings.ContainsFunc(s, isUnsafe) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		if !isUnsafe(r) {
			b.WriteRune(r)
			continue
		}
		q := strconv.QuoteRune(r)
		b.WriteString(q[1 : len(q)-1])
	}
	return b.String()
}

func isUnsafe(r rune) bool {
	return unicode.IsControl(r) || r == '\u2028' || r == '\u2029'
}

// RedactURLs masks the password of every URL with user information found
// in s. Fields that are not URLs are returned unchanged.
func RedactURLs(s string) string {
	if !strings.Contains(s, "://") || !strings.Contains(s, "@") {
		return s
	}

	fields := strings.Fields(s)
	changed := false
	for i, f := range fields {
		u, err := url.Parse(f)
		if err != nil || u.User == nil {
			continue
		}
		if _, ok := u.User.Password(); !ok {
			continue
		}
		fields[i] = u.Redacted()
		changed = true
	}
	if !changed {
		return s
	}
	return strings.Join(fields, " ")
}

// NewLogger creates a new slog.Logger writing text records through a
// SafeHandler.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSafeHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger is like NewLogger but writes JSON records.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSafeHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
