package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders records as a single human-readable line:
// timestamp, level, [component], message, then key=value attrs. The
// component attribute is lifted out of the attr list for readability.
type consoleHandler struct {
	mu     sync.Mutex
	writer io.Writer
	level  *slog.LevelVar
	attrs  []slog.Attr
	groups []string
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar) slog.Handler {
	return &consoleHandler{writer: w, level: lvl}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	attrs := make([]slog.Attr, 0, record.NumAttrs()+len(h.attrs))
	attrs = append(attrs, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		attrs = append(attrs, attr)
		return true
	})

	var component string
	filtered := attrs[:0]
	for _, attr := range attrs {
		if attr.Key == FieldComponent && component == "" {
			component = attr.Value.String()
			continue
		}
		filtered = append(filtered, attr)
	}

	var b strings.Builder
	b.WriteString(timestamp.Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(levelLabel(record.Level))
	if component != "" {
		b.WriteString(" [")
		b.WriteString(component)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(strings.TrimSpace(record.Message))
	for _, attr := range filtered {
		b.WriteByte(' ')
		b.WriteString(attr.Key)
		b.WriteByte('=')
		b.WriteString(formatValue(attr.Value))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := &consoleHandler{writer: h.writer, level: h.level, groups: h.groups}
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	clone := &consoleHandler{writer: h.writer, level: h.level, attrs: h.attrs}
	clone.groups = append(append([]string{}, h.groups...), name)
	return clone
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN "
	case level >= slog.LevelInfo:
		return "INFO "
	default:
		return "DEBUG"
	}
}

func formatValue(value slog.Value) string {
	value = value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		s := value.String()
		if strings.ContainsAny(s, " \t") {
			return fmt.Sprintf("%q", s)
		}
		return s
	case slog.KindDuration:
		return value.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return value.Time().UTC().Format(time.RFC3339)
	default:
		return value.String()
	}
}
