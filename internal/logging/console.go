package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// consoleHandler writes one human-readable line per record:
//
//	2026-01-02T15:04:05Z INFO revision: pair decision reference=a.pdf mode=next
//
// The component attribute is lifted in front of the message instead of
// being printed as a key/value pair.
type consoleHandler struct {
	out        *output
	level      *slog.LevelVar
	withSource bool
	component  string
	fields     []field
	group      string
}

type field struct {
	key   string
	value slog.Value
}

func newConsoleHandler(out *output, level *slog.LevelVar, withSource bool) *consoleHandler {
	return &consoleHandler{out: out, level: level, withSource: withSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = append([]field(nil), h.fields...)
	for _, a := range attrs {
		next.collect(a, h.group)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.group = joinKey(h.group, name)
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	line := *h
	line.fields = append([]field(nil), h.fields...)
	r.Attrs(func(a slog.Attr) bool {
		line.collect(a, h.group)
		return true
	})

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	b.WriteString(ts.UTC().Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(levelLabel(r.Level))
	b.WriteByte(' ')
	if line.component != "" {
		b.WriteString(line.component)
		b.WriteString(": ")
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(msg)
	if h.withSource {
		if src := r.Source(); src != nil && src.File != "" {
			fmt.Fprintf(&b, " [%s]", sourceRef(src.File, src.Line))
		}
	}
	for _, f := range line.fields {
		b.WriteByte(' ')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(renderValue(f.value))
	}
	b.WriteByte('\n')

	_, err := h.out.Write([]byte(b.String()))
	return err
}

// collect flattens a into h.fields under the dotted group path.
func (h *consoleHandler) collect(a slog.Attr, group string) {
	if a.Equal(slog.Attr{}) {
		return
	}
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		inner := group
		if a.Key != "" {
			inner = joinKey(group, a.Key)
		}
		for _, member := range a.Value.Group() {
			h.collect(member, inner)
		}
		return
	}
	if group == "" && a.Key == FieldComponent {
		if h.component == "" {
			h.component = plainValue(a.Value)
		}
		return
	}
	key := joinKey(group, a.Key)
	if key == "" {
		return
	}
	h.fields = append(h.fields, field{key: key, value: a.Value})
}

func joinKey(group, key string) string {
	switch {
	case group == "":
		return key
	case key == "":
		return group
	default:
		return group + "." + key
	}
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// plainValue renders v without quoting.
func plainValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	default:
		return v.String()
	}
}

// renderValue quotes values that would otherwise break key=value parsing.
func renderValue(v slog.Value) string {
	s := plainValue(v.Resolve())
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}
