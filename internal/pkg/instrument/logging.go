package instrument

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// DefaultMaskFields are always masked in log output. Plaintext credentials,
// stored hashes and keying material must never reach a log sink.
var DefaultMaskFields = []string{"password", "hash", "pepper", "secret"}

const maskedValue = "***"

// storedHashPrefixes identify stored credential hashes by value, so they are
// masked even when logged under an unexpected key.
var storedHashPrefixes = []string{
	"$argon2i$", "$argon2id$", "$2a$", "$2b$", "$2y$", "$pbkdf2-sha256$",
}

func initLogging(serviceName string, lp *sdklog.LoggerProvider, maskFields []string, level string) {
	slog.SetDefault(slog.New(newHandler(os.Stdout, serviceName, lp, maskFields, parseLevel(level))))
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// newHandler chains, from the outside in: service and correlation attributes,
// masking, then the JSON writer plus the optional OpenTelemetry bridge.
func newHandler(w io.Writer, serviceName string, lp *sdklog.LoggerProvider, maskFields []string, level slog.Level) slog.Handler {
	var sink slog.Handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   true,
		ReplaceAttr: renameAttr,
	})
	if lp != nil {
		sink = fanout{sink, otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(lp))}
	}

	return &contextHandler{
		Handler: &maskHandler{
			next: sink,
			mask: newFieldMask(slices.Concat(DefaultMaskFields, maskFields)),
		},
		serviceName: serviceName,
	}
}

// renameAttr shortens the built-in keys and reports the caller relative to
// the module's internal/ tree. Callers outside it are dropped.
func renameAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		_, rel, found := strings.Cut(src.File, "/internal/")
		if !found {
			return slog.Attr{}
		}
		return slog.String("file", "internal/"+rel+":"+strconv.Itoa(src.Line))
	}
	return a
}

type contextHandler struct {
	slog.Handler
	serviceName string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if cID := GetCorrelationID(ctx); cID != "" {
		r.AddAttrs(slog.String("_cID", cID))
	}
	if h.serviceName != "" {
		r.AddAttrs(slog.String("service", h.serviceName))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), serviceName: h.serviceName}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), serviceName: h.serviceName}
}

// fanout sends every record to each enabled handler.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(f, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

type maskHandler struct {
	next slog.Handler
	mask fieldMask
}

func (h *maskHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *maskHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.mask.attr(a))
		return true
	})

	return h.next.Handle(ctx, out)
}

func (h *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.mask.attr(a)
	}
	return &maskHandler{next: h.next.WithAttrs(masked), mask: h.mask}
}

func (h *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{next: h.next.WithGroup(name), mask: h.mask}
}

// fieldMask is a lower-cased set of keys whose values are replaced.
type fieldMask map[string]struct{}

func newFieldMask(fields []string) fieldMask {
	m := make(fieldMask, len(fields))
	for _, f := range fields {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			m[f] = struct{}{}
		}
	}
	return m
}

func (m fieldMask) has(key string) bool {
	_, ok := m[strings.ToLower(key)]
	return ok
}

func (m fieldMask) attr(a slog.Attr) slog.Attr {
	if m.has(a.Key) {
		return slog.String(a.Key, maskedValue)
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		group := a.Value.Group()
		out := make([]slog.Attr, len(group))
		for i, ga := range group {
			out[i] = m.attr(ga)
		}
		a.Value = slog.GroupValue(out...)
	case slog.KindString:
		a.Value = slog.StringValue(m.text(a.Value.String()))
	case slog.KindAny:
		switch v := a.Value.Any().(type) {
		case map[string]any, []any:
			a.Value = slog.AnyValue(m.data(v))
		case map[string]string:
			conv := make(map[string]any, len(v))
			for k, s := range v {
				conv[k] = s
			}
			a.Value = slog.AnyValue(m.data(conv))
		case []byte:
			a.Value = slog.StringValue(m.text(string(v)))
		}
	}

	return a
}

// text masks a stored hash outright and the masked keys of a JSON document.
// Anything else is returned unchanged.
func (m fieldMask) text(s string) string {
	if isStoredHash(s) {
		return maskedValue
	}
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return s
	}

	var doc any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return s
	}
	out, err := json.Marshal(m.data(doc))
	if err != nil {
		return s
	}
	return string(out)
}

func (m fieldMask) data(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			if m.has(k) {
				out[k] = maskedValue
				continue
			}
			out[k] = m.data(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = m.data(child)
		}
		return out
	case string:
		if isStoredHash(val) {
			return maskedValue
		}
		return val
	default:
		return v
	}
}

func isStoredHash(s string) bool {
	return slices.ContainsFunc(storedHashPrefixes, func(p string) bool {
		return strings.HasPrefix(s, p)
	})
}
