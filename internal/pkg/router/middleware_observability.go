package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/gocrypt/internal/pkg/config"
	"github.com/shandysiswandi/gocrypt/internal/pkg/instrument"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxLoggedBodyBytes = 4 * 1024
	masked             = "***"
	omittedBody        = "<unparsed body omitted>"
)

// maskKeys is a lower-cased set of field and header names whose values are
// never logged.
type maskKeys map[string]struct{}

func getMaskKeys(cfg config.Config) maskKeys {
	fields := instrument.DefaultMaskFields
	if cfg != nil {
		fields = slices.Concat(fields, cfg.GetArray("instrument.log_mask_fields"))
	}

	keys := make(maskKeys, len(fields)+1)
	keys["authorization"] = struct{}{}
	for _, field := range fields {
		if field = strings.ToLower(strings.TrimSpace(field)); field != "" {
			keys[field] = struct{}{}
		}
	}

	return keys
}

func (m maskKeys) has(key string) bool {
	_, ok := m[strings.ToLower(key)]
	return ok
}

func (m maskKeys) headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		if m.has(k) {
			out[k] = masked
			continue
		}
		out[k] = h.Get(k)
	}
	return out
}

func (m maskKeys) value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.has(k) {
				out[k] = masked
				continue
			}
			out[k] = m.value(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = m.value(inner)
		}
		return out
	default:
		return v
	}
}

// body returns a loggable form of a JSON payload. Anything that does not
// parse as JSON is omitted since it cannot be masked field by field and may
// carry a plaintext credential.
func (m maskKeys) body(b []byte, truncated bool) any {
	if len(b) == 0 {
		return nil
	}
	if truncated {
		return omittedBody
	}

	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return omittedBody
	}
	return m.value(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   bytes.Buffer
	capped bool
	err    error
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if room := maxLoggedBodyBytes - w.body.Len(); room < len(p) {
		w.body.Write(p[:max(room, 0)])
		w.capped = true
	} else {
		w.body.Write(p)
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) SetError(err error) {
	w.err = err
}

func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func (w *statusRecorder) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// peekBody reads up to maxLoggedBodyBytes of the request body and restores it
// for the handler. truncated reports that the body was longer.
func peekBody(r *http.Request) (body []byte, truncated bool) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, false
	}

	//nolint:errcheck // best effort for logging only
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes+1))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}

	if len(head) > maxLoggedBodyBytes {
		return head[:maxLoggedBodyBytes], true
	}
	return head, false
}

type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) httpMetrics {
	var (
		m   httpMetrics
		err error
	)

	m.requests, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}

	m.duration, err = meter.Float64Histogram("http.server.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("HTTP request duration in milliseconds"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	m.active, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("HTTP requests currently being served"))
	if err != nil {
		slog.Error("failed to create http active request counter", "error", err)
	}

	return m
}

func (m httpMetrics) begin(ctx context.Context, route string) func(status int, elapsed time.Duration) {
	routeAttr := metric.WithAttributes(semconv.HTTPRouteKey.String(route))
	if m.active != nil {
		m.active.Add(ctx, 1, routeAttr)
	}

	return func(status int, elapsed time.Duration) {
		if m.active != nil {
			m.active.Add(ctx, -1, routeAttr)
		}

		attrs := metric.WithAttributes(
			semconv.HTTPRouteKey.String(route),
			semconv.HTTPResponseStatusCodeKey.Int(status),
		)
		if m.requests != nil {
			m.requests.Add(ctx, 1, attrs)
		}
		if m.duration != nil {
			m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
		}
	}
}

func logLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	keys := getMaskKeys(cfg)
	tracer := ins.Tracer("http.server")
	metrics := newHTTPMetrics(ins.Meter("http.server"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			start := time.Now()

			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
					semconv.NetworkProtocolVersionKey.String(r.Proto),
					semconv.ServerAddressKey.String(r.Host),
					semconv.UserAgentOriginalKey.String(r.UserAgent()),
				),
			)
			defer span.End()

			done := metrics.begin(ctx, route)

			reqBody, reqTruncated := peekBody(r)
			slog.InfoContext(ctx, "request received",
				"method", r.Method,
				"path", route,
				"remote_addr", r.RemoteAddr,
				"headers", keys.headers(r.Header),
				"body", keys.body(reqBody, reqTruncated),
			)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.statusCode()
			elapsed := time.Since(start)
			done(status, elapsed)

			span.SetAttributes(
				semconv.HTTPResponseStatusCodeKey.Int(status),
				attribute.Int("http.response_content_length", rec.bytes),
			)
			if rec.err != nil {
				span.RecordError(rec.err)
			}
			if status >= http.StatusInternalServerError {
				desc := http.StatusText(status)
				if rec.err != nil {
					desc = rec.err.Error()
				}
				span.SetStatus(codes.Error, desc)
			}

			attrs := []any{
				"method", r.Method,
				"path", route,
				"status", status,
				"bytes", rec.bytes,
				"latency_ms", elapsed.Milliseconds(),
				"body", keys.body(rec.body.Bytes(), rec.capped),
			}
			if rec.err != nil && status >= http.StatusInternalServerError {
				attrs = append(attrs, "error", rec.err)
			}
			slog.Log(ctx, logLevel(status), "response sent", attrs...)
		})
	}
}
