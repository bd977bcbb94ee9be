package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gocrypt/internal/credential/entity"
	"github.com/shandysiswandi/gocrypt/internal/pkg/clock"
	"github.com/shandysiswandi/gocrypt/internal/pkg/goerror"
	"github.com/shandysiswandi/gocrypt/internal/pkg/hash"
	"github.com/shandysiswandi/gocrypt/internal/pkg/instrument"
	"github.com/shandysiswandi/gocrypt/internal/pkg/validator"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// hasher is satisfied by *hash.Pool.
type hasher interface {
	Hash(ctx context.Context, plaintext string) ([]byte, error)
	Verify(ctx context.Context, hashed, plaintext string) (bool, error)
	Strategy() hash.Strategy
	InFlight() int64
	Timeouts() int64
}

// catalog is satisfied by *hash.Registry.
type catalog interface {
	Names() []string
	Descriptor(name string) string
	Probe(name string) error
}

type Usecase struct {
	hasher    hasher
	catalog   catalog
	algorithm string
	validator validator.Validator
	clock     clock.Clocker
	ins       instrument.Instrumentation

	duration metric.Float64Histogram
	calls    metric.Int64Counter
}

type Dependency struct {
	Hasher     hasher
	Catalog    catalog
	Algorithm  string
	Validator  validator.Validator
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		hasher:    dep.Hasher,
		catalog:   dep.Catalog,
		algorithm: dep.Algorithm,
		validator: dep.Validator,
		clock:     dep.Clock,
		ins:       dep.Instrument,
	}
	s.initMetrics()

	return s
}

func (s *Usecase) initMetrics() {
	meter := s.ins.Meter("credential.usecase")

	var err error
	s.duration, err = meter.Float64Histogram(
		"credential.usecase.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Credential use case duration in milliseconds"),
	)
	if err != nil {
		slog.Error("failed to create credential duration histogram", "error", err)
	}

	s.calls, err = meter.Int64Counter(
		"credential.usecase.calls",
		metric.WithDescription("Credential use case calls by operation and outcome"),
	)
	if err != nil {
		slog.Error("failed to create credential call counter", "error", err)
	}

	_, err = meter.Int64ObservableGauge(
		"credential.hash.in_flight",
		metric.WithDescription("Hash computations currently holding a pool slot"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(s.hasher.InFlight())
			return nil
		}),
	)
	if err != nil {
		slog.Error("failed to create in-flight gauge", "error", err)
	}

	_, err = meter.Int64ObservableCounter(
		"credential.hash.timeouts",
		metric.WithDescription("Hash calls that gave up waiting for the pool"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(s.hasher.Timeouts())
			return nil
		}),
	)
	if err != nil {
		slog.Error("failed to create timeout counter", "error", err)
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("credential.usecase").Start(ctx, name,
		trace.WithAttributes(attribute.String("credential.algorithm", s.algorithm)),
	)
}

func (s *Usecase) record(ctx context.Context, op entity.Operation, start time.Time, outcome entity.Outcome) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", string(op)),
		attribute.String("outcome", outcome.String()),
		attribute.String("algorithm", s.algorithm),
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("credential.outcome", outcome.String()))

	if s.duration != nil {
		elapsed := float64(s.clock.Since(start).Microseconds()) / 1000
		s.duration.Record(ctx, elapsed, metric.WithAttributes(attrs...))
	}
	if s.calls != nil {
		s.calls.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// poolFailure maps an error from the hashing pool to the client-facing error.
func (s *Usecase) poolFailure(ctx context.Context, op entity.Operation, err error) (entity.Outcome, error) {
	if errors.Is(err, hash.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		slog.WarnContext(ctx, "hashing pool unavailable", "operation", op, "in_flight", s.hasher.InFlight(), "error", err)
		return entity.OutcomeUnavailable, goerror.NewUnavailable(err, "Hashing capacity exhausted, retry later")
	}

	if errors.Is(err, hash.ErrPasswordTooLong) {
		return entity.OutcomeInvalid, goerror.NewInvalidInput(err, "password", "password is too long for "+s.algorithm)
	}

	slog.ErrorContext(ctx, "failed to compute hash", "operation", op, "error", err)
	return entity.OutcomeError, goerror.NewServer(err)
}

func (s *Usecase) needsRehash(stored string) bool {
	rh, ok := s.hasher.Strategy().(hash.Rehasher)
	if !ok {
		return false
	}
	return rh.NeedsRehash(stored)
}
