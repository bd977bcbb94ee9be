package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/rs/cors"
	"github.com/shandysiswandi/gocrypt/internal/pkg/clock"
	"github.com/shandysiswandi/gocrypt/internal/pkg/config"
	"github.com/shandysiswandi/gocrypt/internal/pkg/goerror"
	"github.com/shandysiswandi/gocrypt/internal/pkg/goroutine"
	"github.com/shandysiswandi/gocrypt/internal/pkg/hash"
	"github.com/shandysiswandi/gocrypt/internal/pkg/instrument"
	"github.com/shandysiswandi/gocrypt/internal/pkg/router"
	"github.com/shandysiswandi/gocrypt/internal/pkg/uid"
	"github.com/shandysiswandi/gocrypt/internal/pkg/validator"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	if tz := cfg.GetString("app.tz"); tz != "" {
		//nolint:errcheck,gosec // ignore error
		os.Setenv("TZ", tz)
	}

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
		LogLevel:         a.config.GetString("instrument.log_level"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator
}

func (a *App) initHasher() {
	a.registry = hash.DefaultRegistry()
	a.algorithm = strings.TrimSpace(a.config.GetString("hash.algorithm"))
	if a.algorithm == "" {
		a.algorithm = hash.NameArgon2i
	}

	if err := probeAlgorithms(a.ctx, a.registry); err != nil {
		slog.Warn("some hash algorithms are unavailable on this host", "error", err)
	}

	params, err := HashParams(a.config, a.algorithm)
	if err != nil {
		slog.Error("invalid hash configuration", "algorithm", a.algorithm, "error", err)
		os.Exit(1)
	}

	if err := a.registry.Probe(a.algorithm); err != nil {
		slog.Error("configured hash algorithm is not supported", "algorithm", a.algorithm, "error", err)
		os.Exit(1)
	}

	strategy, err := a.registry.New(a.algorithm, params)
	if err != nil {
		slog.Error("failed to init hash strategy", "algorithm", a.algorithm, "error", err)
		os.Exit(1)
	}

	maxConcurrent, err := config.OptionalPositive(a.config, "hash.pool.max_concurrent")
	if err != nil {
		slog.Error("invalid hash pool configuration", "error", err)
		os.Exit(1)
	}

	a.hasher = hash.NewPool(strategy, int64(maxConcurrent), a.config.GetSecond("hash.pool.timeout_seconds"))

	slog.Info("hash strategy ready",
		"algorithm", a.algorithm,
		"descriptor", strategy.AlgorithmName(),
		"pool_size", a.hasher.Size(),
	)
}

// HashParams reads the settings of the named algorithm. Absent keys stay zero
// so the strategy falls back to its defaults; explicit non-positive costs are
// rejected.
func HashParams(cfg config.Config, name string) (hash.Params, error) {
	var (
		p    hash.Params
		errs []error
	)

	positive := func(key string) uint32 {
		v, err := config.OptionalPositive(cfg, key)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	switch name {
	case hash.NameArgon2i:
		p.MemoryCost = positive("hash.argon2i.memory_cost")
		p.TimeCost = positive("hash.argon2i.time_cost")
		p.Threads = positive("hash.argon2i.threads")
		p.MaxVerifyMemoryCost = positive("hash.argon2i.max_verify_memory_cost")
		p.MaxVerifyTimeCost = positive("hash.argon2i.max_verify_time_cost")
	case hash.NameArgon2id:
		p.MemoryCost = positive("hash.argon2id.memory_cost")
		p.TimeCost = positive("hash.argon2id.time_cost")
		p.Threads = positive("hash.argon2id.threads")
		p.MaxVerifyMemoryCost = positive("hash.argon2id.max_verify_memory_cost")
		p.MaxVerifyTimeCost = positive("hash.argon2id.max_verify_time_cost")
		p.Pepper = cfg.GetString("hash.argon2id.pepper")
	case hash.NameBcrypt:
		p.Cost = int(positive("hash.bcrypt.cost"))
		p.Pepper = cfg.GetString("hash.bcrypt.pepper")
	case hash.NamePBKDF2SHA256:
		p.Iterations = positive("hash.pbkdf2.iterations")
	case hash.NameHMACSHA256:
		p.Secret = cfg.GetString("hash.hmac.secret")
	}

	if len(errs) > 0 {
		return hash.Params{}, fmt.Errorf("hash %s: %w", name, errs[0])
	}

	return p, nil
}

// probeAlgorithms checks every registered algorithm concurrently and returns
// the failures joined.
func probeAlgorithms(ctx context.Context, registry *hash.Registry) error {
	names := registry.Names()
	mgr := goroutine.NewManager(len(names))

	for _, name := range names {
		mgr.Go(ctx, name, func(context.Context) error {
			return registry.Probe(name)
		})
	}

	return mgr.Wait()
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	a.router.GET("/health", a.health)

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

type healthResponse struct {
	Status    string `json:"status"`
	Algorithm string `json:"algorithm"`
	PoolSize  int64  `json:"pool_size"`
	InFlight  int64  `json:"in_flight"`
}

func (a *App) health(*router.Request) (any, error) {
	if a.draining.Load() {
		return nil, goerror.NewUnavailable(nil, "Service is shutting down")
	}

	return healthResponse{
		Status:    "ok",
		Algorithm: a.algorithm,
		PoolSize:  a.hasher.Size(),
		InFlight:  a.hasher.InFlight(),
	}, nil
}

func (a *App) initClosers() {
	a.closers = []closer{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
