package app

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/gocrypt/internal/pkg/clock"
	"github.com/shandysiswandi/gocrypt/internal/pkg/config"
	"github.com/shandysiswandi/gocrypt/internal/pkg/hash"
	"github.com/shandysiswandi/gocrypt/internal/pkg/instrument"
	"github.com/shandysiswandi/gocrypt/internal/pkg/router"
	"github.com/shandysiswandi/gocrypt/internal/pkg/uid"
	"github.com/shandysiswandi/gocrypt/internal/pkg/validator"
	"go.uber.org/atomic"
)

// App wires the hashing service and manages its lifecycle.
type App struct {
	ctx      context.Context
	cancel   context.CancelFunc
	draining *atomic.Bool

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID

	// hashing
	registry  *hash.Registry
	algorithm string
	hasher    *hash.Pool

	// server
	router     *router.Router
	httpServer *http.Server

	// released in order by Stop
	closers []closer
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// New builds the application from configuration. Any failure is logged and
// terminates the process, since the service cannot run without its configured
// hash strategy.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:      ctx,
		cancel:   cancel,
		draining: atomic.NewBool(false),
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initHasher()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
