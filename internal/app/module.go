package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/gocrypt/internal/credential"
)

func (a *App) initModules() {
	if err := credential.New(credential.Dependency{
		Router:     a.router,
		Hasher:     a.hasher,
		Registry:   a.registry,
		Algorithm:  a.algorithm,
		Instrument: a.ins,
		Clock:      a.clock,
		Validator:  a.validator,
	}); err != nil {
		slog.Error("failed to init module credential", "error", err)
		os.Exit(1)
	}
}
