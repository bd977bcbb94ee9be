package credential

import (
	"github.com/shandysiswandi/gocrypt/internal/credential/inbound"
	"github.com/shandysiswandi/gocrypt/internal/credential/usecase"
	"github.com/shandysiswandi/gocrypt/internal/pkg/clock"
	"github.com/shandysiswandi/gocrypt/internal/pkg/hash"
	"github.com/shandysiswandi/gocrypt/internal/pkg/instrument"
	"github.com/shandysiswandi/gocrypt/internal/pkg/router"
	"github.com/shandysiswandi/gocrypt/internal/pkg/validator"
)

type Dependency struct {
	Router     *router.Router             `validate:"required"`
	Hasher     *hash.Pool                 `validate:"required"`
	Registry   *hash.Registry             `validate:"required"`
	Algorithm  string                     `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		Hasher:     dep.Hasher,
		Catalog:    dep.Registry,
		Algorithm:  dep.Algorithm,
		Validator:  dep.Validator,
		Clock:      dep.Clock,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
