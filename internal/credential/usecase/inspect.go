package usecase

import (
	"context"

	"github.com/shandysiswandi/gocrypt/internal/credential/entity"
	"github.com/shandysiswandi/gocrypt/internal/pkg/goerror"
	"github.com/shandysiswandi/gocrypt/internal/pkg/hash"
)

type InspectInput struct {
	Hash string `json:"hash" validate:"storedhash"`
}

type InspectOutput struct {
	Algorithm   string
	Descriptor  string
	Params      map[string]int
	SaltLength  int
	KeyLength   int
	NeedsRehash bool
}

// Inspect decodes the algorithm and cost parameters of a stored hash for
// diagnostics. It never verifies anything.
func (s *Usecase) Inspect(ctx context.Context, in InspectInput) (*InspectOutput, error) {
	ctx, span := s.startSpan(ctx, "Inspect")
	defer span.End()

	start := s.clock.Now()
	outcome := entity.OutcomeError
	defer func() { s.record(ctx, entity.OperationInspect, start, outcome) }()

	if err := s.validator.Validate(in); err != nil {
		outcome = entity.OutcomeInvalid
		return nil, goerror.NewInvalidInput(err)
	}

	info, err := hash.Inspect(in.Hash)
	if err != nil {
		outcome = entity.OutcomeInvalid
		return nil, goerror.NewInvalidInput(nil, "hash", "unrecognised or malformed stored hash")
	}

	// A hash from another algorithm always needs replacing.
	needsRehash := true
	if info.Algorithm == s.algorithm {
		needsRehash = s.needsRehash(in.Hash)
	}

	outcome = entity.OutcomeOK
	return &InspectOutput{
		Algorithm:   info.Algorithm,
		Descriptor:  s.catalog.Descriptor(info.Algorithm),
		Params:      info.Params,
		SaltLength:  info.SaltLength,
		KeyLength:   info.KeyLength,
		NeedsRehash: needsRehash,
	}, nil
}
