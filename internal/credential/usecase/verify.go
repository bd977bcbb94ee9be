package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gocrypt/internal/credential/entity"
	"github.com/shandysiswandi/gocrypt/internal/pkg/goerror"
	"github.com/shandysiswandi/gocrypt/internal/pkg/hash"
)

type VerifyInput struct {
	Password string `json:"password" validate:"plaintext"`
	Hash     string `json:"hash" validate:"storedhash"`
}

type VerifyOutput struct {
	Valid bool
	// NeedsRehash is only set for valid credentials whose stored hash uses
	// other cost parameters than the configured ones.
	NeedsRehash bool
}

// Verify checks a password against a stored hash. A mismatch, a malformed
// hash and a hash from another algorithm all yield Valid=false without error.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	start := s.clock.Now()
	outcome := entity.OutcomeError
	defer func() { s.record(ctx, entity.OperationVerify, start, outcome) }()

	if err := s.validator.Validate(in); err != nil {
		outcome = entity.OutcomeInvalid
		return nil, goerror.NewInvalidInput(err)
	}

	valid, err := s.hasher.Verify(ctx, in.Hash, in.Password)
	if err != nil {
		outcome, err = s.poolFailure(ctx, entity.OperationVerify, err)
		return nil, err
	}

	if !valid {
		outcome = entity.OutcomeMismatch
		if name, ok := hash.Identify(in.Hash); ok && name != s.algorithm {
			slog.WarnContext(ctx, "stored hash belongs to another algorithm", "stored_algorithm", name, "configured_algorithm", s.algorithm)
		}
		return &VerifyOutput{}, nil
	}

	outcome = entity.OutcomeMatch
	return &VerifyOutput{Valid: true, NeedsRehash: s.needsRehash(in.Hash)}, nil
}
