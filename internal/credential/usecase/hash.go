package usecase

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/gocrypt/internal/credential/entity"
	"github.com/shandysiswandi/gocrypt/internal/pkg/goerror"
	"github.com/shandysiswandi/gocrypt/internal/pkg/hash"
)

type HashInput struct {
	Password string `json:"password" validate:"password"`
}

type HashOutput struct {
	Hash       string
	Algorithm  string
	Descriptor string
}

// Hash produces a new stored hash of the password with the configured strategy.
func (s *Usecase) Hash(ctx context.Context, in HashInput) (*HashOutput, error) {
	ctx, span := s.startSpan(ctx, "Hash")
	defer span.End()

	start := s.clock.Now()
	outcome := entity.OutcomeError
	defer func() { s.record(ctx, entity.OperationHash, start, outcome) }()

	if err := s.validator.Validate(in); err != nil {
		outcome = entity.OutcomeInvalid
		return nil, goerror.NewInvalidInput(err)
	}

	if l, ok := s.hasher.Strategy().(hash.Limiter); ok && len(in.Password) > l.MaxPasswordBytes() {
		outcome = entity.OutcomeInvalid
		return nil, goerror.NewInvalidInput(hash.ErrPasswordTooLong, "password",
			fmt.Sprintf("password must be at most %d bytes for %s", l.MaxPasswordBytes(), s.algorithm))
	}

	hashed, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		outcome, err = s.poolFailure(ctx, entity.OperationHash, err)
		return nil, err
	}

	outcome = entity.OutcomeOK
	return &HashOutput{
		Hash:       string(hashed),
		Algorithm:  s.algorithm,
		Descriptor: s.hasher.Strategy().AlgorithmName(),
	}, nil
}
