package usecase

import (
	"context"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gocrypt/internal/credential/entity"
)

type AlgorithmsOutput struct {
	Configured string
	Algorithms []entity.Algorithm
}

// Algorithms lists every registered strategy with its availability on this host.
func (s *Usecase) Algorithms(ctx context.Context) (*AlgorithmsOutput, error) {
	ctx, span := s.startSpan(ctx, "Algorithms")
	defer span.End()

	start := s.clock.Now()
	defer func() { s.record(ctx, entity.OperationAlgorithms, start, entity.OutcomeOK) }()

	algs := lo.Map(s.catalog.Names(), func(name string, _ int) entity.Algorithm {
		alg := entity.Algorithm{
			Name:       name,
			Descriptor: s.catalog.Descriptor(name),
			Available:  true,
			Configured: name == s.algorithm,
		}
		if err := s.catalog.Probe(name); err != nil {
			alg.Available = false
			alg.Reason = err.Error()
		}
		return alg
	})

	return &AlgorithmsOutput{Configured: s.algorithm, Algorithms: algs}, nil
}
