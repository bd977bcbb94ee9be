package inbound

import (
	"context"

	"github.com/shandysiswandi/gocrypt/internal/credential/usecase"
	"github.com/shandysiswandi/gocrypt/internal/pkg/router"
)

type uc interface {
	Hash(ctx context.Context, in usecase.HashInput) (*usecase.HashOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	Inspect(ctx context.Context, in usecase.InspectInput) (*usecase.InspectOutput, error)
	Algorithms(ctx context.Context) (*usecase.AlgorithmsOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/credential/hash", end.Hash)
	r.POST("/api/v1/credential/verify", end.Verify)
	r.POST("/api/v1/credential/inspect", end.Inspect)
	r.GET("/api/v1/credential/algorithms", end.Algorithms)
}
