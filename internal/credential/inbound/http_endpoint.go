package inbound

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/gocrypt/internal/credential/entity"
	"github.com/shandysiswandi/gocrypt/internal/credential/usecase"
	"github.com/shandysiswandi/gocrypt/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for credential hashing workflows.
type HTTPEndpoint struct {
	uc uc
}

// Hash produces a new stored hash for a password.
// @Summary Hash password
// @Description Hashes the password with the configured strategy and a fresh salt. The result is self-describing and can be stored as is.
// @Tags Credential
// @Accept json
// @Produce json
// @Param request body HashRequest true "Hash payload"
// @Success 200 {object} router.successResponse{data=HashResponse} "Stored hash"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Failure 503 {object} router.errorResponse "Hashing capacity exhausted"
// @Router /api/v1/credential/hash [post]
func (h *HTTPEndpoint) Hash(r *router.Request) (any, error) {
	var req HashRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Hash(r.Context(), usecase.HashInput{Password: req.Password})
	if err != nil {
		return nil, err
	}

	return HashResponse{
		Hash:       resp.Hash,
		Algorithm:  resp.Algorithm,
		Descriptor: resp.Descriptor,
	}, nil
}

// Verify checks a password against a stored hash.
// @Summary Verify password
// @Description Verifies the password against the stored hash. A mismatch or an unreadable hash is reported as valid=false, not as an error.
// @Tags Credential
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyResponse} "Verification result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 503 {object} router.errorResponse "Hashing capacity exhausted"
// @Router /api/v1/credential/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Password: req.Password,
		Hash:     req.Hash,
	})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{
		Valid:       resp.Valid,
		NeedsRehash: resp.NeedsRehash,
	}, nil
}

// Inspect decodes a stored hash.
// @Summary Inspect stored hash
// @Description Returns the algorithm and cost parameters embedded in a stored hash without verifying it.
// @Tags Credential
// @Accept json
// @Produce json
// @Param request body InspectRequest true "Inspect payload"
// @Success 200 {object} router.successResponse{data=InspectResponse} "Hash details"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Malformed stored hash"
// @Router /api/v1/credential/inspect [post]
func (h *HTTPEndpoint) Inspect(r *router.Request) (any, error) {
	var req InspectRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Inspect(r.Context(), usecase.InspectInput{Hash: req.Hash})
	if err != nil {
		return nil, err
	}

	return InspectResponse{
		Algorithm:   resp.Algorithm,
		Descriptor:  resp.Descriptor,
		Params:      resp.Params,
		SaltLength:  resp.SaltLength,
		KeyLength:   resp.KeyLength,
		NeedsRehash: resp.NeedsRehash,
	}, nil
}

// Algorithms lists the registered hashing strategies.
// @Summary List algorithms
// @Description Lists every registered strategy, whether it can run on this host and which one is configured.
// @Tags Credential
// @Produce json
// @Success 200 {object} router.successResponse{data=AlgorithmsResponse} "Registered algorithms"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/credential/algorithms [get]
func (h *HTTPEndpoint) Algorithms(r *router.Request) (any, error) {
	resp, err := h.uc.Algorithms(r.Context())
	if err != nil {
		return nil, err
	}

	return AlgorithmsResponse{
		Configured: resp.Configured,
		Algorithms: lo.Map(resp.Algorithms, func(a entity.Algorithm, _ int) AlgorithmResponse {
			return AlgorithmResponse{
				Name:       a.Name,
				Descriptor: a.Descriptor,
				Available:  a.Available,
				Configured: a.Configured,
				Reason:     a.Reason,
			}
		}),
	}, nil
}
