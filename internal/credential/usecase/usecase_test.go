package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/gocrypt/internal/pkg/clock"
	"github.com/shandysiswandi/gocrypt/internal/pkg/goerror"
	"github.com/shandysiswandi/gocrypt/internal/pkg/hash"
	"github.com/shandysiswandi/gocrypt/internal/pkg/instrument"
	"github.com/shandysiswandi/gocrypt/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastArgon2i = hash.Params{MemoryCost: 64, TimeCost: 1, Threads: 1}

type stubHasher struct {
	strategy hash.Strategy
	err      error
}

func (s stubHasher) Hash(context.Context, string) ([]byte, error)         { return nil, s.err }
func (s stubHasher) Verify(context.Context, string, string) (bool, error) { return false, s.err }
func (s stubHasher) Strategy() hash.Strategy                              { return s.strategy }
func (stubHasher) InFlight() int64                                        { return 0 }
func (stubHasher) Timeouts() int64                                        { return 0 }

func newTestUsecase(t *testing.T, h hasher) *Usecase {
	t.Helper()

	registry := hash.DefaultRegistry()
	if h == nil {
		strategy, err := registry.New(hash.NameArgon2i, fastArgon2i)
		require.NoError(t, err)
		h = hash.NewPool(strategy, 2, time.Minute)
	}

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	return New(Dependency{
		Hasher:     h,
		Catalog:    registry,
		Algorithm:  hash.NameArgon2i,
		Validator:  v,
		Clock:      clock.New(),
		Instrument: instrument.NewNoop(),
	})
}

func errCode(t *testing.T, err error) goerror.Code {
	t.Helper()

	var ge *goerror.Error
	require.True(t, errors.As(err, &ge), "not a goerror: %v", err)
	return ge.Code()
}

func TestUsecase_Hash(t *testing.T) {
	uc := newTestUsecase(t, nil)

	t.Run("Success", func(t *testing.T) {
		out, err := uc.Hash(context.Background(), HashInput{Password: "correct horse"})

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out.Hash, "$argon2i$v=19$m=64,t=1,p=1$"), out.Hash)
		assert.Equal(t, hash.NameArgon2i, out.Algorithm)
		assert.Equal(t, "Argon2 (Crypt)", out.Descriptor)
	})

	t.Run("EmptyPassword", func(t *testing.T) {
		out, err := uc.Hash(context.Background(), HashInput{})

		assert.Nil(t, out)
		assert.Equal(t, goerror.CodeInvalidInput, errCode(t, err))
	})

	t.Run("PoolTimeout", func(t *testing.T) {
		uc := newTestUsecase(t, stubHasher{err: fmt.Errorf("%w: %w", hash.ErrTimeout, context.DeadlineExceeded)})

		_, err := uc.Hash(context.Background(), HashInput{Password: "p"})

		assert.Equal(t, goerror.CodeUnavailable, errCode(t, err))
		assert.ErrorIs(t, err, hash.ErrTimeout)
	})

	t.Run("PasswordOverStrategyLimit", func(t *testing.T) {
		strategy, err := hash.NewBcrypt(4, "")
		require.NoError(t, err)
		uc := newTestUsecase(t, hash.NewPool(strategy, 1, time.Minute))

		out, err := uc.Hash(context.Background(), HashInput{Password: strings.Repeat("a", 73)})

		assert.Nil(t, out)
		assert.Equal(t, goerror.CodeInvalidInput, errCode(t, err))
		assert.ErrorIs(t, err, hash.ErrPasswordTooLong)

		var ge *goerror.Error
		require.ErrorAs(t, err, &ge)
		assert.Contains(t, ge.Fields(), "password")

		_, err = uc.Hash(context.Background(), HashInput{Password: strings.Repeat("a", 72)})
		assert.NoError(t, err)
	})

	t.Run("StrategyRejectsLength", func(t *testing.T) {
		uc := newTestUsecase(t, stubHasher{err: fmt.Errorf("%w: too long", hash.ErrPasswordTooLong)})

		_, err := uc.Hash(context.Background(), HashInput{Password: "p"})

		assert.Equal(t, goerror.CodeInvalidInput, errCode(t, err))
	})

	t.Run("RandomSourceFailure", func(t *testing.T) {
		uc := newTestUsecase(t, stubHasher{err: errors.New("entropy exhausted")})

		_, err := uc.Hash(context.Background(), HashInput{Password: "p"})

		assert.Equal(t, goerror.CodeInternal, errCode(t, err))
	})
}

func TestUsecase_Verify(t *testing.T) {
	uc := newTestUsecase(t, nil)
	ctx := context.Background()

	stored, err := uc.Hash(ctx, HashInput{Password: "correct horse"})
	require.NoError(t, err)

	weak, err := hash.NewArgon2i(hash.Argon2Config{MemoryCost: 32, TimeCost: 1, Threads: 1})
	require.NoError(t, err)
	weakHash, err := weak.Hash("correct horse")
	require.NoError(t, err)

	pbkdf2, err := hash.NewPBKDF2SHA256(1000)
	require.NoError(t, err)
	foreignHash, err := pbkdf2.Hash("correct horse")
	require.NoError(t, err)

	tests := []struct {
		name            string
		in              VerifyInput
		wantValid       bool
		wantNeedsRehash bool
	}{
		{
			name:      "Match",
			in:        VerifyInput{Password: "correct horse", Hash: stored.Hash},
			wantValid: true,
		},
		{
			name: "Mismatch",
			in:   VerifyInput{Password: "wrong battery", Hash: stored.Hash},
		},
		{
			name: "Malformed",
			in:   VerifyInput{Password: "correct horse", Hash: "$argon2i$v=19$m=0,t=0,p=0$x$y"},
		},
		{
			name: "OtherAlgorithm",
			in:   VerifyInput{Password: "correct horse", Hash: string(foreignHash)},
		},
		{
			name:            "WeakerParameters",
			in:              VerifyInput{Password: "correct horse", Hash: string(weakHash)},
			wantValid:       true,
			wantNeedsRehash: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := uc.Verify(ctx, tt.in)

			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, out.Valid)
			assert.Equal(t, tt.wantNeedsRehash, out.NeedsRehash)
		})
	}

	t.Run("EmptyPassword", func(t *testing.T) {
		empty, err := uc.Hash(ctx, HashInput{Password: ""})
		require.Error(t, err)
		require.Nil(t, empty)

		strategy, err := hash.NewArgon2i(hash.Argon2Config{MemoryCost: 64, TimeCost: 1, Threads: 1})
		require.NoError(t, err)
		emptyHash, err := strategy.Hash("")
		require.NoError(t, err)

		out, err := uc.Verify(ctx, VerifyInput{Password: "", Hash: string(emptyHash)})
		require.NoError(t, err)
		assert.True(t, out.Valid)

		out, err = uc.Verify(ctx, VerifyInput{Password: "", Hash: stored.Hash})
		require.NoError(t, err)
		assert.False(t, out.Valid)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		_, err := uc.Verify(ctx, VerifyInput{Password: "p", Hash: "has space"})

		assert.Equal(t, goerror.CodeInvalidInput, errCode(t, err))
	})

	t.Run("PoolCanceled", func(t *testing.T) {
		uc := newTestUsecase(t, stubHasher{err: context.Canceled})

		_, err := uc.Verify(ctx, VerifyInput{Password: "p", Hash: stored.Hash})

		assert.Equal(t, goerror.CodeUnavailable, errCode(t, err))
	})
}

func TestUsecase_Inspect(t *testing.T) {
	uc := newTestUsecase(t, nil)
	ctx := context.Background()

	t.Run("ConfiguredAlgorithm", func(t *testing.T) {
		stored, err := uc.Hash(ctx, HashInput{Password: "p"})
		require.NoError(t, err)

		out, err := uc.Inspect(ctx, InspectInput{Hash: stored.Hash})

		require.NoError(t, err)
		assert.Equal(t, &InspectOutput{
			Algorithm:  hash.NameArgon2i,
			Descriptor: "Argon2 (Crypt)",
			Params:     map[string]int{"v": 19, "m": 64, "t": 1, "p": 1},
			SaltLength: 16,
			KeyLength:  32,
		}, out)
	})

	t.Run("OtherAlgorithmNeedsRehash", func(t *testing.T) {
		pbkdf2, err := hash.NewPBKDF2SHA256(1000)
		require.NoError(t, err)
		stored, err := pbkdf2.Hash("p")
		require.NoError(t, err)

		out, err := uc.Inspect(ctx, InspectInput{Hash: string(stored)})

		require.NoError(t, err)
		assert.Equal(t, hash.NamePBKDF2SHA256, out.Algorithm)
		assert.Equal(t, "PBKDF2-SHA256", out.Descriptor)
		assert.True(t, out.NeedsRehash)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := uc.Inspect(ctx, InspectInput{Hash: "$argon2i$v=19$broken"})

		assert.Equal(t, goerror.CodeInvalidInput, errCode(t, err))

		var ge *goerror.Error
		require.True(t, errors.As(err, &ge))
		assert.Contains(t, ge.Fields(), "hash")
	})
}

func TestUsecase_Algorithms(t *testing.T) {
	uc := newTestUsecase(t, nil)

	out, err := uc.Algorithms(context.Background())

	require.NoError(t, err)
	assert.Equal(t, hash.NameArgon2i, out.Configured)
	require.Len(t, out.Algorithms, 5)

	for _, alg := range out.Algorithms {
		assert.NotEmpty(t, alg.Descriptor, alg.Name)
		assert.Equal(t, alg.Name == hash.NameArgon2i, alg.Configured, alg.Name)
		assert.True(t, alg.Available, alg.Name)
		assert.Empty(t, alg.Reason, alg.Name)
	}
}
