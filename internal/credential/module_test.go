package credential

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/gocrypt/internal/pkg/clock"
	"github.com/shandysiswandi/gocrypt/internal/pkg/config"
	"github.com/shandysiswandi/gocrypt/internal/pkg/hash"
	"github.com/shandysiswandi/gocrypt/internal/pkg/instrument"
	"github.com/shandysiswandi/gocrypt/internal/pkg/router"
	"github.com/shandysiswandi/gocrypt/internal/pkg/uid"
	"github.com/shandysiswandi/gocrypt/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	t.Run("MissingDependency", func(t *testing.T) {
		err := New(Dependency{Validator: v})
		assert.Error(t, err)
	})

	t.Run("RegistersRoutes", func(t *testing.T) {
		cfg, err := config.NewViperFromBytes("yaml", []byte("app: {}"))
		require.NoError(t, err)

		registry := hash.DefaultRegistry()
		strategy, err := registry.New(hash.NameArgon2i, hash.Params{MemoryCost: 64, TimeCost: 1, Threads: 1})
		require.NoError(t, err)

		r := router.NewRouter(router.Config{Config: cfg, UUID: uid.NewUUID()})
		err = New(Dependency{
			Router:     r,
			Hasher:     hash.NewPool(strategy, 1, time.Minute),
			Registry:   registry,
			Algorithm:  hash.NameArgon2i,
			Instrument: instrument.NewNoop(),
			Clock:      clock.New(),
			Validator:  v,
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/credential/hash", strings.NewReader(`{"password":"correct horse"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"hash":"$argon2i$v=19$m=64,t=1,p=1$`)
	})
}
