package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
hash:
  algorithm: argon2i
  argon2i:
    memory_cost: 65536
    time_cost: 0
    threads: -2
  pool:
    timeout_seconds: 5
instrument:
  log_mask_fields: password, hash
`

func newSample(t *testing.T) *Viper {
	t.Helper()

	cfg, err := NewViperFromBytes("yaml", []byte(sample))
	require.NoError(t, err)
	return cfg
}

func TestNewViperFromBytes(t *testing.T) {
	_, err := NewViperFromBytes(" ", []byte(sample))
	assert.Error(t, err)

	_, err = NewViperFromBytes("yaml", []byte("hash: [unterminated"))
	assert.Error(t, err)
}

func TestViper_Getters(t *testing.T) {
	cfg := newSample(t)

	assert.Equal(t, "argon2i", cfg.GetString("hash.algorithm"))
	assert.Equal(t, uint32(65536), cfg.GetUint32("hash.argon2i.memory_cost"))
	assert.Equal(t, 5*time.Second, cfg.GetSecond("hash.pool.timeout_seconds"))
	assert.Equal(t, []string{"password", "hash"}, cfg.GetArray("instrument.log_mask_fields"))
	assert.Nil(t, cfg.GetArray("instrument.missing"))
	assert.NoError(t, cfg.Close())
}

func TestViper_IsSet(t *testing.T) {
	cfg := newSample(t)

	assert.True(t, cfg.IsSet("hash.argon2i.time_cost"))
	assert.False(t, cfg.IsSet("hash.argon2i.salt_length"))
}

func TestViper_EnvOverride(t *testing.T) {
	t.Setenv("GOCRYPT_HASH_HMAC_SECRET", "from-env")
	t.Setenv("GOCRYPT_HASH_ALGORITHM", "bcrypt")

	cfg := newSample(t)

	assert.True(t, cfg.IsSet("hash.hmac.secret"))
	assert.Equal(t, "from-env", cfg.GetString("hash.hmac.secret"))
	assert.Equal(t, "bcrypt", cfg.GetString("hash.algorithm"))
}

func TestOptionalPositive(t *testing.T) {
	cfg := newSample(t)

	tests := []struct {
		name    string
		key     string
		want    uint32
		wantErr bool
	}{
		{name: "Absent", key: "hash.argon2i.salt_length", want: 0},
		{name: "Positive", key: "hash.argon2i.memory_cost", want: 65536},
		{name: "ExplicitZero", key: "hash.argon2i.time_cost", wantErr: true},
		{name: "Negative", key: "hash.argon2i.threads", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OptionalPositive(cfg, tt.key)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrNotPositive)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
