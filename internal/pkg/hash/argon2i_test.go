package hash

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func fastArgon2() Argon2Config {
	return Argon2Config{MemoryCost: 64, TimeCost: 1, Threads: 1}
}

func newTestArgon2i(t *testing.T) *Argon2i {
	t.Helper()

	a, err := NewArgon2i(fastArgon2())
	require.NoError(t, err)
	return a
}

func withFIPS(t *testing.T, enabled bool) {
	t.Helper()

	prev := fipsEnabled
	fipsEnabled = func() bool { return enabled }
	t.Cleanup(func() { fipsEnabled = prev })
}

func TestNewArgon2i(t *testing.T) {
	t.Run("DefaultsWhenUnset", func(t *testing.T) {
		a, err := NewArgon2i(Argon2Config{})
		require.NoError(t, err)

		assert.Equal(t, Argon2Config{
			MemoryCost: 32768,
			TimeCost:   3,
			Threads:    1,
			SaltLength: 16,
			KeyLength:  32,
		}, a.Config())
	})

	t.Run("ExplicitValuesKept", func(t *testing.T) {
		a, err := NewArgon2i(Argon2Config{MemoryCost: 65536, TimeCost: 4, Threads: 2})
		require.NoError(t, err)

		cfg := a.Config()
		assert.Equal(t, uint32(65536), cfg.MemoryCost)
		assert.Equal(t, uint32(4), cfg.TimeCost)
		assert.Equal(t, uint32(2), cfg.Threads)
	})

	t.Run("PepperIgnored", func(t *testing.T) {
		cfg := fastArgon2()
		cfg.Pepper = "secret"
		a, err := NewArgon2i(cfg)
		require.NoError(t, err)

		assert.Empty(t, a.Config().Pepper)
	})

	t.Run("InvalidParameters", func(t *testing.T) {
		tests := []struct {
			name string
			cfg  Argon2Config
		}{
			{name: "TooManyThreads", cfg: Argon2Config{Threads: 256}},
			{name: "MemoryBelowLanes", cfg: Argon2Config{MemoryCost: 15, Threads: 2}},
			{name: "MemoryTooLarge", cfg: Argon2Config{MemoryCost: maxMemoryKiB + 1}},
			{name: "TimeTooLarge", cfg: Argon2Config{TimeCost: maxTimeCost + 1}},
			{name: "SaltTooShort", cfg: Argon2Config{SaltLength: 4}},
			{name: "KeyTooShort", cfg: Argon2Config{KeyLength: 2}},
			{name: "VerifyMemoryBelowCost", cfg: Argon2Config{MemoryCost: 1024, MaxVerifyMemoryCost: 512}},
			{name: "VerifyMemoryTooLarge", cfg: Argon2Config{MaxVerifyMemoryCost: maxMemoryKiB + 1}},
			{name: "VerifyTimeBelowCost", cfg: Argon2Config{TimeCost: 3, MaxVerifyTimeCost: 2}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewArgon2i(tt.cfg)
				assert.ErrorIs(t, err, ErrInvalidParameter)
				assert.NotErrorIs(t, err, ErrUnsupportedAlgorithm)
			})
		}
	})

	t.Run("UnsupportedInFIPSMode", func(t *testing.T) {
		withFIPS(t, true)

		a, err := NewArgon2i(Argon2Config{})

		assert.Nil(t, a)
		require.ErrorIs(t, err, ErrUnsupportedAlgorithm)

		var uerr *UnsupportedAlgorithmError
		require.True(t, errors.As(err, &uerr))
		assert.Equal(t, "argon2i", uerr.Algorithm)
	})
}

func TestProbeArgon2(t *testing.T) {
	t.Run("BackendIgnoresPassword", func(t *testing.T) {
		constant := func(_, _ []byte, _, _ uint32, _ uint8, keyLen uint32) []byte {
			return make([]byte, keyLen)
		}
		assert.Error(t, probeArgon2(constant))
	})

	t.Run("BackendPanics", func(t *testing.T) {
		broken := func(_, _ []byte, _, _ uint32, _ uint8, _ uint32) []byte {
			panic("no backend")
		}
		assert.Error(t, probeArgon2(broken))
	})
}

func TestArgon2i_HashAndVerify(t *testing.T) {
	a := newTestArgon2i(t)

	t.Run("CorrectHorse", func(t *testing.T) {
		// Arrange
		hashed, err := a.Hash("correct horse")
		require.NoError(t, err)

		// Act & Assert
		assert.True(t, strings.HasPrefix(string(hashed), "$argon2i$v=19$m=64,t=1,p=1$"), string(hashed))
		assert.True(t, a.Verify(string(hashed), "correct horse"))
		assert.False(t, a.Verify(string(hashed), "wrong battery"))
	})

	t.Run("EmptyPlaintext", func(t *testing.T) {
		hashed, err := a.Hash("")
		require.NoError(t, err)

		assert.True(t, a.Verify(string(hashed), ""))
		assert.False(t, a.Verify(string(hashed), " "))
	})

	t.Run("UnicodePlaintext", func(t *testing.T) {
		hashed, err := a.Hash("pässwörd-密码")
		require.NoError(t, err)

		assert.True(t, a.Verify(string(hashed), "pässwörd-密码"))
	})

	t.Run("FreshSaltPerCall", func(t *testing.T) {
		first, err := a.Hash("same input")
		require.NoError(t, err)
		second, err := a.Hash("same input")
		require.NoError(t, err)

		assert.NotEqual(t, string(first), string(second))
		assert.True(t, a.Verify(string(first), "same input"))
		assert.True(t, a.Verify(string(second), "same input"))
	})

	t.Run("EmbeddedParametersWin", func(t *testing.T) {
		other, err := NewArgon2i(Argon2Config{MemoryCost: 128, TimeCost: 2, Threads: 2})
		require.NoError(t, err)

		hashed, err := other.Hash("portable")
		require.NoError(t, err)

		assert.True(t, a.Verify(string(hashed), "portable"))
	})

	t.Run("Argon2idHashRejected", func(t *testing.T) {
		id, err := NewArgon2id(fastArgon2())
		require.NoError(t, err)

		hashed, err := id.Hash("cross")
		require.NoError(t, err)

		assert.False(t, a.Verify(string(hashed), "cross"))
	})
}

func TestArgon2i_VerifyMalformed(t *testing.T) {
	a := newTestArgon2i(t)

	valid, err := a.Hash("password")
	require.NoError(t, err)
	parts := strings.Split(string(valid), "$")
	salt, digest := parts[4], parts[5]

	tests := []struct {
		name   string
		hashed string
	}{
		{name: "Empty", hashed: ""},
		{name: "Garbage", hashed: "not-a-phc-hash"},
		{name: "OnlyPrefix", hashed: "$argon2i$"},
		{name: "Truncated", hashed: string(valid[:len(valid)-10])},
		{name: "ExtraSegment", hashed: string(valid) + "$extra"},
		{name: "NoLeadingDollar", hashed: string(valid[1:])},
		{name: "WrongVariant", hashed: "$argon2d$v=19$m=64,t=1,p=1$" + salt + "$" + digest},
		{name: "MissingVersion", hashed: "$argon2i$m=64,t=1,p=1$" + salt + "$" + digest + "$x"},
		{name: "OldVersion", hashed: "$argon2i$v=16$m=64,t=1,p=1$" + salt + "$" + digest},
		{name: "ZeroMemory", hashed: "$argon2i$v=19$m=0,t=1,p=1$" + salt + "$" + digest},
		{name: "ZeroTime", hashed: "$argon2i$v=19$m=64,t=0,p=1$" + salt + "$" + digest},
		{name: "ZeroThreads", hashed: "$argon2i$v=19$m=64,t=1,p=0$" + salt + "$" + digest},
		{name: "TooManyThreads", hashed: "$argon2i$v=19$m=64,t=1,p=256$" + salt + "$" + digest},
		{name: "NegativeMemory", hashed: "$argon2i$v=19$m=-64,t=1,p=1$" + salt + "$" + digest},
		{name: "HugeMemory", hashed: "$argon2i$v=19$m=4294967295,t=1,p=1$" + salt + "$" + digest},
		{name: "HugeTime", hashed: "$argon2i$v=19$m=64,t=4294967295,p=1$" + salt + "$" + digest},
		{name: "MemoryBelowLanes", hashed: "$argon2i$v=19$m=8,t=1,p=2$" + salt + "$" + digest},
		{name: "MissingParam", hashed: "$argon2i$v=19$m=64,t=1$" + salt + "$" + digest},
		{name: "DuplicateParam", hashed: "$argon2i$v=19$m=64,m=64,t=1$" + salt + "$" + digest},
		{name: "UnknownParam", hashed: "$argon2i$v=19$m=64,t=1,x=1$" + salt + "$" + digest},
		{name: "BadSaltEncoding", hashed: "$argon2i$v=19$m=64,t=1,p=1$!!!!$" + digest},
		{name: "ShortSalt", hashed: "$argon2i$v=19$m=64,t=1,p=1$YWJj$" + digest},
		{name: "EmptyDigest", hashed: "$argon2i$v=19$m=64,t=1,p=1$" + salt + "$"},
		{name: "BadDigestEncoding", hashed: "$argon2i$v=19$m=64,t=1,p=1$" + salt + "$@@@@"},
		{name: "BcryptHash", hashed: "$2y$10$abcdefghijklmnopqrstuu5Q1H0h3PpvYjL0mZL8bA2kL4mM0lD8y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, a.Verify(tt.hashed, "password"))
			})
		})
	}
}

func TestArgon2i_VerifyCostLimits(t *testing.T) {
	countingCore := func(t *testing.T, cfg Argon2Config) (*argon2Core, *int) {
		t.Helper()

		calls := 0
		counting := func(password, salt []byte, time, memory uint32, threads uint8, keyLen uint32) []byte {
			calls++
			return argon2.Key(password, salt, time, memory, threads, keyLen)
		}
		core, err := newArgon2Core("argon2i", counting, cfg, Argon2iDefaults, "")
		require.NoError(t, err)
		calls = 0

		return core, &calls
	}

	t.Run("DerivedFromConfiguredCost", func(t *testing.T) {
		core, _ := countingCore(t, Argon2Config{MemoryCost: 32768, TimeCost: 3, Threads: 1})

		assert.Equal(t, uint32(4*32768), core.maxMemory)
		assert.Equal(t, uint32(12), core.maxTime)
	})

	t.Run("FloorForCheapSettings", func(t *testing.T) {
		core, _ := countingCore(t, fastArgon2())

		assert.Equal(t, uint32(verifyMemoryFloorKiB), core.maxMemory)
		assert.Equal(t, uint32(verifyTimeFloor), core.maxTime)
	})

	t.Run("ExplicitLimitsWin", func(t *testing.T) {
		cfg := fastArgon2()
		cfg.MaxVerifyMemoryCost = 128
		cfg.MaxVerifyTimeCost = 2
		core, _ := countingCore(t, cfg)

		assert.Equal(t, uint32(128), core.maxMemory)
		assert.Equal(t, uint32(2), core.maxTime)
	})

	t.Run("ExpensiveStoredHashNotComputed", func(t *testing.T) {
		core, calls := countingCore(t, fastArgon2())
		salt := "c2FsdHNhbHRzYWx0c2FsdA"
		digest := "zqU/1IN0/AogfP4cmSJI1vc8lpXRW9/S0sYY2i2jHT0"

		for _, hashed := range []string{
			"$argon2i$v=19$m=65536,t=65536,p=1$" + salt + "$" + digest,
			"$argon2i$v=19$m=4194304,t=1,p=1$" + salt + "$" + digest,
			"$argon2i$v=19$m=64,t=11,p=1$" + salt + "$" + digest,
		} {
			assert.False(t, core.verify(hashed, "password"), hashed)
		}
		assert.Zero(t, *calls)
	})

	t.Run("StrongerHashWithinLimitVerifies", func(t *testing.T) {
		core, calls := countingCore(t, fastArgon2())
		stronger, err := NewArgon2i(Argon2Config{MemoryCost: 256, TimeCost: 4, Threads: 1})
		require.NoError(t, err)

		hashed, err := stronger.Hash("password")
		require.NoError(t, err)

		assert.True(t, core.verify(string(hashed), "password"))
		assert.Equal(t, 1, *calls)
	})
}

func TestArgon2i_VerifyPHPHash(t *testing.T) {
	a, err := NewArgon2i(Argon2Config{})
	require.NoError(t, err)

	// Produced by PHP's password_hash("rasmuslerdorf", PASSWORD_ARGON2I).
	php := "$argon2i$v=19$m=1024,t=2,p=2$YzJBSzV4TUhkMzc3d3laeg$zqU/1IN0/AogfP4cmSJI1vc8lpXRW9/S0sYY2i2jHT0"

	assert.True(t, a.Verify(php, "rasmuslerdorf"))
	assert.False(t, a.Verify(php, "rasmuslerdorF"))
	assert.True(t, a.NeedsRehash(php))
}

func TestArgon2i_NeedsRehash(t *testing.T) {
	a := newTestArgon2i(t)

	current, err := a.Hash("password")
	require.NoError(t, err)
	assert.False(t, a.NeedsRehash(string(current)))

	weaker, err := NewArgon2i(Argon2Config{MemoryCost: 32, TimeCost: 1, Threads: 1})
	require.NoError(t, err)
	old, err := weaker.Hash("password")
	require.NoError(t, err)
	assert.True(t, a.NeedsRehash(string(old)))

	assert.False(t, a.NeedsRehash("garbage"))
}

func TestArgon2i_AlgorithmName(t *testing.T) {
	assert.Equal(t, "Argon2 (Crypt)", newTestArgon2i(t).AlgorithmName())
}

func TestArgon2i_ConcurrentUse(t *testing.T) {
	a := newTestArgon2i(t)

	hashed, err := a.Hash("shared")
	require.NoError(t, err)

	errs := make(chan error, 16)
	for i := 0; i < cap(errs); i++ {
		go func() {
			if !a.Verify(string(hashed), "shared") {
				errs <- errors.New("verify failed")
				return
			}
			if _, err := a.Hash("other"); err != nil {
				errs <- err
				return
			}
			errs <- nil
		}()
	}

	for i := 0; i < cap(errs); i++ {
		assert.NoError(t, <-errs)
	}
}

func TestArgon2i_VerifyTiming(t *testing.T) {
	if testing.Short() {
		t.Skip("timing comparison skipped in short mode")
	}

	a, err := NewArgon2i(Argon2Config{MemoryCost: 1024, TimeCost: 2, Threads: 1})
	require.NoError(t, err)

	hashed, err := a.Hash("timing-secret-1")
	require.NoError(t, err)

	median := func(plaintext string) time.Duration {
		samples := make([]time.Duration, 0, 31)
		for i := 0; i < cap(samples); i++ {
			start := time.Now()
			a.Verify(string(hashed), plaintext)
			samples = append(samples, time.Since(start))
		}
		slices.Sort(samples)
		return samples[len(samples)/2]
	}

	// Warm up allocator and caches before measuring.
	median("timing-secret-1")

	match := median("timing-secret-1")
	mismatch := median("timing-secret-2")

	ratio := float64(match) / float64(mismatch)
	assert.InDelta(t, 1.0, ratio, 0.5, "match=%s mismatch=%s", match, mismatch)
}
