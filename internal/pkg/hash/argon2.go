package hash

import (
	"crypto/fips140"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
)

// Argon2Config holds Argon2 cost settings. A zero field means "use the
// variant default".
type Argon2Config struct {
	// MemoryCost is the memory size in KiB.
	MemoryCost uint32
	// TimeCost is the number of passes over the memory.
	TimeCost uint32
	// Threads is the degree of parallelism (1..255).
	Threads uint32
	// SaltLength is the random salt size in bytes.
	SaltLength uint32
	// KeyLength is the digest size in bytes.
	KeyLength uint32
	// Pepper is appended to the plaintext. Only honoured by Argon2id.
	Pepper string
	// MaxVerifyMemoryCost and MaxVerifyTimeCost cap the parameters a stored
	// hash may carry for Verify to compute it. Zero derives the cap from the
	// resolved costs, see verifyLimits.
	MaxVerifyMemoryCost uint32
	MaxVerifyTimeCost   uint32
}

// Verify never computes a stored hash that costs more than
// verifyCostFactor times the configured cost, or the floor, whichever is
// larger. Stored hashes are caller input, so these caps are what bound the
// memory and time one request can take.
const (
	verifyCostFactor     = 4
	verifyMemoryFloorKiB = 64 * 1024
	verifyTimeFloor      = 10
)

type keyFunc func(password, salt []byte, time, memory uint32, threads uint8, keyLen uint32) []byte

// fipsEnabled is swapped in tests.
var fipsEnabled = fips140.Enabled

func (c Argon2Config) withDefaults(def Argon2Config) Argon2Config {
	if c.MemoryCost == 0 {
		c.MemoryCost = def.MemoryCost
	}
	if c.TimeCost == 0 {
		c.TimeCost = def.TimeCost
	}
	if c.Threads == 0 {
		c.Threads = def.Threads
	}
	if c.SaltLength == 0 {
		c.SaltLength = def.SaltLength
	}
	if c.KeyLength == 0 {
		c.KeyLength = def.KeyLength
	}
	return c
}

func (c Argon2Config) validate() error {
	if c.Threads > math.MaxUint8 {
		return invalidParam("threads must be <= %d, got %d", math.MaxUint8, c.Threads)
	}
	if uint64(c.MemoryCost) < 8*uint64(c.Threads) {
		return invalidParam("memory cost must be >= 8 KiB per thread, got %d KiB for %d threads", c.MemoryCost, c.Threads)
	}
	if c.MemoryCost > maxMemoryKiB {
		return invalidParam("memory cost must be <= %d KiB, got %d", maxMemoryKiB, c.MemoryCost)
	}
	if c.TimeCost > maxTimeCost {
		return invalidParam("time cost must be <= %d, got %d", maxTimeCost, c.TimeCost)
	}
	if c.SaltLength < minSaltBytes || c.SaltLength > maxSaltBytes {
		return invalidParam("salt length must be within %d..%d bytes, got %d", minSaltBytes, maxSaltBytes, c.SaltLength)
	}
	if c.KeyLength < minDigestSize || c.KeyLength > maxDigestSize {
		return invalidParam("key length must be within %d..%d bytes, got %d", minDigestSize, maxDigestSize, c.KeyLength)
	}
	if m := c.MaxVerifyMemoryCost; m != 0 && (m < c.MemoryCost || m > maxMemoryKiB) {
		return invalidParam("max verify memory cost must be within %d..%d KiB, got %d", c.MemoryCost, maxMemoryKiB, m)
	}
	if t := c.MaxVerifyTimeCost; t != 0 && (t < c.TimeCost || t > maxTimeCost) {
		return invalidParam("max verify time cost must be within %d..%d, got %d", c.TimeCost, maxTimeCost, t)
	}
	return nil
}

// verifyLimits returns the largest memory (KiB) and time cost Verify will
// compute. Explicit caps win; otherwise the cap scales with the configured
// cost so hashes made with stronger settings in the past still verify.
func (c Argon2Config) verifyLimits() (memory, time uint32) {
	memory, time = c.MaxVerifyMemoryCost, c.MaxVerifyTimeCost
	if memory == 0 {
		memory = uint32(min(max(verifyCostFactor*uint64(c.MemoryCost), verifyMemoryFloorKiB), uint64(maxMemoryKiB)))
	}
	if time == 0 {
		time = uint32(min(max(verifyCostFactor*uint64(c.TimeCost), verifyTimeFloor), uint64(maxTimeCost)))
	}
	return memory, time
}

// probeArgon2 checks that the host can run the primitive: FIPS 140-3 mode
// forbids Argon2, and a tiny self-test must behave deterministically.
func probeArgon2(key keyFunc) (err error) {
	if fipsEnabled() {
		return errors.New("argon2 is not an approved algorithm in FIPS 140-3 mode")
	}

	defer func() {
		if rvr := recover(); rvr != nil {
			err = fmt.Errorf("self-test panicked: %v", rvr)
		}
	}()

	salt := []byte("gocrypt-selftest")
	a := key([]byte("password"), salt, 1, 8, 1, 32)
	b := key([]byte("password"), salt, 1, 8, 1, 32)
	c := key([]byte("passwore"), salt, 1, 8, 1, 32)

	if len(a) != 32 || subtle.ConstantTimeCompare(a, b) != 1 || subtle.ConstantTimeCompare(a, c) == 1 {
		return errors.New("self-test produced inconsistent output")
	}

	return nil
}

// argon2Core carries the behaviour shared by the Argon2 variants.
type argon2Core struct {
	variant   string
	key       keyFunc
	cfg       Argon2Config
	pepper    string
	maxMemory uint32
	maxTime   uint32
}

func newArgon2Core(variant string, key keyFunc, cfg, def Argon2Config, pepper string) (*argon2Core, error) {
	cfg = cfg.withDefaults(def)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := probeArgon2(key); err != nil {
		return nil, &UnsupportedAlgorithmError{Algorithm: variant, Err: err}
	}

	core := &argon2Core{variant: variant, key: key, cfg: cfg, pepper: pepper}
	core.maxMemory, core.maxTime = cfg.verifyLimits()

	return core, nil
}

func (c *argon2Core) hash(str string) ([]byte, error) {
	salt := make([]byte, c.cfg.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	h := &argon2Hash{
		variant: c.variant,
		version: argonVersion,
		memory:  c.cfg.MemoryCost,
		time:    c.cfg.TimeCost,
		threads: uint8(c.cfg.Threads),
		salt:    salt,
	}
	h.digest = c.key([]byte(str+c.pepper), salt, h.time, h.memory, h.threads, c.cfg.KeyLength)

	return []byte(h.String()), nil
}

func (c *argon2Core) verify(hashed, str string) bool {
	h, err := parseArgon2(hashed, c.variant)
	if err != nil || h.memory > c.maxMemory || h.time > c.maxTime {
		return false
	}

	computed := c.key([]byte(str+c.pepper), h.salt, h.time, h.memory, h.threads, uint32(len(h.digest)))

	return subtle.ConstantTimeCompare(h.digest, computed) == 1
}

func (c *argon2Core) needsRehash(hashed string) bool {
	h, err := parseArgon2(hashed, c.variant)
	if err != nil {
		return false
	}

	return h.memory != c.cfg.MemoryCost ||
		h.time != c.cfg.TimeCost ||
		uint32(h.threads) != c.cfg.Threads ||
		uint32(len(h.salt)) != c.cfg.SaltLength ||
		uint32(len(h.digest)) != c.cfg.KeyLength
}
