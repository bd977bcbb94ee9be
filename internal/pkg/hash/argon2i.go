package hash

import "golang.org/x/crypto/argon2"

const argonVersion = argon2.Version

// Argon2iDefaults are the settings used for unset Argon2iConfig fields. They
// follow the golang.org/x/crypto/argon2 guidance for argon2.Key (time=3,
// memory=32 MiB) with the minimum degree of parallelism.
var Argon2iDefaults = Argon2Config{
	MemoryCost: 32 * 1024,
	TimeCost:   3,
	Threads:    1,
	SaltLength: 16,
	KeyLength:  32,
}

// Argon2i implements Strategy with the data-independent Argon2i variant.
//
// The encoded output is the PHC string format also produced by PHP's
// password_hash(PASSWORD_ARGON2I), so hashes written by either side verify on
// the other.
type Argon2i struct {
	core *argon2Core
}

// NewArgon2i resolves cfg against Argon2iDefaults and probes the host.
//
// It returns an error matching ErrUnsupportedAlgorithm when the host cannot
// run Argon2, and one matching ErrInvalidParameter when cfg is out of range.
// Pepper is ignored.
func NewArgon2i(cfg Argon2Config) (*Argon2i, error) {
	cfg.Pepper = ""
	core, err := newArgon2Core("argon2i", argon2.Key, cfg, Argon2iDefaults, "")
	if err != nil {
		return nil, err
	}

	return &Argon2i{core: core}, nil
}

// Config returns the resolved settings.
func (a *Argon2i) Config() Argon2Config {
	return a.core.cfg
}

// Hash returns a $argon2i$ PHC string with a fresh random salt.
func (a *Argon2i) Hash(str string) ([]byte, error) {
	return a.core.hash(str)
}

// Verify recomputes the digest with the parameters embedded in hashed and
// compares it in constant time.
func (a *Argon2i) Verify(hashed, str string) bool {
	return a.core.verify(hashed, str)
}

// NeedsRehash reports whether hashed was produced with other parameters.
func (a *Argon2i) NeedsRehash(hashed string) bool {
	return a.core.needsRehash(hashed)
}

// AlgorithmName implements Strategy.
func (*Argon2i) AlgorithmName() string {
	return "Argon2 (Crypt)"
}
