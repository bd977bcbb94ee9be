package hash

import "golang.org/x/crypto/argon2"

// Argon2idDefaults are the settings used for unset Argon2id fields.
var Argon2idDefaults = Argon2Config{
	MemoryCost: 32 * 1024, // e.g. 32MB, 64MB, 128MB
	TimeCost:   3,
	Threads:    2,
	SaltLength: 16,
	KeyLength:  32,
}

// Argon2id implements Strategy using Argon2id.
//
// Pepper is appended to the plaintext before hashing/verifying. Keep the pepper
// secret and store it in configuration (not in the database).
type Argon2id struct {
	core *argon2Core
}

// NewArgon2id returns an Argon2id hasher; zero fields take Argon2idDefaults.
func NewArgon2id(cfg Argon2Config) (*Argon2id, error) {
	core, err := newArgon2Core("argon2id", argon2.IDKey, cfg, Argon2idDefaults, cfg.Pepper)
	if err != nil {
		return nil, err
	}

	return &Argon2id{core: core}, nil
}

// Config returns the resolved settings.
func (a *Argon2id) Config() Argon2Config {
	return a.core.cfg
}

// Hash takes a plaintext string and returns its hashed representation.
func (a *Argon2id) Hash(str string) ([]byte, error) {
	return a.core.hash(str)
}

// Verify checks if the given plaintext string matches the hashed value.
func (a *Argon2id) Verify(hashed, str string) bool {
	return a.core.verify(hashed, str)
}

// NeedsRehash reports whether hashed was produced with other parameters.
func (a *Argon2id) NeedsRehash(hashed string) bool {
	return a.core.needsRehash(hashed)
}

// AlgorithmName implements Strategy.
func (*Argon2id) AlgorithmName() string {
	return "Argon2id (Crypt)"
}
