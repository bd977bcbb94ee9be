package hash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const maxBcryptBytes = 72

// Bcrypt implements Strategy using bcrypt.
//
// Pepper is appended to the plaintext before hashing/verifying. Keep the pepper
// secret and store it in configuration (not in the database). bcrypt only
// reads the first 72 bytes, so Hash rejects longer input, pepper included.
type Bcrypt struct {
	cost   int
	pepper string
}

// NewBcrypt returns a bcrypt-based hasher.
//
// cost controls the hashing work factor; zero selects bcrypt.DefaultCost.
// pepper is optional but recommended as an extra secret.
func NewBcrypt(cost int, pepper string) (*Bcrypt, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, invalidParam("bcrypt cost must be within %d..%d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}

	if len(pepper) >= maxBcryptBytes {
		return nil, invalidParam("bcrypt pepper must be shorter than %d bytes, got %d", maxBcryptBytes, len(pepper))
	}

	if fipsEnabled() {
		return nil, &UnsupportedAlgorithmError{Algorithm: "bcrypt", Err: fmt.Errorf("bcrypt is not an approved algorithm in FIPS 140-3 mode")}
	}

	return &Bcrypt{cost: cost, pepper: pepper}, nil
}

// Cost returns the resolved work factor.
func (h *Bcrypt) Cost() int {
	return h.cost
}

// MaxPasswordBytes implements Limiter.
func (h *Bcrypt) MaxPasswordBytes() int {
	return maxBcryptBytes - len(h.pepper)
}

// Hash hashes plaintext using bcrypt.
func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	if n := h.MaxPasswordBytes(); len(plaintext) > n {
		return nil, fmt.Errorf("%w: bcrypt accepts at most %d bytes, got %d", ErrPasswordTooLong, n, len(plaintext))
	}

	return bcrypt.GenerateFromPassword([]byte(plaintext+h.pepper), h.cost)
}

// Verify returns true when plaintext matches the hashed value.
func (h *Bcrypt) Verify(hashed, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext+h.pepper)) == nil
}

// NeedsRehash reports whether hashed was produced with another cost.
func (h *Bcrypt) NeedsRehash(hashed string) bool {
	cost, err := bcrypt.Cost([]byte(hashed))
	if err != nil {
		return false
	}
	return cost != h.cost
}

// AlgorithmName implements Strategy.
func (*Bcrypt) AlgorithmName() string {
	return "Blowfish (Crypt)"
}
