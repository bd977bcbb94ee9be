package hash

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// HMACSHA256 implements Strategy with a keyed SHA-256 digest.
//
// It exists for credential stores that keep unsalted digests. The output is
// deterministic: hashing the same input twice yields the same string.
type HMACSHA256 struct {
	secret []byte
}

// NewHMACSHA256 creates a new hasher with a secret.
func NewHMACSHA256(secret string) (*HMACSHA256, error) {
	if secret == "" {
		return nil, errors.New("hash: hmac secret is required")
	}
	return &HMACSHA256{secret: []byte(secret)}, nil
}

// Hash returns the HMAC SHA-256 hash of the input string (hex-encoded).
func (s *HMACSHA256) Hash(str string) ([]byte, error) {
	return s.gen(str), nil
}

// Verify checks whether the plaintext string matches the given hash.
func (s *HMACSHA256) Verify(hashed, str string) bool {
	expected := s.gen(str)
	return subtle.ConstantTimeCompare([]byte(hashed), expected) == 1
}

// AlgorithmName implements Strategy.
func (*HMACSHA256) AlgorithmName() string {
	return "HMAC-SHA256"
}

func (s *HMACSHA256) gen(str string) []byte {
	h := hmac.New(sha256.New, s.secret)
	h.Write([]byte(str))
	sum := h.Sum(nil)
	result := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(result, sum)
	return result
}
