package hash

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultPBKDF2Iterations follows the OWASP guidance for PBKDF2-HMAC-SHA256.
	DefaultPBKDF2Iterations uint32 = 600_000

	pbkdf2ID         = "pbkdf2-sha256"
	pbkdf2SaltLength = 16
	pbkdf2KeyLength  = 32
	maxPBKDF2Iter    = 1 << 24
)

// PBKDF2SHA256 implements Strategy with PBKDF2-HMAC-SHA256.
//
// Encoded form: $pbkdf2-sha256$i=<iterations>,l=<keylen>$<salt>$<digest>
type PBKDF2SHA256 struct {
	iterations uint32
}

// NewPBKDF2SHA256 returns a PBKDF2 hasher; zero iterations selects
// DefaultPBKDF2Iterations.
func NewPBKDF2SHA256(iterations uint32) (*PBKDF2SHA256, error) {
	if iterations == 0 {
		iterations = DefaultPBKDF2Iterations
	}
	if iterations > maxPBKDF2Iter {
		return nil, invalidParam("pbkdf2 iterations must be <= %d, got %d", maxPBKDF2Iter, iterations)
	}

	return &PBKDF2SHA256{iterations: iterations}, nil
}

// Iterations returns the resolved iteration count.
func (p *PBKDF2SHA256) Iterations() uint32 {
	return p.iterations
}

// Hash derives a key with a fresh salt and returns the encoded string.
func (p *PBKDF2SHA256) Hash(str string) ([]byte, error) {
	salt := make([]byte, pbkdf2SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	dk := pbkdf2.Key([]byte(str), salt, int(p.iterations), pbkdf2KeyLength, sha256.New)

	return []byte(fmt.Sprintf(
		"$%s$i=%d,l=%d$%s$%s",
		pbkdf2ID,
		p.iterations,
		pbkdf2KeyLength,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	)), nil
}

// Verify checks str against an encoded PBKDF2 hash.
func (p *PBKDF2SHA256) Verify(hashed, str string) bool {
	iter, salt, digest, err := parsePBKDF2(hashed)
	if err != nil {
		return false
	}

	dk := pbkdf2.Key([]byte(str), salt, int(iter), len(digest), sha256.New)

	return subtle.ConstantTimeCompare(digest, dk) == 1
}

// NeedsRehash reports whether hashed used another iteration count.
func (p *PBKDF2SHA256) NeedsRehash(hashed string) bool {
	iter, _, digest, err := parsePBKDF2(hashed)
	if err != nil {
		return false
	}
	return iter != p.iterations || len(digest) != pbkdf2KeyLength
}

// AlgorithmName implements Strategy.
func (*PBKDF2SHA256) AlgorithmName() string {
	return "PBKDF2-SHA256"
}

func parsePBKDF2(encoded string) (iter uint32, salt, digest []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != pbkdf2ID {
		return 0, nil, nil, fmt.Errorf("%w: not a %s hash", ErrMalformedHash, pbkdf2ID)
	}

	keyLen := -1
	for _, pair := range strings.Split(parts[2], ",") {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok {
			return 0, nil, nil, fmt.Errorf("%w: invalid parameter %q", ErrMalformedHash, pair)
		}
		v, perr := strconv.ParseUint(raw, 10, 32)
		if perr != nil {
			return 0, nil, nil, fmt.Errorf("%w: invalid parameter %q", ErrMalformedHash, pair)
		}
		switch key {
		case "i":
			iter = uint32(v)
		case "l":
			keyLen = int(v)
		default:
			return 0, nil, nil, fmt.Errorf("%w: unsupported parameter %q", ErrMalformedHash, key)
		}
	}
	if iter < 1 || iter > maxPBKDF2Iter {
		return 0, nil, nil, fmt.Errorf("%w: invalid iteration count", ErrMalformedHash)
	}

	salt, err = decodeB64(parts[3])
	if err != nil || len(salt) < minSaltBytes || len(salt) > maxSaltBytes {
		return 0, nil, nil, fmt.Errorf("%w: invalid salt", ErrMalformedHash)
	}

	digest, err = decodeB64(parts[4])
	if err != nil || len(digest) < minDigestSize || len(digest) > maxDigestSize {
		return 0, nil, nil, fmt.Errorf("%w: invalid digest", ErrMalformedHash)
	}
	if keyLen != -1 && keyLen != len(digest) {
		return 0, nil, nil, fmt.Errorf("%w: digest length mismatch", ErrMalformedHash)
	}

	return iter, salt, digest, nil
}
