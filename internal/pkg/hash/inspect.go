package hash

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Info describes a stored hash without verifying it.
type Info struct {
	// Algorithm is the registry name that produced the hash.
	Algorithm string
	// Params holds the embedded cost parameters, keyed by their encoded name
	// (m, t, p for Argon2; cost for bcrypt; i for PBKDF2).
	Params map[string]int
	// SaltLength and KeyLength are in bytes; zero when not applicable.
	SaltLength int
	KeyLength  int
}

// Identify returns the registry name of the algorithm that produced hashed,
// based on its prefix only.
func Identify(hashed string) (string, bool) {
	switch {
	case strings.HasPrefix(hashed, "$argon2id$"):
		return NameArgon2id, true
	case strings.HasPrefix(hashed, "$argon2i$"):
		return NameArgon2i, true
	case strings.HasPrefix(hashed, "$2a$"),
		strings.HasPrefix(hashed, "$2b$"),
		strings.HasPrefix(hashed, "$2y$"):
		return NameBcrypt, true
	case strings.HasPrefix(hashed, "$"+pbkdf2ID+"$"):
		return NamePBKDF2SHA256, true
	case isHexDigest(hashed):
		return NameHMACSHA256, true
	default:
		return "", false
	}
}

// Inspect parses the algorithm and cost parameters embedded in hashed.
// It returns an error matching ErrMalformedHash for unrecognised input.
func Inspect(hashed string) (Info, error) {
	name, ok := Identify(hashed)
	if !ok {
		return Info{}, fmt.Errorf("%w: unrecognised format", ErrMalformedHash)
	}

	switch name {
	case NameArgon2i, NameArgon2id:
		h, err := parseArgon2(hashed, name)
		if err != nil {
			return Info{}, err
		}
		return Info{
			Algorithm:  name,
			Params:     map[string]int{"v": h.version, "m": int(h.memory), "t": int(h.time), "p": int(h.threads)},
			SaltLength: len(h.salt),
			KeyLength:  len(h.digest),
		}, nil

	case NameBcrypt:
		cost, err := bcrypt.Cost([]byte(hashed))
		if err != nil {
			return Info{}, fmt.Errorf("%w: %v", ErrMalformedHash, err)
		}
		return Info{Algorithm: name, Params: map[string]int{"cost": cost}, SaltLength: 16, KeyLength: 23}, nil

	case NamePBKDF2SHA256:
		iter, salt, digest, err := parsePBKDF2(hashed)
		if err != nil {
			return Info{}, err
		}
		return Info{Algorithm: name, Params: map[string]int{"i": int(iter)}, SaltLength: len(salt), KeyLength: len(digest)}, nil

	default:
		return Info{Algorithm: name, Params: map[string]int{}, KeyLength: len(hashed) / 2}, nil
	}
}

func isHexDigest(s string) bool {
	if len(s) != 64 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
