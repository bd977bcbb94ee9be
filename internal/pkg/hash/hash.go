package hash

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedAlgorithm is matched by every UnsupportedAlgorithmError.
	ErrUnsupportedAlgorithm = errors.New("hash: unsupported algorithm")

	// ErrUnknownAlgorithm is returned by the registry for unregistered names.
	ErrUnknownAlgorithm = errors.New("hash: unknown algorithm")

	// ErrInvalidParameter is returned when a cost parameter is out of range.
	ErrInvalidParameter = errors.New("hash: invalid parameter")

	// ErrMalformedHash is returned by Inspect for unparsable stored hashes.
	ErrMalformedHash = errors.New("hash: malformed stored hash")

	// ErrPasswordTooLong is returned by Hash when the plaintext exceeds the
	// strategy's MaxPasswordBytes.
	ErrPasswordTooLong = errors.New("hash: password too long")
)

// Strategy is a password hashing algorithm with resolved cost parameters.
type Strategy interface {
	// Hash returns a newly computed stored hash for str using a fresh salt.
	Hash(str string) ([]byte, error)

	// Verify reports whether str matches the stored hash. Malformed or
	// foreign hashes yield false.
	Verify(hashed, str string) bool

	// AlgorithmName returns a human-readable descriptor for diagnostics.
	AlgorithmName() string
}

// Rehasher is implemented by strategies that can tell whether a stored hash
// was produced with parameters other than their own.
type Rehasher interface {
	NeedsRehash(hashed string) bool
}

// Limiter is implemented by strategies that only accept plaintexts up to a
// fixed length.
type Limiter interface {
	MaxPasswordBytes() int
}

// UnsupportedAlgorithmError reports that the host cannot run an algorithm.
type UnsupportedAlgorithmError struct {
	Algorithm string
	Err       error
}

func (e *UnsupportedAlgorithmError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("hash: algorithm %q is not supported on this host", e.Algorithm)
	}
	return fmt.Sprintf("hash: algorithm %q is not supported on this host: %v", e.Algorithm, e.Err)
}

func (e *UnsupportedAlgorithmError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUnsupportedAlgorithm) hold.
func (e *UnsupportedAlgorithmError) Is(target error) bool {
	return target == ErrUnsupportedAlgorithm
}

func invalidParam(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
