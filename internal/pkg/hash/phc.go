package hash

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Bounds applied to parameters read back from stored hashes. They keep a
// hostile or corrupt hash from panicking the backend or allocating without
// limit.
const (
	maxMemoryKiB  uint32 = 4 * 1024 * 1024
	maxTimeCost   uint32 = 1 << 16
	minSaltBytes         = 8
	maxSaltBytes         = 1024
	minDigestSize        = 4
	maxDigestSize        = 1024
)

// argon2Hash is a decoded PHC string:
//
//	$<variant>$v=19$m=<KiB>,t=<time>,p=<threads>$<salt>$<digest>
type argon2Hash struct {
	variant string
	version int
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	digest  []byte
}

func (h *argon2Hash) String() string {
	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		h.variant,
		h.version,
		h.memory,
		h.time,
		h.threads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.digest),
	)
}

func parseArgon2(encoded, variant string) (*argon2Hash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("%w: expected 6 PHC segments", ErrMalformedHash)
	}

	if parts[1] != variant {
		return nil, fmt.Errorf("%w: algorithm %q", ErrMalformedHash, parts[1])
	}

	version, ok := strings.CutPrefix(parts[2], "v=")
	if !ok {
		return nil, fmt.Errorf("%w: missing version", ErrMalformedHash)
	}
	v, err := strconv.Atoi(version)
	if err != nil || v != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, version)
	}

	h := &argon2Hash{variant: variant, version: v}
	if err := h.parseParams(parts[3]); err != nil {
		return nil, err
	}

	h.salt, err = decodeB64(parts[4])
	if err != nil || len(h.salt) < minSaltBytes || len(h.salt) > maxSaltBytes {
		return nil, fmt.Errorf("%w: invalid salt", ErrMalformedHash)
	}

	h.digest, err = decodeB64(parts[5])
	if err != nil || len(h.digest) < minDigestSize || len(h.digest) > maxDigestSize {
		return nil, fmt.Errorf("%w: invalid digest", ErrMalformedHash)
	}

	return h, nil
}

func (h *argon2Hash) parseParams(part string) error {
	pairs := strings.Split(part, ",")
	if len(pairs) != 3 {
		return fmt.Errorf("%w: expected m, t and p parameters", ErrMalformedHash)
	}

	seen := make(map[string]bool, 3)
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || seen[key] {
			return fmt.Errorf("%w: invalid parameter %q", ErrMalformedHash, pair)
		}
		seen[key] = true

		switch key {
		case "m":
			v, err := strconv.ParseUint(raw, 10, 32)
			if err != nil || v < 1 || uint32(v) > maxMemoryKiB {
				return fmt.Errorf("%w: invalid memory parameter", ErrMalformedHash)
			}
			h.memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(raw, 10, 32)
			if err != nil || v < 1 || uint32(v) > maxTimeCost {
				return fmt.Errorf("%w: invalid time parameter", ErrMalformedHash)
			}
			h.time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(raw, 10, 8)
			if err != nil || v < 1 {
				return fmt.Errorf("%w: invalid parallelism parameter", ErrMalformedHash)
			}
			h.threads = uint8(v)
		default:
			return fmt.Errorf("%w: unsupported parameter %q", ErrMalformedHash, key)
		}
	}

	if uint64(h.memory) < 8*uint64(h.threads) {
		return fmt.Errorf("%w: memory below 8 KiB per lane", ErrMalformedHash)
	}

	return nil
}

// decodeB64 accepts unpadded standard base64 (PHC) and tolerates padding.
func decodeB64(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
