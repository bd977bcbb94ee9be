package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// ErrNotPositive is returned by OptionalPositive for explicit values below 1.
var ErrNotPositive = errors.New("config: value must be positive")

// Config defines the methods the application uses to read configuration.
//
// Getters return the zero value when the key is absent or cannot be
// converted. Use IsSet to tell an absent key from an explicit zero.
type Config interface {
	io.Closer

	// IsSet reports whether key has a value in any source (file or env).
	IsSet(key string) bool

	// GetBool retrieves the value associated with key as a bool.
	GetBool(key string) bool

	// GetString retrieves the value associated with key as a string.
	GetString(key string) string

	// GetInt retrieves the value associated with key as an int.
	GetInt(key string) int

	// GetInt64 retrieves the value associated with key as an int64.
	GetInt64(key string) int64

	// GetFloat64 retrieves the value associated with key as a float64.
	GetFloat64(key string) float64

	// GetUint32 retrieves the value associated with key as a uint32.
	GetUint32(key string) uint32

	// GetSecond retrieves the value associated with key as seconds.
	GetSecond(key string) time.Duration

	// GetArray retrieves the value associated with key as a slice of strings.
	// Configuration value is stored with format <element1>,<element2>,...
	GetArray(key string) []string
}

// OptionalPositive reads an optional positive integer.
//
// It returns 0 when key is absent, the value when it is within 1..MaxUint32,
// and an error matching ErrNotPositive when the key is present but zero or
// negative.
func OptionalPositive(c Config, key string) (uint32, error) {
	if !c.IsSet(key) {
		return 0, nil
	}

	v := c.GetInt64(key)
	if v < 1 {
		return 0, fmt.Errorf("%w: %s=%d", ErrNotPositive, key, v)
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("config: %s=%d overflows uint32", key, v)
	}

	return uint32(v), nil
}
