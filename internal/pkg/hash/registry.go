package hash

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Registry names of the built-in strategies.
const (
	NameArgon2i      = "argon2i"
	NameArgon2id     = "argon2id"
	NameBcrypt       = "bcrypt"
	NamePBKDF2SHA256 = "pbkdf2-sha256"
	NameHMACSHA256   = "hmac-sha256"
)

// Params carries the optional settings a factory may read. Zero values mean
// "unset"; each factory documents which fields it honours.
type Params struct {
	MemoryCost uint32 // KiB, Argon2
	TimeCost   uint32 // Argon2
	Threads    uint32 // Argon2
	Cost       int    // bcrypt
	Iterations uint32 // PBKDF2
	Pepper     string // Argon2id, bcrypt
	Secret     string // HMAC

	// MaxVerifyMemoryCost and MaxVerifyTimeCost cap stored Argon2 hashes
	// accepted by Verify. Zero derives the cap from the costs.
	MaxVerifyMemoryCost uint32
	MaxVerifyTimeCost   uint32
}

// Algorithm describes one registrable strategy.
type Algorithm struct {
	// Name is the configuration key, e.g. "argon2i".
	Name string
	// Descriptor is the human-readable name reported to operators.
	Descriptor string
	// New builds a strategy from params.
	New func(p Params) (Strategy, error)
	// Probe reports whether the host can run the algorithm at all,
	// independently of configuration. Nil means always supported.
	Probe func() error
}

// Registry maps configuration names to strategy factories.
type Registry struct {
	mu   sync.RWMutex
	algs map[string]Algorithm
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{algs: make(map[string]Algorithm)}
}

// DefaultRegistry returns a registry with every built-in strategy.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, alg := range builtins() {
		//nolint:errcheck // names are unique
		r.Register(alg)
	}
	return r
}

// Register adds alg. Registering a name twice is an error.
func (r *Registry) Register(alg Algorithm) error {
	if alg.Name == "" || alg.New == nil {
		return errors.New("hash: algorithm needs a name and a factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.algs[alg.Name]; exists {
		return fmt.Errorf("hash: algorithm %q already registered", alg.Name)
	}
	r.algs[alg.Name] = alg

	return nil
}

// New builds the strategy registered under name.
func (r *Registry) New(name string, p Params) (Strategy, error) {
	alg, err := r.lookup(name)
	if err != nil {
		return nil, err
	}

	s, err := alg.New(p)
	if err != nil {
		return nil, fmt.Errorf("hash: build %s: %w", name, err)
	}

	return s, nil
}

// Probe runs the capability check of name.
func (r *Registry) Probe(name string) error {
	alg, err := r.lookup(name)
	if err != nil {
		return err
	}
	if alg.Probe == nil {
		return nil
	}
	if err := alg.Probe(); err != nil {
		if errors.Is(err, ErrUnsupportedAlgorithm) {
			return err
		}
		return &UnsupportedAlgorithmError{Algorithm: name, Err: err}
	}
	return nil
}

// Descriptor returns the human-readable name of name, or "" if unknown.
func (r *Registry) Descriptor(name string) string {
	alg, err := r.lookup(name)
	if err != nil {
		return ""
	}
	return alg.Descriptor
}

// Names returns the registered names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := lo.Keys(r.algs)
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

func (r *Registry) lookup(name string) (Algorithm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	alg, ok := r.algs[name]
	if !ok {
		return Algorithm{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return alg, nil
}

func builtins() []Algorithm {
	noFIPS := func(name string) func() error {
		return func() error {
			if fipsEnabled() {
				return fmt.Errorf("%s is not an approved algorithm in FIPS 140-3 mode", name)
			}
			return nil
		}
	}

	return []Algorithm{
		{
			Name:       NameArgon2i,
			Descriptor: (*Argon2i)(nil).AlgorithmName(),
			New: func(p Params) (Strategy, error) {
				return NewArgon2i(Argon2Config{
					MemoryCost: p.MemoryCost, TimeCost: p.TimeCost, Threads: p.Threads,
					MaxVerifyMemoryCost: p.MaxVerifyMemoryCost, MaxVerifyTimeCost: p.MaxVerifyTimeCost,
				})
			},
			Probe: func() error {
				_, err := NewArgon2i(Argon2Config{MemoryCost: 8, TimeCost: 1, Threads: 1})
				return err
			},
		},
		{
			Name:       NameArgon2id,
			Descriptor: (*Argon2id)(nil).AlgorithmName(),
			New: func(p Params) (Strategy, error) {
				return NewArgon2id(Argon2Config{
					MemoryCost: p.MemoryCost, TimeCost: p.TimeCost, Threads: p.Threads, Pepper: p.Pepper,
					MaxVerifyMemoryCost: p.MaxVerifyMemoryCost, MaxVerifyTimeCost: p.MaxVerifyTimeCost,
				})
			},
			Probe: func() error {
				_, err := NewArgon2id(Argon2Config{MemoryCost: 8, TimeCost: 1, Threads: 1})
				return err
			},
		},
		{
			Name:       NameBcrypt,
			Descriptor: (*Bcrypt)(nil).AlgorithmName(),
			New: func(p Params) (Strategy, error) {
				return NewBcrypt(p.Cost, p.Pepper)
			},
			Probe: noFIPS(NameBcrypt),
		},
		{
			Name:       NamePBKDF2SHA256,
			Descriptor: (*PBKDF2SHA256)(nil).AlgorithmName(),
			New: func(p Params) (Strategy, error) {
				return NewPBKDF2SHA256(p.Iterations)
			},
		},
		{
			Name:       NameHMACSHA256,
			Descriptor: (*HMACSHA256)(nil).AlgorithmName(),
			New: func(p Params) (Strategy, error) {
				return NewHMACSHA256(p.Secret)
			},
		},
	}
}
