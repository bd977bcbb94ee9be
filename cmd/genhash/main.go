// Command genhash hashes a password, or verifies one against a stored hash,
// with the same strategies and configuration as the service.
//
// Usage:
//
//	genhash [-config path] [-algo name] [-verify hash]
//
// The password is read without echo from a terminal, or from stdin otherwise.
// With -verify the exit status is 0 on match and 1 on mismatch.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shandysiswandi/gocrypt/internal/app"
	"github.com/shandysiswandi/gocrypt/internal/pkg/config"
	"github.com/shandysiswandi/gocrypt/internal/pkg/hash"
	"golang.org/x/term"
)

const (
	exitOK       = 0
	exitMismatch = 1
	exitError    = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("genhash", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the service config file")
	algo := fs.String("algo", "", "algorithm name, overrides hash.algorithm")
	verify := fs.String("verify", "", "stored hash to verify the password against")
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "genhash:", err)
		return exitError
	}
	defer cfg.Close()

	name := *algo
	if name == "" {
		name = cfg.GetString("hash.algorithm")
	}
	if name == "" {
		name = hash.NameArgon2i
	}

	strategy, err := newStrategy(cfg, name)
	if err != nil {
		fmt.Fprintln(stderr, "genhash:", err)
		return exitError
	}

	password, err := readPassword(stdin, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "genhash:", err)
		return exitError
	}

	if *verify != "" {
		if !strategy.Verify(*verify, password) {
			fmt.Fprintln(stdout, "invalid")
			return exitMismatch
		}
		fmt.Fprintln(stdout, "valid")
		return exitOK
	}

	hashed, err := strategy.Hash(password)
	if err != nil {
		fmt.Fprintln(stderr, "genhash:", err)
		return exitError
	}
	fmt.Fprintln(stdout, string(hashed))

	return exitOK
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.NewViperFromBytes("yaml", nil)
	}
	return config.NewViper(path)
}

func newStrategy(cfg config.Config, name string) (hash.Strategy, error) {
	params, err := app.HashParams(cfg, name)
	if err != nil {
		return nil, err
	}

	registry := hash.DefaultRegistry()
	if err := registry.Probe(name); err != nil {
		return nil, err
	}

	return registry.New(name, params)
}

func readPassword(stdin *os.File, prompt io.Writer) (string, error) {
	fd := int(stdin.Fd()) //nolint:gosec // file descriptors fit in int
	if term.IsTerminal(fd) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}

	return line, nil
}
