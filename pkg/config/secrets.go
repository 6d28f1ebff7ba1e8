package config

import (
	"fmt"
	"os"
)

// SecretSource resolves sensitive material such as signing keys. Values
// resolved through it must never be logged.
type SecretSource interface {
	Resolve() ([]byte, error)
}

// EnvSecret resolves a secret from an environment variable.
type EnvSecret string

func (e EnvSecret) Resolve() ([]byte, error) {
	v := os.Getenv(string(e))
	if v == "" {
		return nil, fmt.Errorf("environment variable %s is not set", string(e))
	}
	return []byte(v), nil
}

// FileSecret resolves a secret from a file on disk.
type FileSecret string

func (f FileSecret) Resolve() ([]byte, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("read secret file: %w", err)
	}
	return data, nil
}

// KeySource picks the inline environment variable when set, falling back to
// the configured file path.
func KeySource(inlineEnv, path string) (SecretSource, error) {
	if os.Getenv(inlineEnv) != "" {
		return EnvSecret(inlineEnv), nil
	}
	if path != "" {
		return FileSecret(path), nil
	}
	return nil, fmt.Errorf("neither %s nor a key file path is configured", inlineEnv)
}
