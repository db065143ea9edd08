package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvFile returns ~/.config/rsmail/.env (or the platform equivalent).
func DefaultEnvFile() string {
	return filepath.Join(ConfigDir(), ".env")
}

// LoadDotEnv loads variables from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ReadEnvValues parses an env file without touching the process environment.
func ReadEnvValues(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}

// ReadEnvFile parses an env file into an account.
func ReadEnvFile(path string) (Account, error) {
	values, err := ReadEnvValues(path)
	if err != nil {
		return Account{}, err
	}
	return AccountFromValues(values), nil
}

// AccountFromValues maps RSMAIL_* keys onto an account.
func AccountFromValues(values map[string]string) Account {
	get := func(key string) string { return strings.TrimSpace(values[key]) }
	return Account{
		BaseURL:         strings.TrimSuffix(get(EnvBaseURL), "/"),
		APIKey:          get(EnvAPIKey),
		SecretKey:       get(EnvSecretKey),
		CustomerAccount: get(EnvAccount),
		Domain:          get(EnvDomain),
	}
}

// ApplyKeyringEnv exports keyring settings from values unless they are
// already set, so a login from an env file opens the same keyring later.
func ApplyKeyringEnv(values map[string]string) {
	for _, key := range []string{envKeyringBackend, envKeyringPassword, envCredentialsDir} {
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if value := strings.TrimSpace(values[key]); value != "" {
			_ = os.Setenv(key, value)
		}
	}
}

// Merge fills empty fields of a from b.
func (a Account) Merge(b Account) Account {
	if a.BaseURL == "" {
		a.BaseURL = b.BaseURL
	}
	if a.APIKey == "" {
		a.APIKey = b.APIKey
	}
	if a.SecretKey == "" {
		a.SecretKey = b.SecretKey
	}
	if a.CustomerAccount == "" {
		a.CustomerAccount = b.CustomerAccount
	}
	if a.Domain == "" {
		a.Domain = b.Domain
	}
	return a
}
