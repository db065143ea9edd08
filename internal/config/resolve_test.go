package config

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveClientConfig(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))
	require.NoError(t, SaveProfile("default", testAccount))

	cfg, err := ResolveClientConfig(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, ClientConfig{
		BaseURL:   testAccount.BaseURL,
		APIKey:    "abc123",
		SecretKey: "xyz789",
		Account:   "123",
		Domain:    "example.com",
	}, cfg)
	require.NoError(t, cfg.RequireScope())

	cfg, err = ResolveClientConfig(Overrides{BaseURL: "https://mock.example.test/v0/", Account: "999", Domain: "example.org"})
	require.NoError(t, err)
	assert.Equal(t, "https://mock.example.test/v0", cfg.BaseURL)
	assert.Equal(t, "999", cfg.Account)
	assert.Equal(t, "example.org", cfg.Domain)
}

func TestResolveClientConfigNotConfigured(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))

	_, err := ResolveClientConfig(Overrides{})
	assert.True(t, errors.Is(err, ErrNotConfigured))

	require.NoError(t, SaveProfile("default", Account{APIKey: "only-key"}))
	_, err = ResolveClientConfig(Overrides{})
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestRequireScope(t *testing.T) {
	err := ClientConfig{}.RequireScope()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account")
	assert.Contains(t, err.Error(), "domain")

	err = ClientConfig{Account: "123"}.RequireScope()
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "account (")
}

func TestResolveClientConfigProfileOverride(t *testing.T) {
	clearEnv(t)
	withMockKeyring(t, keyring.NewArrayKeyring(nil))
	require.NoError(t, SaveProfile("staging", Account{APIKey: "stage-key", SecretKey: "stage-secret", CustomerAccount: "456", Domain: "stage.example.com"}))
	require.NoError(t, SaveProfile("default", testAccount))

	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvSecretKey, "env-secret")

	cfg, err := ResolveClientConfig(Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)

	cfg, err = ResolveClientConfig(Overrides{Profile: "staging"})
	require.NoError(t, err)
	assert.Equal(t, "stage-key", cfg.APIKey)
	assert.Equal(t, "456", cfg.Account)

	_, err = ResolveClientConfig(Overrides{Profile: "missing"})
	assert.True(t, errors.Is(err, ErrNotConfigured))
}
