package config

import (
	"fmt"
	"strings"
)

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	BaseURL   string
	APIKey    string
	SecretKey string
	Account   string
	Domain    string
}

// Overrides are per-invocation values taken from command-line flags.
type Overrides struct {
	Profile string
	BaseURL string
	Account string
	Domain  string
}

// LoadAccountFor loads the named profile, or falls back to LoadAccount when
// profile is blank.
func LoadAccountFor(profile string) (Account, error) {
	if profile = strings.TrimSpace(profile); profile != "" {
		return LoadProfile(profile)
	}
	return LoadAccount()
}

// ResolveClientConfig loads credentials and applies flag overrides. An
// explicit profile wins over RSMAIL_* credentials.
func ResolveClientConfig(o Overrides) (ClientConfig, error) {
	account, err := LoadAccountFor(o.Profile)
	if err != nil {
		return ClientConfig{}, err
	}
	if account.APIKey == "" || account.SecretKey == "" {
		return ClientConfig{}, ErrNotConfigured
	}

	cfg := ClientConfig{
		BaseURL:   account.BaseURL,
		APIKey:    account.APIKey,
		SecretKey: account.SecretKey,
		Account:   account.CustomerAccount,
		Domain:    account.Domain,
	}
	if v := strings.TrimSpace(o.BaseURL); v != "" {
		cfg.BaseURL = strings.TrimSuffix(v, "/")
	}
	if v := strings.TrimSpace(o.Account); v != "" {
		cfg.Account = v
	}
	if v := strings.TrimSpace(o.Domain); v != "" {
		cfg.Domain = v
	}
	return cfg, nil
}

// RequireScope reports a usage error when the mailbox scope is incomplete.
func (c ClientConfig) RequireScope() error {
	var missing []string
	if c.Account == "" {
		missing = append(missing, "account (--account or "+EnvAccount+")")
	}
	if c.Domain == "" {
		missing = append(missing, "domain (--domain or "+EnvDomain+")")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, " and "))
	}
	return nil
}
