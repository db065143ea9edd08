package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rackspace/rsmail-cli/internal/api"
	"github.com/rackspace/rsmail-cli/internal/config"
	"github.com/rackspace/rsmail-cli/internal/validation"
)

type clientFactory struct {
	timeout      time.Duration
	userAgent    string
	legacyDelete bool
	format       string
	overrides    config.Overrides
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout:      flags.Timeout,
		userAgent:    strings.TrimSpace(os.Getenv("RSMAIL_USER_AGENT")),
		legacyDelete: flags.LegacyDeleteGet,
		format:       flags.Format,
		overrides: config.Overrides{
			Profile: flags.Profile,
			BaseURL: flags.BaseURL,
			Account: flags.Account,
			Domain:  flags.Domain,
		},
	}
}

// client returns a signed client without requiring a mailbox scope.
func (f *clientFactory) client() (*api.Client, config.ClientConfig, error) {
	cfg, err := config.ResolveClientConfig(f.overrides)
	if err != nil {
		return nil, cfg, err
	}
	return f.newClient(cfg), cfg, nil
}

// mailboxes returns the mailbox service for the resolved account and domain.
func (f *clientFactory) mailboxes() (api.MailboxesService, error) {
	client, cfg, err := f.client()
	if err != nil {
		return api.MailboxesService{}, err
	}
	if err := cfg.RequireScope(); err != nil {
		return api.MailboxesService{}, err
	}
	if err := validation.ValidateAccountNumber(cfg.Account); err != nil {
		return api.MailboxesService{}, fmt.Errorf("invalid account: %w", err)
	}
	if err := validation.ValidateDomain(cfg.Domain); err != nil {
		return api.MailboxesService{}, fmt.Errorf("invalid domain: %w", err)
	}
	svc := client.Mailboxes(cfg.Account, cfg.Domain)
	svc.Format = f.format
	return svc, nil
}

func (f *clientFactory) newClient(cfg config.ClientConfig) *api.Client {
	client := api.New(cfg.BaseURL, api.Credentials{APIKey: cfg.APIKey, SecretKey: cfg.SecretKey})
	if f.timeout > 0 {
		client.HTTP.Timeout = f.timeout
	}
	if f.userAgent != "" {
		client.UserAgent = f.userAgent
	}
	client.LegacyDeleteAsGet = f.legacyDelete
	return client
}

func getClient() (*api.Client, config.ClientConfig, error) {
	return newClientFactory().client()
}

func getMailboxes() (api.MailboxesService, error) {
	return newClientFactory().mailboxes()
}
