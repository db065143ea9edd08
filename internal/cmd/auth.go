package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rackspace/rsmail-cli/internal/api"
	"github.com/rackspace/rsmail-cli/internal/config"
	"github.com/rackspace/rsmail-cli/internal/validation"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"au"},
		Short:   "Manage API key credentials",
		Long:    "Store and inspect the Rackspace API key pair kept in your OS keychain.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

// newAuthLoginCmd creates the auth login command
func newAuthLoginCmd() *cobra.Command {
	var (
		apiKey    string
		secretKey string
		envFile   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save an API key pair",
		Long: strings.TrimSpace(`
Save Rackspace API credentials securely to your OS keychain.

You'll need the user key and secret key from the Control Panel
(My Profile & Settings > API Keys). The customer account number and
mail domain are optional defaults for mailbox commands.

Use the global --profile flag to keep several key pairs side by side.
`),
		Example: strings.TrimSpace(`
  # Save a key pair with a default scope
  rsmail auth login --api-key KEY --secret-key SECRET --account 123456 --domain example.com

  # Save to a named profile
  rsmail --profile staging auth login --api-key KEY --secret-key SECRET

  # Load RSMAIL_* values from a .env file
  rsmail auth login --env-file .env
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			account := config.Account{
				BaseURL:         strings.TrimSuffix(strings.TrimSpace(flags.BaseURL), "/"),
				APIKey:          strings.TrimSpace(apiKey),
				SecretKey:       strings.TrimSpace(secretKey),
				CustomerAccount: strings.TrimSpace(flags.Account),
				Domain:          strings.TrimSpace(flags.Domain),
			}
			profile := flags.Profile

			if envFile != "" {
				values, err := config.ReadEnvValues(envFile)
				if err != nil {
					return fmt.Errorf("invalid --env-file: %w", err)
				}
				config.ApplyKeyringEnv(values)
				account = account.Merge(config.AccountFromValues(values))
				if profile == "" {
					profile = strings.TrimSpace(values[config.EnvProfile])
				}
			}

			if account.APIKey == "" {
				return fmt.Errorf("--api-key is required")
			}
			if account.SecretKey == "" {
				return fmt.Errorf("--secret-key is required")
			}
			if account.BaseURL != "" {
				if err := validation.ValidateBaseURL(account.BaseURL); err != nil {
					return fmt.Errorf("invalid --base-url: %w", err)
				}
			}
			if account.CustomerAccount != "" {
				if err := validation.ValidateAccountNumber(account.CustomerAccount); err != nil {
					return fmt.Errorf("invalid --account: %w", err)
				}
			}
			if account.Domain != "" {
				if err := validation.ValidateDomain(account.Domain); err != nil {
					return fmt.Errorf("invalid --domain: %w", err)
				}
			}

			if err := config.SaveProfile(profile, account); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			if isJSON(cmd) {
				return printJSON(cmd, authPayload(account, profileOrDefault(profile), "keychain"))
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Credentials saved.")
			_, _ = fmt.Fprintf(out, "  API Key: %s\n", maskToken(account.APIKey))
			_, _ = fmt.Fprintf(out, "  Base URL: %s\n", baseURLOrDefault(account.BaseURL))
			if account.CustomerAccount != "" {
				_, _ = fmt.Fprintf(out, "  Account: %s\n", account.CustomerAccount)
			}
			if account.Domain != "" {
				_, _ = fmt.Fprintf(out, "  Domain: %s\n", account.Domain)
			}
			if profile != "" && profile != "default" {
				_, _ = fmt.Fprintf(out, "  Profile: %s\n", profile)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "Rackspace user API key")
	cmd.Flags().StringVar(&secretKey, "secret-key", "", "Rackspace secret key")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load RSMAIL_* values from a .env file")
	flagAlias(cmd.Flags(), "api-key", "key")
	flagAlias(cmd.Flags(), "secret-key", "secret")
	flagAlias(cmd.Flags(), "env-file", "env")

	return cmd
}

// newAuthStatusCmd creates the auth status command
func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the configured credentials",
		Long:  "Display the credentials in use (keys are masked) and where they came from.",
		Example: strings.TrimSpace(`
  rsmail auth status
  rsmail auth status --json
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			usingEnv := flags.Profile == "" && strings.TrimSpace(os.Getenv(config.EnvAPIKey)) != ""

			account, err := config.LoadAccountFor(flags.Profile)
			if err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					if isJSON(cmd) {
						return printJSON(cmd, map[string]any{
							"authenticated": false,
							"message":       "Not authenticated. Run 'rsmail auth login' to configure credentials.",
						})
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not authenticated.")
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Run 'rsmail auth login' to configure credentials.")
					return nil
				}
				return fmt.Errorf("failed to load credentials: %w", err)
			}

			source := "keychain"
			profile := flags.Profile
			if usingEnv {
				source = "env"
			} else if profile == "" {
				if current, err := config.CurrentProfile(); err == nil {
					profile = current
				}
			}

			if isJSON(cmd) {
				return printJSON(cmd, authPayload(account, profile, source))
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Authenticated")
			_, _ = fmt.Fprintf(out, "  API Key: %s\n", maskToken(account.APIKey))
			_, _ = fmt.Fprintf(out, "  Secret Key: %s\n", maskToken(account.SecretKey))
			_, _ = fmt.Fprintf(out, "  Base URL: %s\n", baseURLOrDefault(account.BaseURL))
			if account.CustomerAccount != "" {
				_, _ = fmt.Fprintf(out, "  Account: %s\n", account.CustomerAccount)
			}
			if account.Domain != "" {
				_, _ = fmt.Fprintf(out, "  Domain: %s\n", account.Domain)
			}
			if profile != "" {
				_, _ = fmt.Fprintf(out, "  Profile: %s\n", profile)
			}
			_, _ = fmt.Fprintf(out, "  Source: %s\n", source)
			return nil
		}),
	}
}

// newAuthLogoutCmd creates the auth logout command
func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Remove credentials from keychain",
		Long:    "Delete the stored credentials for the current profile (or --profile) from your OS keychain.",
		Example: "  rsmail auth logout\n  rsmail --profile staging auth logout",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			profile := flags.Profile
			if profile == "" {
				current, err := config.CurrentProfile()
				if err != nil {
					return err
				}
				profile = current
			}

			if _, err := config.LoadProfile(profile); errors.Is(err, config.ErrNotConfigured) {
				printIfNotQuiet(cmd, "No credentials found for profile %s.\n", profile)
				return nil
			}

			if err := config.DeleteProfile(profile); err != nil {
				return fmt.Errorf("failed to remove credentials: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"profile": profile, "removed": true})
			}
			printIfNotQuiet(cmd, "Profile %s removed.\n", profile)
			return nil
		}),
	}
}

func authPayload(account config.Account, profile, source string) map[string]any {
	payload := map[string]any{
		"authenticated": true,
		"api_key":       maskToken(account.APIKey),
		"secret_key":    maskToken(account.SecretKey),
		"base_url":      baseURLOrDefault(account.BaseURL),
		"source":        source,
	}
	if account.CustomerAccount != "" {
		payload["account"] = account.CustomerAccount
	}
	if account.Domain != "" {
		payload["domain"] = account.Domain
	}
	if profile != "" {
		payload["profile"] = profile
	}
	return payload
}

func profileOrDefault(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}

func baseURLOrDefault(baseURL string) string {
	if baseURL == "" {
		return api.DefaultBaseURL
	}
	return baseURL
}

// maskToken masks a key for display, showing only the first and last 4 characters
func maskToken(token string) string {
	if len(token) < 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
