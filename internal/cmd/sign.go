package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rackspace/rsmail-cli/internal/api"
)

func newSignCmd() *cobra.Command {
	var timestamp string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print an X-Api-Signature header value",
		Long: strings.TrimSpace(`
Compute the X-Api-Signature header for the configured key pair.

Without --timestamp the current UTC time is used. Pass a fixed
yyyyMMddHHmmss timestamp to compare against another client.
`),
		Example: strings.TrimSpace(`
  rsmail sign
  rsmail sign --timestamp 20240101000000
  curl -H "X-Api-Signature: $(rsmail sign)" https://api.emailsrvr.com/v0/customers/me
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, _, err := getClient()
			if err != nil {
				return err
			}

			if timestamp == "" {
				timestamp = api.FormatTimestamp(client.Now())
			} else if _, err := time.Parse(api.TimestampLayout, timestamp); err != nil || len(timestamp) != len(api.TimestampLayout) {
				return fmt.Errorf("invalid --timestamp %q: must be yyyyMMddHHmmss", timestamp)
			}

			value := client.Signer().HeaderValue(timestamp)
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"header":    api.SignatureHeader,
					"value":     value,
					"timestamp": timestamp,
				})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		}),
	}

	cmd.Flags().StringVar(&timestamp, "timestamp", "", "Signing time as yyyyMMddHHmmss (UTC)")
	flagAlias(cmd.Flags(), "timestamp", "ts")

	return cmd
}
