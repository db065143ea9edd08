package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rackspace/rsmail-cli/internal/update"
)

// version is set at build time via ldflags
var version = "dev"

// newUpdateChecker is swapped in tests.
var newUpdateChecker = update.NewChecker

func newVersionCmd() *cobra.Command {
	var noCheck bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			var result *update.CheckResult
			if !noCheck && !parseBoolEnv("RSMAIL_NO_UPDATE_CHECK") {
				result = newUpdateChecker().Check(cmd.Context(), version)
			}

			if isJSON(cmd) {
				payload := map[string]any{"version": version}
				if result != nil {
					payload["update"] = result
				}
				return printJSON(cmd, payload)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "rsmail version %s\n", version)
			if notice := result.Notice(); notice != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "\n%s\n", notice) //nolint:errcheck
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&noCheck, "no-check", os.Getenv("CI") != "", "Skip the release check")
	return cmd
}
