package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rackspace/rsmail-cli/internal/config"
)

func newProfilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"profile", "pr"},
		Short:   "List and switch credential profiles",
	}

	cmd.AddCommand(newProfilesListCmd())
	cmd.AddCommand(newProfilesUseCmd())

	return cmd
}

type profileEntry struct {
	Name    string `json:"name"`
	Current bool   `json:"current"`
}

func newProfilesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved profiles",
		Example: "  rsmail profiles list",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			names, err := config.ListProfiles()
			if err != nil {
				return err
			}
			current, err := config.CurrentProfile()
			if err != nil {
				return err
			}

			entries := make([]profileEntry, 0, len(names))
			for _, name := range names {
				entries = append(entries, profileEntry{Name: name, Current: name == current})
			}

			f := newFormatter(cmd)
			if isJSON(cmd) {
				return f.Output(map[string]any{"items": entries})
			}
			if len(entries) == 0 {
				f.Empty("No profiles saved. Run 'rsmail auth login' to add one.")
				return nil
			}
			f.StartTable([]string{"NAME", "CURRENT"})
			for _, e := range entries {
				marker := ""
				if e.Current {
					marker = "*"
				}
				f.Row(e.Name, marker)
			}
			return f.EndTable()
		}),
	}
}

func newProfilesUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <name>",
		Aliases: []string{"switch"},
		Short:   "Make a saved profile current",
		Example: "  rsmail profiles use staging",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" {
				return fmt.Errorf("profile name is required")
			}
			if _, err := config.LoadProfile(name); err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					return fmt.Errorf("profile %q not found; run 'rsmail profiles list'", name)
				}
				return err
			}
			if err := config.SetCurrentProfile(name); err != nil {
				return fmt.Errorf("failed to switch profile: %w", err)
			}
			if isJSON(cmd) {
				return printJSON(cmd, profileEntry{Name: name, Current: true})
			}
			printIfNotQuiet(cmd, "Switched to profile %s\n", name)
			return nil
		}),
	}
}
