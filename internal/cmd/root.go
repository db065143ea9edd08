package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rackspace/rsmail-cli/internal/api"
	"github.com/rackspace/rsmail-cli/internal/config"
	"github.com/rackspace/rsmail-cli/internal/debug"
	"github.com/rackspace/rsmail-cli/internal/dryrun"
	"github.com/rackspace/rsmail-cli/internal/iocontext"
	"github.com/rackspace/rsmail-cli/internal/outfmt"
	"github.com/rackspace/rsmail-cli/internal/validation"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Output          string
	JSON            bool
	Query           string
	Template        string
	Compact         bool
	Debug           bool
	DryRun          bool
	Quiet           bool
	Silent          bool
	AllowPrivate    bool
	Timeout         time.Duration
	Format          string
	Profile         string
	BaseURL         string
	Account         string
	Domain          string
	LegacyDeleteGet bool
	Lenient         bool
}

// flags holds the global command flags. This is package-level mutable state
// that MUST be reset at the start of every Execute() call. Tests depend on
// this reset to get clean state; any code that reads flags outside of a
// command's RunE is reading stale data from the previous Execute() call.
var flags = defaultFlags()

func defaultFlags() rootFlags {
	return rootFlags{
		Output:          defaultOutput(),
		AllowPrivate:    parseBoolEnv("RSMAIL_ALLOW_PRIVATE"),
		Timeout:         api.DefaultTimeout,
		Format:          api.DefaultFormat,
		LegacyDeleteGet: parseBoolEnv("RSMAIL_LEGACY_DELETE_GET"),
	}
}

func defaultOutput() string {
	value := strings.TrimSpace(os.Getenv("RSMAIL_OUTPUT"))
	if value != "" {
		return normalizeOutputFormat(value)
	}
	return "text"
}

func parseBoolEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func normalizeOutputFormat(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "ndjson" {
		return "jsonl"
	}
	return value
}

// normalizeAccept expands the json/xml shorthands accepted by --format.
func normalizeAccept(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "json":
		return api.DefaultFormat
	case "xml":
		return "application/xml"
	default:
		return strings.TrimSpace(value)
	}
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	// Values already exported always win over the env file.
	_ = config.LoadDotEnv(config.DefaultEnvFile())

	// Reset flags to defaults for each execution.
	flags = defaultFlags()

	root := &cobra.Command{
		Use:                "rsmail",
		Short:              "CLI for the Rackspace Email mailbox API",
		Long:               "Manage Rackspace Email mailboxes through the signed REST API.",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableSuggestions: true, // We provide our own did-you-mean via enhanceUnknownError
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			flags.Output = normalizeOutputFormat(flags.Output)
			if flags.JSON {
				if flagOrAliasChanged(cmd, "output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			if (flags.Query != "" || flags.Template != "") && flags.Output == "text" {
				if flagOrAliasChanged(cmd, "output") {
					return fmt.Errorf("--query/--template require --output json or jsonl (or --json)")
				}
				flags.Output = "json"
			}

			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)

			if flags.Timeout < 0 {
				return fmt.Errorf("--timeout must be >= 0")
			}
			flags.Format = normalizeAccept(flags.Format)

			ioStreams := iocontext.DefaultIO()
			if flags.Silent || flags.Quiet {
				ioStreams.ErrOut = io.Discard
			}
			if flags.Quiet && mode == outfmt.Text {
				ioStreams.Out = io.Discard
			}
			ctx = iocontext.WithIO(ctx, ioStreams)
			cmd.SetOut(ioStreams.Out)
			cmd.SetErr(ioStreams.ErrOut)

			validation.SetAllowPrivate(flags.AllowPrivate)
			if flags.AllowPrivate && !flags.Silent && !flags.Quiet {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Warning: allowing private/localhost URLs (use only with trusted targets).") //nolint:errcheck
			}

			debug.SetupLogger(flags.Debug)
			ctx = debug.WithDebug(ctx, flags.Debug)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)

			if flags.Query != "" {
				ctx = outfmt.WithQuery(ctx, flags.Query)
			}
			if flags.Template != "" {
				tmpl, err := loadTemplate(flags.Template)
				if err != nil {
					return err
				}
				ctx = outfmt.WithTemplate(ctx, tmpl)
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl (env RSMAIL_OUTPUT)")
	pf.BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	pf.StringVarP(&flags.Query, "query", "q", "", "JQ expression to filter JSON output")
	pf.StringVar(&flags.Template, "template", "", "Go template string (or @path) to render JSON output")
	pf.BoolVar(&flags.Compact, "compact-json", false, "Compact JSON output (no indentation)")
	pf.BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	pf.BoolVar(&flags.DryRun, "dry-run", false, "Preview requests without sending them")
	pf.BoolVarP(&flags.Quiet, "quiet", "Q", false, "Suppress non-essential output")
	pf.BoolVar(&flags.Silent, "silent", false, "Suppress non-error output to stderr")
	pf.BoolVar(&flags.AllowPrivate, "allow-private", flags.AllowPrivate, "Allow http and private/localhost base URLs (unsafe; env RSMAIL_ALLOW_PRIVATE)")
	pf.DurationVar(&flags.Timeout, "timeout", flags.Timeout, "HTTP request timeout (e.g., 30s, 2m)")
	pf.StringVar(&flags.Format, "format", flags.Format, "Accept header sent to the API (json, xml or a media type)")
	pf.StringVar(&flags.Profile, "profile", "", "Credential profile to use (env RSMAIL_PROFILE)")
	pf.StringVar(&flags.BaseURL, "base-url", "", "API base URL (env RSMAIL_BASE_URL)")
	pf.StringVar(&flags.Account, "account", "", "Customer account number (env RSMAIL_ACCOUNT)")
	pf.StringVar(&flags.Domain, "domain", "", "Mail domain (env RSMAIL_DOMAIN)")
	pf.BoolVar(&flags.LegacyDeleteGet, "legacy-delete-get", flags.LegacyDeleteGet, "Send deletes as GET requests like older integrations (env RSMAIL_LEGACY_DELETE_GET)")
	pf.BoolVar(&flags.Lenient, "lenient", false, "Print null/false instead of error details when a call fails")

	flagAlias(pf, "output", "out")
	flagAlias(pf, "dry-run", "dr")
	flagAlias(pf, "compact-json", "cj")
	flagAlias(pf, "template", "tpl")
	flagAlias(pf, "timeout", "to")
	flagAlias(pf, "profile", "pf")
	flagAlias(pf, "domain", "dom")
	flagAlias(pf, "allow-private", "ap")

	root.AddCommand(newAuthCmd())
	root.AddCommand(newProfilesCmd())
	root.AddCommand(newMailboxesCmd())
	root.AddCommand(newAPICmd())
	root.AddCommand(newSignCmd())
	root.AddCommand(newVersionCmd())

	targetCmd, err := root.ExecuteC()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			enhanced := enhanceUnknownError(err, root, targetCmd)
			_, _ = fmt.Fprintln(root.ErrOrStderr(), enhanced) //nolint:errcheck
		}
		return err
	}
	return nil
}

// enhanceUnknownError adds "did you mean?" suggestions to unknown command/flag errors.
// targetCmd is the command Cobra resolved before the error (may be root itself).
func enhanceUnknownError(err error, root *cobra.Command, targetCmd *cobra.Command) string {
	msg := err.Error()

	if strings.Contains(msg, "unknown command") {
		if unknown := extractQuoted(msg); unknown != "" {
			parent := root
			if targetCmd != nil {
				parent = targetCmd
			}
			var names []string
			for _, c := range parent.Commands() {
				if c.IsAvailableCommand() || c.Name() == "help" {
					names = append(names, c.Name())
					names = append(names, c.Aliases...)
				}
			}
			if suggestion := suggestCommand(unknown, names); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?", msg, suggestion)
			}
		}
	}

	if strings.Contains(msg, "unknown flag") || strings.Contains(msg, "unknown shorthand flag") {
		unknown := extractFlag(msg)
		if unknown != "" {
			seen := make(map[string]bool)
			var flagNames []string
			addFlags := func(fs *pflag.FlagSet) {
				fs.VisitAll(func(f *pflag.Flag) {
					if f.Hidden {
						return
					}
					name := "--" + f.Name
					if !seen[name] {
						seen[name] = true
						flagNames = append(flagNames, name)
					}
				})
			}
			helpCmd := "rsmail --help"
			if targetCmd != nil {
				addFlags(targetCmd.Flags())
				addFlags(targetCmd.InheritedFlags())
				if commandPath := strings.TrimSpace(targetCmd.CommandPath()); commandPath != "" {
					helpCmd = commandPath + " --help"
				}
			} else {
				addFlags(root.PersistentFlags())
			}
			if suggestion := suggestFlag(unknown, flagNames); suggestion != "" {
				return fmt.Sprintf("%s\n\nDid you mean %q?\nRun %q to see supported flags.", msg, suggestion, helpCmd)
			}
			return fmt.Sprintf("%s\n\nRun %q to see supported flags.", msg, helpCmd)
		}
	}

	return msg
}

// extractQuoted extracts the first double-quoted substring from s.
func extractQuoted(s string) string {
	start := strings.IndexByte(s, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start+1:], '"')
	if end < 0 {
		return ""
	}
	return s[start+1 : start+1+end]
}

// extractFlag extracts a flag name (e.g., "--foo") from an error message.
func extractFlag(s string) string {
	idx := strings.Index(s, "--")
	if idx < 0 {
		// "unknown shorthand flag: 'a' in -a"
		idx = strings.LastIndex(s, " -")
		if idx < 0 {
			return ""
		}
		rest := strings.TrimRight(strings.TrimSpace(s[idx+1:]), ".,;:!?\"'")
		if strings.HasPrefix(rest, "-") && len(rest) > 1 {
			return rest
		}
		return ""
	}
	rest := s[idx:]
	if end := strings.IndexByte(rest, ' '); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimRight(rest, ".,;:!?\"'")
}

func loadTemplate(value string) (string, error) {
	if strings.HasPrefix(value, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			return "", fmt.Errorf("failed to read template file: %w", err)
		}
		return string(data), nil
	}
	return value, nil
}
