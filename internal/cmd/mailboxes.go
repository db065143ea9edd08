package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rackspace/rsmail-cli/internal/api"
	"github.com/rackspace/rsmail-cli/internal/iocontext"
	"github.com/rackspace/rsmail-cli/internal/outfmt"
	"github.com/rackspace/rsmail-cli/internal/resolve"
	"github.com/rackspace/rsmail-cli/internal/validation"
)

func newMailboxesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "mailboxes",
		Aliases: []string{"mailbox", "mb"},
		Short:   "Manage Rackspace Email mailboxes",
		Long: strings.TrimSpace(`
List, inspect, create, update and delete mailboxes of one domain.

The customer account and domain come from --account/--domain, the
RSMAIL_ACCOUNT/RSMAIL_DOMAIN variables, or the saved profile.
`),
	}

	cmd.AddCommand(newMailboxesListCmd())
	cmd.AddCommand(newMailboxesShowCmd())
	cmd.AddCommand(newMailboxesAddCmd())
	cmd.AddCommand(newMailboxesEditCmd())
	cmd.AddCommand(newMailboxesDeleteCmd())

	return cmd
}

func newMailboxesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List mailboxes in the domain",
		Example: strings.TrimSpace(`
  rsmail mailboxes list --account 123456 --domain example.com
  rsmail mailboxes list --json --query '.rsMailboxes[].name'
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			svc, err := getMailboxes()
			if err != nil {
				return err
			}
			req := api.Request{Method: http.MethodGet, Path: svc.Path(""), Format: svc.Format}
			if ok, err := maybeDryRun(cmd, requestPreview(svc.Client, "list mailboxes", req)); ok {
				return err
			}
			if !isJSONFormat(svc.Format) {
				return printRawBody(cmd, svc, req)
			}

			var doc api.Document
			if flags.Lenient {
				if doc = svc.Lenient().List(cmdContext(cmd)); doc == nil {
					return printLenientNull(cmd)
				}
			} else if doc, err = svc.List(cmdContext(cmd)); err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, doc)
			}

			mailboxes := doc.Mailboxes()
			f := newFormatter(cmd)
			if len(mailboxes) == 0 {
				f.Empty("No mailboxes found")
				return nil
			}
			f.StartTable([]string{"NAME", "DISPLAY NAME", "SIZE", "USAGE", "ENABLED"})
			for _, mb := range mailboxes {
				f.Row(mb.Name, outfmt.OrDash(mb.DisplayName), outfmt.FormatMB(mb.Size), outfmt.FormatMB(mb.CurrentUsage), outfmt.FormatEnabled(mb.Enabled))
			}
			if err := f.EndTable(); err != nil {
				return err
			}
			if total, ok := doc.Total(); ok && total > len(mailboxes) {
				f.Empty(fmt.Sprintf("Showing %d of %d mailboxes", len(mailboxes), total))
			}
			return nil
		}),
	}
}

func newMailboxesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show <name>",
		Aliases: []string{"get"},
		Short:   "Show one mailbox",
		Example: "  rsmail mailboxes show alice",
		Args:    cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if err := validation.ValidateMailboxName(name); err != nil {
				return fmt.Errorf("invalid mailbox name: %w", err)
			}
			svc, err := getMailboxes()
			if err != nil {
				return err
			}
			req := api.Request{Method: http.MethodGet, Path: svc.Path(name), Format: svc.Format}
			if ok, err := maybeDryRun(cmd, requestPreview(svc.Client, "show mailbox "+name, req)); ok {
				return err
			}
			if !isJSONFormat(svc.Format) {
				return printRawBody(cmd, svc, req)
			}

			var doc api.Document
			if flags.Lenient {
				if doc = svc.Lenient().Show(cmdContext(cmd), name); doc == nil {
					return printLenientNull(cmd)
				}
			} else if doc, err = svc.Show(cmdContext(cmd), name); err != nil {
				if api.IsNotFoundError(err) {
					return withNameSuggestions(cmdContext(cmd), svc, name, err)
				}
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, doc)
			}

			f := newFormatter(cmd)
			f.StartTable([]string{"FIELD", "VALUE"})
			for _, key := range sortedKeys(doc) {
				f.Row(key, formatValue(doc[key]))
			}
			return f.EndTable()
		}),
	}
}

func newMailboxesAddCmd() *cobra.Command {
	var input mailboxFieldInput

	cmd := &cobra.Command{
		Use:     "add <name>",
		Aliases: []string{"create"},
		Short:   "Create a mailbox",
		Example: strings.TrimSpace(`
  rsmail mailboxes add alice --set password=S3cret! --set size=2048
  rsmail mailboxes add alice --from-json mailbox.json
  echo '{"displayName":"Alice"}' | rsmail mailboxes add alice --from-json -
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			return runMailboxWrite(cmd, http.MethodPost, args[0], input, false)
		}),
	}

	input.register(cmd)
	return cmd
}

func newMailboxesEditCmd() *cobra.Command {
	var input mailboxFieldInput

	cmd := &cobra.Command{
		Use:     "edit <name>",
		Aliases: []string{"update"},
		Short:   "Update a mailbox",
		Example: strings.TrimSpace(`
  rsmail mailboxes edit alice --set displayName="Alice Smith"
  rsmail mailboxes edit alice --set enabled=false
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			return runMailboxWrite(cmd, http.MethodPut, args[0], input, true)
		}),
	}

	input.register(cmd)
	return cmd
}

// mailboxFieldInput collects form fields from --set and --from-json.
type mailboxFieldInput struct {
	set      []string
	fromJSON string
}

func (in *mailboxFieldInput) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&in.set, "set", nil, "Form field as key=value (repeatable)")
	cmd.Flags().StringVar(&in.fromJSON, "from-json", "", "Read fields from a flat JSON object file ('-' for stdin)")
	flagAlias(cmd.Flags(), "from-json", "fj")
}

// fields merges --from-json with --set; --set wins on duplicate keys.
func (in mailboxFieldInput) fields(ctx context.Context) (map[string]string, error) {
	fields := map[string]string{}
	if in.fromJSON != "" {
		data, err := iocontext.ReadInput(ctx, in.fromJSON)
		if err != nil {
			return nil, err
		}
		fromFile, err := fieldsFromJSON(data)
		if err != nil {
			return nil, err
		}
		for k, v := range fromFile {
			fields[k] = v
		}
	}
	set, err := parseSetFlags(in.set)
	if err != nil {
		return nil, err
	}
	for k, v := range set {
		fields[k] = v
	}
	return fields, nil
}

func runMailboxWrite(cmd *cobra.Command, method, rawName string, input mailboxFieldInput, requireFields bool) error {
	name := strings.TrimSpace(rawName)
	if err := validation.ValidateMailboxName(name); err != nil {
		return fmt.Errorf("invalid mailbox name: %w", err)
	}
	fields, err := input.fields(cmdContext(cmd))
	if err != nil {
		return err
	}
	if requireFields && len(fields) == 0 {
		return fmt.Errorf("at least one --set or --from-json field is required")
	}
	if err := validation.ValidateFields(fields); err != nil {
		return err
	}

	svc, err := getMailboxes()
	if err != nil {
		return err
	}

	action, verb := "Created", "create"
	if method == http.MethodPut {
		action, verb = "Updated", "update"
	}
	req := api.Request{Method: method, Path: svc.Path(name), Fields: fields, Format: svc.Format}
	if ok, err := maybeDryRun(cmd, requestPreview(svc.Client, verb+" mailbox "+name, req)); ok {
		return err
	}

	ctx := cmdContext(cmd)
	if flags.Lenient {
		var delivered bool
		if method == http.MethodPost {
			delivered = svc.Lenient().Add(ctx, name, fields)
		} else {
			delivered = svc.Lenient().Edit(ctx, name, fields)
		}
		return printLenientBool(cmd, delivered)
	}

	if method == http.MethodPost {
		err = svc.Add(ctx, name, fields)
	} else {
		err = svc.Edit(ctx, name, fields)
	}
	if err != nil {
		return err
	}

	if isJSON(cmd) {
		return printJSON(cmd, map[string]any{"name": name, verb + "d": true})
	}
	printAction(cmd, action, "mailbox", name)
	return nil
}

func newMailboxesDeleteCmd() *cobra.Command {
	var (
		concurrency int
		progress    bool
	)

	cmd := &cobra.Command{
		Use:     "delete <name>...",
		Aliases: []string{"rm"},
		Short:   "Delete one or more mailboxes",
		Example: strings.TrimSpace(`
  rsmail mailboxes delete alice
  rsmail mailboxes delete alice bob carol --concurrency 3
  rsmail mailboxes delete alice --legacy-delete-get
`),
		Args: cobra.MinimumNArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			if concurrency <= 0 {
				return fmt.Errorf("--concurrency must be a positive integer")
			}
			names := make([]string, 0, len(args))
			for _, arg := range args {
				name := strings.TrimSpace(arg)
				if err := validation.ValidateMailboxName(name); err != nil {
					return fmt.Errorf("invalid mailbox name %q: %w", arg, err)
				}
				names = append(names, name)
			}

			svc, err := getMailboxes()
			if err != nil {
				return err
			}

			if dryRunDeletes(cmd, svc, names) {
				return nil
			}

			ctx := cmdContext(cmd)
			if flags.Lenient {
				ok := true
				for _, name := range names {
					delivered := svc.Lenient().Delete(ctx, name)
					ok = ok && delivered
					if len(names) > 1 && !isJSON(cmd) {
						printIfNotQuiet(cmd, "%s\t%s\n", name, strconv.FormatBool(delivered))
					}
				}
				if len(names) == 1 || isJSON(cmd) {
					return printLenientBool(cmd, ok)
				}
				if !ok {
					return lenientFailure()
				}
				return nil
			}

			if len(names) == 1 {
				if err := svc.Delete(ctx, names[0]); err != nil {
					return err
				}
				if isJSON(cmd) {
					return printJSON(cmd, map[string]any{"name": names[0], "deleted": true})
				}
				printAction(cmd, "Deleted", "mailbox", names[0])
				return nil
			}

			ioStreams := iocontext.GetIO(ctx)
			var progressOut = ioStreams.ErrOut
			if !progress || isJSON(cmd) {
				progressOut = nil
			}
			results := runBulkOperation(ctx, names, int64(concurrency), progressOut, svc.Delete)
			succeeded, failed := countResults(results)

			if isJSON(cmd) {
				if err := printJSON(cmd, map[string]any{"items": results, "succeeded": succeeded, "failed": failed}); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					if r.Success {
						printAction(cmd, "Deleted", "mailbox", r.Name)
					} else {
						_, _ = fmt.Fprintf(ioStreams.ErrOut, "Failed to delete mailbox %s: %s\n", r.Name, r.Error)
					}
				}
			}

			if failed > 0 {
				if failed == len(results) {
					return firstFailure(results)
				}
				return &handledError{
					err:      fmt.Errorf("failed to delete %d of %d mailboxes", failed, len(results)),
					exitCode: ExitCode(firstFailure(results)),
				}
			}
			return nil
		}),
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", DefaultConcurrency, "Maximum parallel deletes")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show progress on stderr")
	flagAlias(cmd.Flags(), "concurrency", "cc")

	return cmd
}

func dryRunDeletes(cmd *cobra.Command, svc api.MailboxesService, names []string) bool {
	enabled := false
	for _, name := range names {
		req := api.Request{Method: http.MethodDelete, Path: svc.Path(name), Format: svc.Format}
		ok, _ := maybeDryRun(cmd, requestPreview(svc.Client, "delete mailbox "+name, req))
		enabled = enabled || ok
	}
	return enabled
}

// withNameSuggestions attaches similar mailbox names to a not-found error.
// The extra listing call is best effort.
func withNameSuggestions(ctx context.Context, svc api.MailboxesService, name string, err error) error {
	doc, listErr := svc.List(ctx)
	if listErr != nil {
		return err
	}
	mailboxes := doc.Mailboxes()
	names := make([]string, 0, len(mailboxes))
	for _, mb := range mailboxes {
		names = append(names, mb.Name)
	}
	suggestions := resolve.Suggest(name, names, 3)
	if len(suggestions) == 0 {
		return err
	}
	return &suggestionError{err: err, suggestions: suggestions}
}

// printRawBody prints the response body for non-JSON formats. Under
// --lenient the status code is ignored like the lenient facade does.
func printRawBody(cmd *cobra.Command, svc api.MailboxesService, req api.Request) error {
	var body string
	if flags.Lenient {
		raw, err := svc.Raw(cmdContext(cmd), req)
		if err != nil {
			slog.Warn("mailbox call failed", "target", req.Path, "error", err)
			return printLenientNull(cmd)
		}
		body = raw
	} else {
		resp, err := svc.Fetch(cmdContext(cmd), req)
		if err != nil {
			return err
		}
		body = resp.Body
	}
	ioStreams := iocontext.GetIO(cmd.Context())
	_, _ = fmt.Fprintln(ioStreams.Out, body)
	return nil
}

func printLenientNull(cmd *cobra.Command) error {
	ioStreams := iocontext.GetIO(cmd.Context())
	_, _ = fmt.Fprintln(ioStreams.Out, "null")
	return lenientFailure()
}

func printLenientBool(cmd *cobra.Command, ok bool) error {
	ioStreams := iocontext.GetIO(cmd.Context())
	_, _ = fmt.Fprintln(ioStreams.Out, strconv.FormatBool(ok))
	if !ok {
		return lenientFailure()
	}
	return nil
}

func isJSONFormat(format string) bool {
	return format == "" || strings.Contains(strings.ToLower(format), "json")
}
