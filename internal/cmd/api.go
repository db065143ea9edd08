package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rackspace/rsmail-cli/internal/api"
	"github.com/rackspace/rsmail-cli/internal/iocontext"
	"github.com/rackspace/rsmail-cli/internal/validation"
)

var apiMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodDelete: true,
}

func newAPICmd() *cobra.Command {
	var (
		set            []string
		includeHeaders bool
	)

	cmd := &cobra.Command{
		Use:   "api <method> <path>",
		Short: "Send a raw signed request",
		Long: strings.TrimSpace(`
Send a signed request to any path under the base URL and print the status
and body as received.

{account} and {domain} in the path expand to the configured scope.
POST and PUT send --set fields as a form body.
`),
		Example: strings.TrimSpace(`
  rsmail api GET /customers/me
  rsmail api GET '/customers/{account}/domains/{domain}/rs/mailboxes?size=50'
  rsmail api PUT '/customers/{account}/domains/{domain}/rs/mailboxes/alice' --set enabled=false
`),
		Args: cobra.ExactArgs(2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			method := strings.ToUpper(strings.TrimSpace(args[0]))
			if !apiMethods[method] {
				return fmt.Errorf("invalid HTTP method %q: must be one of GET, POST, PUT, DELETE", args[0])
			}
			fields, err := parseSetFlags(set)
			if err != nil {
				return err
			}
			if len(fields) > 0 && method != http.MethodPost && method != http.MethodPut {
				return fmt.Errorf("--set is only valid with POST or PUT")
			}
			if err := validation.ValidateFields(fields); err != nil {
				return err
			}

			client, cfg, err := getClient()
			if err != nil {
				return err
			}
			path, err := expandAPIPath(args[1], cfg.Account, cfg.Domain)
			if err != nil {
				return err
			}

			req := api.Request{Method: method, Path: path, Fields: fields, Format: flags.Format}
			if ok, err := maybeDryRun(cmd, requestPreview(client, method+" "+path, req)); ok {
				return err
			}

			resp, err := client.Fetch(cmdContext(cmd), req)
			if resp == nil {
				return err
			}

			if isJSON(cmd) {
				if perr := printJSON(cmd, apiJSONPayload(resp, includeHeaders)); perr != nil {
					return perr
				}
			} else {
				out := iocontext.GetIO(cmd.Context()).Out
				_, _ = fmt.Fprintf(out, "HTTP %d\n", resp.StatusCode)
				if includeHeaders {
					for _, key := range sortedKeys(resp.Header) {
						_, _ = fmt.Fprintf(out, "%s: %s\n", key, strings.Join(resp.Header[key], ", "))
					}
					_, _ = fmt.Fprintln(out)
				}
				if resp.Body != "" {
					_, _ = fmt.Fprintln(out, resp.Body)
				}
			}

			if err != nil {
				// The body is already on stdout.
				return &handledError{err: err, exitCode: ExitCode(err)}
			}
			return nil
		}),
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "Form field as key=value (repeatable)")
	cmd.Flags().BoolVarP(&includeHeaders, "include", "i", false, "Include response headers")

	return cmd
}

// expandAPIPath substitutes {account} and {domain} and requires a path
// relative to the base URL.
func expandAPIPath(raw, account, domain string) (string, error) {
	path := strings.TrimSpace(raw)
	if path == "" {
		return "", fmt.Errorf("path is required")
	}
	if strings.Contains(path, "://") {
		return "", fmt.Errorf("path must be relative to the base URL, got %q", raw)
	}
	if strings.Contains(path, "{account}") {
		if account == "" {
			return "", fmt.Errorf("path uses {account} but no account is configured (missing --account)")
		}
		path = strings.ReplaceAll(path, "{account}", url.PathEscape(account))
	}
	if strings.Contains(path, "{domain}") {
		if domain == "" {
			return "", fmt.Errorf("path uses {domain} but no domain is configured (missing --domain)")
		}
		path = strings.ReplaceAll(path, "{domain}", url.PathEscape(domain))
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path, nil
}

func apiJSONPayload(resp *api.Response, includeHeaders bool) map[string]any {
	payload := map[string]any{"status": resp.StatusCode}
	var body any
	if err := json.Unmarshal([]byte(resp.Body), &body); err == nil {
		payload["body"] = body
	} else {
		payload["body"] = resp.Body
	}
	if includeHeaders {
		headers := make(map[string]string, len(resp.Header))
		for key, values := range resp.Header {
			headers[key] = strings.Join(values, ", ")
		}
		payload["headers"] = headers
	}
	return payload
}
