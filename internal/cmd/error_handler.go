package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rackspace/rsmail-cli/internal/api"
	"github.com/rackspace/rsmail-cli/internal/config"
)

// suggestionError carries "did you mean" candidates alongside an error.
type suggestionError struct {
	err         error
	suggestions []string
}

func (e *suggestionError) Error() string {
	return e.err.Error()
}

func (e *suggestionError) Unwrap() error {
	return e.err
}

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var apiErr *api.APIError
	var decodeErr *api.DecodeError
	var transportErr *api.TransportError

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		msg.WriteString("No credentials configured.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: rsmail auth login --api-key KEY --secret-key SECRET\n")
		fmt.Fprintf(&msg, "  - Or export %s and %s\n", config.EnvAPIKey, config.EnvSecretKey)

	case errors.As(err, &apiErr):
		fmt.Fprintf(&msg, "API error (HTTP %d): %s\n\n", apiErr.StatusCode, apiErr.Body)
		msg.WriteString(suggestionsForStatusCode(apiErr.StatusCode, apiErr.Fault))
		if apiErr.RequestID != "" {
			fmt.Fprintf(&msg, "\nRequest ID: %s\n", apiErr.RequestID)
		}

	case errors.As(err, &decodeErr):
		fmt.Fprintf(&msg, "Unexpected response: %s\n\n", decodeErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Use --format json so the API answers in JSON\n")
		msg.WriteString("  - Use 'rsmail api GET <path>' to inspect the raw body\n")

	case errors.As(err, &transportErr) && strings.Contains(err.Error(), "connection refused"):
		msg.WriteString("Connection refused.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Verify the base URL: rsmail auth status\n")
		msg.WriteString("  - Check your network connection\n")

	case errors.As(err, &transportErr) && strings.Contains(err.Error(), "no such host"):
		msg.WriteString("DNS resolution failed.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Check the base URL spelling\n")
		msg.WriteString("  - Verify your DNS settings\n")

	case errors.As(err, &transportErr) && strings.Contains(err.Error(), "certificate"):
		msg.WriteString("TLS certificate error.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Verify the server's SSL certificate\n")
		msg.WriteString("  - Check if the certificate is expired\n")

	case errors.As(err, &transportErr):
		fmt.Fprintf(&msg, "Request failed: %s\n\n", transportErr.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Raise --timeout for slow connections\n")
		msg.WriteString("  - Use --debug to see request timing\n")

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	var suggested *suggestionError
	if errors.As(err, &suggested) && len(suggested.suggestions) > 0 {
		fmt.Fprintf(&msg, "\nDid you mean: %s?\n", strings.Join(suggested.suggestions, ", "))
	}

	return msg.String()
}

func suggestionsForStatusCode(code int, fault string) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch code {
	case 400:
		suggestions.WriteString("  - Check the submitted --set fields\n")
		suggestions.WriteString("  - Use --dry-run to see the form body\n")

	case 401:
		suggestions.WriteString("  - The API key pair may be wrong: rsmail auth status\n")
		suggestions.WriteString("  - Signatures embed the current UTC time; check the system clock\n")

	case 403:
		if fault != "" && fault != "unauthorizedFault" {
			suggestions.WriteString("  - The key does not have access to this customer account\n")
			suggestions.WriteString("  - Check --account\n")
		} else {
			suggestions.WriteString("  - The API key pair may be wrong: rsmail auth status\n")
			suggestions.WriteString("  - Signatures embed the current UTC time; check the system clock\n")
		}

	case 404:
		suggestions.WriteString("  - Check the account number, domain and mailbox name\n")
		suggestions.WriteString("  - List mailboxes: rsmail mailboxes list\n")

	case 409:
		suggestions.WriteString("  - The mailbox already exists\n")
		suggestions.WriteString("  - Update it instead: rsmail mailboxes edit\n")

	case 500, 502, 503, 504:
		suggestions.WriteString("  - Server error - not your fault\n")
		suggestions.WriteString("  - Wait and retry\n")

	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}

// ExitWithError prints error with suggestions and exits
func ExitWithError(err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprint(os.Stderr, HandleError(err))
	os.Exit(ExitCode(err))
}
