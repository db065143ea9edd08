// internal/dryrun/dryrun_test.go
package dryrun

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestWithDryRun(t *testing.T) {
	ctx := WithDryRun(context.Background(), true)
	if !IsEnabled(ctx) {
		t.Error("IsEnabled should return true when dry-run is enabled")
	}
}

func TestIsEnabled_DefaultFalse(t *testing.T) {
	if IsEnabled(context.Background()) {
		t.Error("IsEnabled should return false by default")
	}
}

func TestWithDryRun_Disabled(t *testing.T) {
	ctx := WithDryRun(context.Background(), false)
	if IsEnabled(ctx) {
		t.Error("IsEnabled should return false when dry-run is explicitly disabled")
	}
}

func TestPreview_Write(t *testing.T) {
	p := &Preview{
		Operation: "add mailbox alice",
		Method:    "POST",
		URL:       "https://api.emailsrvr.com/v0/customers/123/domains/example.com/rs/mailboxes/alice",
		Headers: map[string]string{
			"X-Api-Signature": "k:20240101000000:[REDACTED]",
			"Accept":          "application/json",
		},
		Fields: map[string]string{
			"size":     "25600",
			"password": "[REDACTED]",
		},
		Warnings: []string{"legacy delete mode"},
	}

	var buf bytes.Buffer
	p.Write(&buf)
	output := buf.String()

	for _, want := range []string{
		"[DRY-RUN] Would add mailbox alice",
		"POST https://api.emailsrvr.com/v0/customers/123/domains/example.com/rs/mailboxes/alice",
		"X-Api-Signature: k:20240101000000:[REDACTED]",
		"password: [REDACTED]",
		"! legacy delete mode",
		"No request sent",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}

	if strings.Index(output, "Accept") > strings.Index(output, "X-Api-Signature") {
		t.Error("headers should be sorted")
	}
	if strings.Index(output, "password") > strings.Index(output, "size") {
		t.Error("fields should be sorted")
	}
}

func TestPreview_WriteMinimal(t *testing.T) {
	p := &Preview{Operation: "delete mailbox bob", Method: "DELETE", URL: "https://x/y"}

	var buf bytes.Buffer
	p.Write(&buf)
	output := buf.String()

	if strings.Contains(output, "Headers:") || strings.Contains(output, "Form fields:") || strings.Contains(output, "Warnings:") {
		t.Errorf("empty sections should be omitted:\n%s", output)
	}
}
