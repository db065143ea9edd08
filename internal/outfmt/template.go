package outfmt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"text/template"
)

type templateKey struct{}

// WithTemplate adds a template string to the context
func WithTemplate(ctx context.Context, tmpl string) context.Context {
	return context.WithValue(ctx, templateKey{}, tmpl)
}

// GetTemplate retrieves the template string from context
func GetTemplate(ctx context.Context) string {
	if tmpl, ok := ctx.Value(templateKey{}).(string); ok {
		return tmpl
	}
	return ""
}

// WriteTemplate renders data using a Go text/template string
func WriteTemplate(w io.Writer, v any, tmpl string) error {
	funcs := template.FuncMap{
		"json": func(val any) (string, error) {
			buf := &bytes.Buffer{}
			enc := json.NewEncoder(buf)
			enc.SetIndent("", "  ")
			if err := enc.Encode(val); err != nil {
				return "", err
			}
			return buf.String(), nil
		},
		"join":    strings.Join,
		"upper":   strings.ToUpper,
		"mb":      FormatMB,
		"enabled": FormatEnabled,
		"orDash":  OrDash,
	}

	t, err := template.New("output").Funcs(funcs).Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return formatTemplateError("invalid template", err)
	}
	if err := t.Execute(w, v); err != nil {
		return formatTemplateError("template execution error", err)
	}
	return nil
}

var templateLocationPattern = regexp.MustCompile(`:(\d+):(\d+):`)

func formatTemplateError(kind string, err error) error {
	msg := err.Error()
	if matches := templateLocationPattern.FindStringSubmatch(msg); len(matches) == 3 {
		return fmt.Errorf("%s at line %s, column %s: %s", kind, matches[1], matches[2], msg)
	}
	return fmt.Errorf("%s: %w", kind, err)
}

// FormatMB renders a mailbox size or usage reported in megabytes. It accepts
// the typed int64 fields as well as decoded JSON numbers and numeric strings.
// Missing or non-positive values render as "-".
func FormatMB(v any) string {
	var mb int64
	switch n := v.(type) {
	case int64:
		mb = n
	case int:
		mb = int64(n)
	case float64:
		mb = int64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return "-"
		}
		mb = int64(f)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return "-"
		}
		mb = parsed
	}
	if mb <= 0 {
		return "-"
	}
	return strconv.FormatInt(mb, 10) + " MB"
}

// FormatEnabled renders the enabled flag as yes/no, or "-" when absent.
func FormatEnabled(v any) string {
	switch b := v.(type) {
	case *bool:
		if b == nil {
			return "-"
		}
		return FormatEnabled(*b)
	case bool:
		if b {
			return "yes"
		}
		return "no"
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return FormatEnabled(parsed)
		}
	}
	return "-"
}

// OrDash renders empty or missing values as "-".
func OrDash(v any) string {
	switch s := v.(type) {
	case nil:
		return "-"
	case string:
		if s == "" {
			return "-"
		}
		return s
	default:
		return fmt.Sprint(s)
	}
}
