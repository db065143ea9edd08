package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Input length limits
const (
	MaxMailboxNameLength = 64  // local part of an address
	MaxDomainLength      = 253 // RFC 1035
	MaxLabelLength       = 63
	MaxFieldValueLength  = 4096
	MaxFormPayload       = 65536
	MaxURLLength         = 2048
)

// ValidateMailboxName checks the local part used as a mailbox name.
func ValidateMailboxName(name string) error {
	if name == "" {
		return fmt.Errorf("mailbox name cannot be empty")
	}
	if length := utf8.RuneCountInString(name); length > MaxMailboxNameLength {
		return fmt.Errorf("mailbox name exceeds maximum length of %d characters (got %d)", MaxMailboxNameLength, length)
	}
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") || strings.Contains(name, "..") {
		return fmt.Errorf("invalid mailbox name %q: dots cannot lead, trail or repeat", name)
	}
	for _, r := range name {
		if isMailboxRune(r) {
			continue
		}
		return fmt.Errorf("invalid mailbox name %q: contains invalid character '%c'", name, r)
	}
	return nil
}

func isMailboxRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.' || r == '-' || r == '_' || r == '+' || r == '\'':
		return true
	}
	return false
}

// ValidateDomain checks a DNS domain name such as example.com.
func ValidateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain cannot be empty")
	}
	if len(domain) > MaxDomainLength {
		return fmt.Errorf("domain exceeds maximum length of %d characters (got %d)", MaxDomainLength, len(domain))
	}
	labels := strings.Split(strings.TrimSuffix(domain, "."), ".")
	if len(labels) < 2 {
		return fmt.Errorf("invalid domain %q: expected at least two labels", domain)
	}
	for _, label := range labels {
		if label == "" || len(label) > MaxLabelLength {
			return fmt.Errorf("invalid domain %q: bad label length", domain)
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return fmt.Errorf("invalid domain %q: labels cannot start or end with '-'", domain)
		}
		for _, r := range label {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
				continue
			}
			return fmt.Errorf("invalid domain %q: contains invalid character '%c'", domain, r)
		}
	}
	return nil
}

// ValidateAccountNumber checks a customer account number ("me" is accepted
// as the API's alias for the caller's own account).
func ValidateAccountNumber(account string) error {
	account = strings.TrimSpace(account)
	if account == "" {
		return fmt.Errorf("account number cannot be empty")
	}
	if account == "me" {
		return nil
	}
	for _, r := range account {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid account number %q: must be digits or \"me\"", account)
		}
	}
	if strings.Trim(account, "0") == "" {
		return fmt.Errorf("account number must be positive")
	}
	return nil
}

// ValidateFields checks the size of a form submission.
func ValidateFields(fields map[string]string) error {
	total := 0
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("field name cannot be empty")
		}
		if len(v) > MaxFieldValueLength {
			return fmt.Errorf("field %q exceeds maximum size of %d bytes (got %d)", k, MaxFieldValueLength, len(v))
		}
		total += len(k) + len(v)
	}
	if total > MaxFormPayload {
		return fmt.Errorf("form payload exceeds maximum size of %d bytes (got %d)", MaxFormPayload, total)
	}
	return nil
}

// ParsePositiveInt parses a string as a positive integer.
func ParsePositiveInt(s string, fieldName string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	id64, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", fieldName, err)
	}
	if id64 <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", fieldName)
	}
	return int(id64), nil
}
