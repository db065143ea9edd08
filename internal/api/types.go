package api

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNotObject = errors.New("response is not a JSON object")

// Document is a decoded JSON object response body.
type Document map[string]any

// DecodeDocument parses body as a JSON object.
func DecodeDocument(body string) (Document, error) {
	trimmed := strings.TrimSpace(body)
	var doc Document
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return nil, &DecodeError{Body: body, Err: err}
	}
	if doc == nil {
		// "null" decodes without error but is not an object.
		return nil, &DecodeError{Body: body, Err: errNotObject}
	}
	return doc, nil
}

// Mailbox is the subset of mailbox attributes rendered by the CLI.
type Mailbox struct {
	Name         string `json:"name"`
	DisplayName  string `json:"displayName,omitempty"`
	Size         int64  `json:"size,omitempty"`
	CurrentUsage int64  `json:"currentUsage,omitempty"`
	Enabled      *bool  `json:"enabled,omitempty"`
	CreatedDate  string `json:"createdDate,omitempty"`
	LastLogin    string `json:"lastLogin,omitempty"`
}

// listKeys are the envelope keys a mailbox listing may use.
var listKeys = []string{"rsMailboxes", "mailboxes"}

// Mailboxes returns the typed entries of a list document. Entries that do not
// decode are skipped.
func (d Document) Mailboxes() []Mailbox {
	for _, key := range listKeys {
		raw, ok := d[key].([]any)
		if !ok {
			continue
		}
		out := make([]Mailbox, 0, len(raw))
		for _, item := range raw {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if mb, err := Document(obj).Mailbox(); err == nil {
				out = append(out, mb)
			}
		}
		return out
	}
	return []Mailbox{}
}

// Mailbox decodes a single-mailbox document.
func (d Document) Mailbox() (Mailbox, error) {
	var mb Mailbox
	data, err := json.Marshal(d)
	if err != nil {
		return mb, err
	}
	if err := json.Unmarshal(data, &mb); err != nil {
		return mb, &DecodeError{Body: string(data), Err: err}
	}
	return mb, nil
}

// Total returns the "total" count of a list document when present.
func (d Document) Total() (int, bool) {
	v, ok := d["total"].(float64)
	if !ok {
		return 0, false
	}
	return int(v), true
}
