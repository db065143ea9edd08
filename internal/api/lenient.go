package api

import (
	"context"
	"log/slog"
	"net/http"
)

// LenientMailboxes degrades every failure to nil or false and logs the cause.
//
// The status code is never inspected. Reads return whatever JSON object the
// server sent, fault bodies included, and fail only on transport or decode
// errors. Writes only report whether the request was delivered.
type LenientMailboxes struct {
	svc MailboxesService
}

// Lenient returns the fail-soft view of s.
func (s MailboxesService) Lenient() LenientMailboxes {
	return LenientMailboxes{svc: s}
}

// List returns the mailbox listing, or nil.
func (l LenientMailboxes) List(ctx context.Context) Document {
	return l.read(ctx, "list", l.svc.request(http.MethodGet, "", nil))
}

// Show returns one mailbox, or nil.
func (l LenientMailboxes) Show(ctx context.Context, name string) Document {
	return l.read(ctx, "show", l.svc.request(http.MethodGet, name, nil))
}

// Add reports whether the create request was delivered.
func (l LenientMailboxes) Add(ctx context.Context, name string, fields map[string]string) bool {
	return l.send(ctx, "add", l.svc.request(http.MethodPost, name, fields))
}

// Edit reports whether the update request was delivered.
func (l LenientMailboxes) Edit(ctx context.Context, name string, fields map[string]string) bool {
	return l.send(ctx, "edit", l.svc.request(http.MethodPut, name, fields))
}

// Delete reports whether the delete request was delivered.
func (l LenientMailboxes) Delete(ctx context.Context, name string) bool {
	return l.send(ctx, "delete", l.svc.request(http.MethodDelete, name, nil))
}

func (l LenientMailboxes) read(ctx context.Context, op string, r Request) Document {
	body, err := l.svc.Raw(ctx, r)
	if err != nil {
		logSwallowed(op, r.Path, err)
		return nil
	}
	doc, err := DecodeDocument(body)
	if err != nil {
		logSwallowed(op, r.Path, err)
		return nil
	}
	return doc
}

func (l LenientMailboxes) send(ctx context.Context, op string, r Request) bool {
	resp, err := l.svc.Do(ctx, r)
	if err != nil {
		logSwallowed(op, r.Path, err)
		return false
	}
	_, _ = ReadBody(resp)
	return true
}

func logSwallowed(op, target string, err error) {
	slog.Warn("mailbox call failed", "operation", op, "target", target, "error", err)
}
