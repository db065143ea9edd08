package api

import (
	"context"
	"net/http"
	"net/url"
)

// MailboxesService exposes the Rackspace Email mailbox resource for a single
// customer account and domain.
type MailboxesService struct {
	*Client
	Account string
	Domain  string
	// Format is sent as the Accept header. List and Show decode JSON, so
	// anything other than application/json only suits raw access.
	Format string
}

// Path returns /customers/{account}/domains/{domain}/rs/mailboxes, plus
// /{name} when name is non-empty.
func (s MailboxesService) Path(name string) string {
	p := "/customers/" + url.PathEscape(s.Account) + "/domains/" + url.PathEscape(s.Domain) + "/rs/mailboxes"
	if name != "" {
		p += "/" + url.PathEscape(name)
	}
	return p
}

func (s MailboxesService) request(method, name string, fields map[string]string) Request {
	return Request{Method: method, Path: s.Path(name), Fields: fields, Format: s.Format}
}

// List retrieves all mailboxes in the domain.
func (s MailboxesService) List(ctx context.Context) (Document, error) {
	return s.fetchDocument(ctx, s.request(http.MethodGet, "", nil))
}

// Show retrieves one mailbox.
func (s MailboxesService) Show(ctx context.Context, name string) (Document, error) {
	return s.fetchDocument(ctx, s.request(http.MethodGet, name, nil))
}

// Add creates a mailbox with the given form fields.
func (s MailboxesService) Add(ctx context.Context, name string, fields map[string]string) error {
	_, err := s.Fetch(ctx, s.request(http.MethodPost, name, fields))
	return err
}

// Edit updates a mailbox with the given form fields.
func (s MailboxesService) Edit(ctx context.Context, name string, fields map[string]string) error {
	_, err := s.Fetch(ctx, s.request(http.MethodPut, name, fields))
	return err
}

// Delete removes a mailbox.
func (s MailboxesService) Delete(ctx context.Context, name string) error {
	_, err := s.Fetch(ctx, s.request(http.MethodDelete, name, nil))
	return err
}

func (s MailboxesService) fetchDocument(ctx context.Context, r Request) (Document, error) {
	resp, err := s.Fetch(ctx, r)
	if err != nil {
		return nil, err
	}
	return DecodeDocument(resp.Body)
}
