package api

// Service accessors group Client methods by resource. Each service embeds
// *Client so it shares the transport configuration.

// Mailboxes scopes the mailbox resource to one customer account and domain.
func (c *Client) Mailboxes(account, domain string) MailboxesService {
	return MailboxesService{Client: c, Account: account, Domain: domain, Format: DefaultFormat}
}
