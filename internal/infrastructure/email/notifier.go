// Package email delivers notify-action messages over SMTP.
package email

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"flowdesk/internal/domain/ticket"
	"flowdesk/internal/shared/config"
	"flowdesk/internal/shared/logger"
)

// AudienceResolver maps a notify action's audience name to recipient
// addresses for the ticket at hand.
type AudienceResolver interface {
	Resolve(ctx context.Context, audience string, snap ticket.Snapshot) ([]string, error)
}

// StaticAudienceResolver resolves audiences from a fixed configuration
// map. Suitable when audiences are operational groups rather than
// per-ticket recipients.
type StaticAudienceResolver map[string][]string

func (r StaticAudienceResolver) Resolve(_ context.Context, audience string, _ ticket.Snapshot) ([]string, error) {
	recipients, ok := r[audience]
	if !ok || len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients configured for audience %q", audience)
	}
	return recipients, nil
}

// MessageTemplate is one renderable notification. Subject and Body are
// text/template sources executed against the ticket snapshot.
type MessageTemplate struct {
	Subject string
	Body    string
}

// DefaultTemplates returns the built-in notification set. Deployments
// extend or replace these through RegisterTemplate.
func DefaultTemplates() map[string]MessageTemplate {
	return map[string]MessageTemplate{
		"ticket_assigned": {
			Subject: "[{{.Number}}] Ticket assigned: {{.Title}}",
			Body:    "Ticket {{.Number}} ({{.Priority.String}}) has been assigned.\n\n{{.Title}}",
		},
		"sla_warning": {
			Subject: "[{{.Number}}] SLA at risk: {{.Title}}",
			Body:    "Ticket {{.Number}} is approaching its SLA target. Current priority: {{.Priority.String}}.",
		},
		"sla_breach": {
			Subject: "[{{.Number}}] SLA breached: {{.Title}}",
			Body:    "Ticket {{.Number}} has breached its SLA target. Immediate attention required.",
		},
	}
}

// SMTPNotifier renders a named template and delivers it to the resolved
// audience over SMTP.
type SMTPNotifier struct {
	send      func(*gomail.Message) error
	from      string
	templates map[string]*parsedTemplate
	resolver  AudienceResolver
	logger    logger.Interface
}

type parsedTemplate struct {
	subject *template.Template
	body    *template.Template
}

// NewSMTPNotifier creates a new SMTPNotifier instance with the default
// template set.
func NewSMTPNotifier(cfg *config.SMTPConfig, resolver AudienceResolver, log logger.Interface) (*SMTPNotifier, error) {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	n := &SMTPNotifier{
		send:      func(m *gomail.Message) error { return dialer.DialAndSend(m) },
		from:      cfg.From,
		templates: make(map[string]*parsedTemplate),
		resolver:  resolver,
		logger:    log,
	}

	for name, tmpl := range DefaultTemplates() {
		if err := n.RegisterTemplate(name, tmpl); err != nil {
			return nil, err
		}
	}

	return n, nil
}

// RegisterTemplate adds or replaces a named notification template.
func (n *SMTPNotifier) RegisterTemplate(name string, tmpl MessageTemplate) error {
	subject, err := template.New(name + ":subject").Parse(tmpl.Subject)
	if err != nil {
		return fmt.Errorf("failed to parse subject template %q: %w", name, err)
	}
	body, err := template.New(name + ":body").Parse(tmpl.Body)
	if err != nil {
		return fmt.Errorf("failed to parse body template %q: %w", name, err)
	}

	n.templates[name] = &parsedTemplate{subject: subject, body: body}
	return nil
}

// Send renders the named template against the snapshot and mails it to
// every recipient the audience resolves to.
func (n *SMTPNotifier) Send(ctx context.Context, templateName string, audience string, snap ticket.Snapshot) error {
	tmpl, ok := n.templates[templateName]
	if !ok {
		return fmt.Errorf("unknown notification template %q", templateName)
	}

	recipients, err := n.resolver.Resolve(ctx, audience, snap)
	if err != nil {
		return fmt.Errorf("failed to resolve audience: %w", err)
	}

	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, snap); err != nil {
		return fmt.Errorf("failed to render subject: %w", err)
	}
	if err := tmpl.body.Execute(&body, snap); err != nil {
		return fmt.Errorf("failed to render body: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", body.String())

	// gomail has no context-aware send, so the dial runs in its own
	// goroutine and the caller's deadline is enforced here. An abandoned
	// dial stops on the SMTP socket timeout.
	errc := make(chan error, 1)
	go func() { errc <- n.send(msg) }()

	select {
	case <-ctx.Done():
		return fmt.Errorf("notification send aborted: %w", ctx.Err())
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("failed to send notification: %w", err)
		}
	}

	n.logger.Infow("notification sent",
		"template", templateName,
		"audience", audience,
		"ticket_id", snap.ID,
		"recipients", len(recipients),
	)
	return nil
}
