// Package email delivers coordinator notifications over SMTP.
package email

import (
	"context"
	"fmt"
	"html"
	"net"
	"time"

	"fieldservice_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers notification emails.
type Sender interface {
	// SendConfirmationMissed alerts the coordinator that a client never
	// confirmed an upcoming visit, so a phone follow-up is needed.
	SendConfirmationMissed(ctx context.Context, toEmail, clientName, recordURL string, deadline time.Time) error

	// SendVisitCancelled informs the coordinator that a scheduled visit
	// was cancelled and the slot freed.
	SendVisitCancelled(ctx context.Context, toEmail, clientName, recordURL string) error
}

// SMTPSender implements Sender using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender from the email configuration.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendConfirmationMissed(ctx context.Context, toEmail, clientName, recordURL string, deadline time.Time) error {
	subject := "Visit confirmation overdue"
	body := fmt.Sprintf(
		`<p>The client <strong>%s</strong> did not confirm their upcoming maintenance visit before %s.</p>
<p>Please call the client to confirm or reschedule.</p>
<p><a href="%s">Open the maintenance record</a></p>`,
		html.EscapeString(clientName),
		deadline.Format("Mon, 02 Jan 2006 15:04"),
		html.EscapeString(recordURL),
	)
	return s.send(ctx, toEmail, subject, body)
}

func (s *SMTPSender) SendVisitCancelled(ctx context.Context, toEmail, clientName, recordURL string) error {
	subject := "Maintenance visit cancelled"
	body := fmt.Sprintf(
		`<p>The maintenance visit for <strong>%s</strong> was cancelled. The technician slot is free again.</p>
<p><a href="%s">Open the maintenance record</a></p>`,
		html.EscapeString(clientName),
		html.EscapeString(recordURL),
	)
	return s.send(ctx, toEmail, subject, body)
}

// NoopSender drops all emails. Used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendConfirmationMissed(context.Context, string, string, string, time.Time) error {
	return nil
}

func (NoopSender) SendVisitCancelled(context.Context, string, string, string) error {
	return nil
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = NoopSender{}
)
