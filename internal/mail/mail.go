package mail

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

var (
	// ErrNotConfigured is returned when sending is attempted without an API key or recipients.
	ErrNotConfigured = errors.New("mailer is not configured")
	// ErrLimitReached is returned when SendGrid rate limits the account.
	ErrLimitReached = errors.New("mail api limit reached")
)

type Config struct {
	APIKey       string   `mapstructure:"sendgrid_api_key"`
	FromEmail    string   `mapstructure:"from_email"`
	FromName     string   `mapstructure:"from_email_name"`
	ReplyTo      string   `mapstructure:"reply_to"`
	Recipients   []string `mapstructure:"recipients"`
	ApplyURL     string   `mapstructure:"apply_url"`
	ContactEmail string   `mapstructure:"contact_email"`
	Signature    string   `mapstructure:"signature"`
}

// Sender delivers a prepared SendGrid message.
type Sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type Mailer struct {
	cli       Sender
	from      *mail.Email
	c         *Config
	templates map[templateName]*template.Template
}

// New parses the templates and, when an API key is set, creates the SendGrid client.
// Rendering works without an API key.
func New(c *Config) (*Mailer, error) {
	var cli Sender
	if c.APIKey != "" {
		cli = sendgrid.NewSendClient(c.APIKey)
	}
	return newMailer(c, cli)
}

func newMailer(c *Config, cli Sender) (*Mailer, error) {
	m := &Mailer{
		cli:       cli,
		from:      mail.NewEmail(c.FromName, c.FromEmail),
		c:         c,
		templates: make(map[templateName]*template.Template),
	}
	if err := m.parseTemplates(); err != nil {
		return nil, fmt.Errorf("error parsing templates: %w", err)
	}
	return m, nil
}

func (m *Mailer) parseTemplates() error {
	templateDir := "templates"

	dirEntries, err := templatesFS.ReadDir(templateDir)
	if err != nil {
		return fmt.Errorf("error reading template directory: %w", err)
	}

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		templatePath := filepath.Join(templateDir, entry.Name())
		tmpl, err := template.ParseFS(templatesFS, templatePath)
		if err != nil {
			return fmt.Errorf("error parsing template '%s': %w", entry.Name(), err)
		}
		m.templates[templateName(entry.Name())] = tmpl
	}

	return nil
}

func (m *Mailer) render(tn templateName, data any) (string, error) {
	tmpl, ok := m.templates[tn]
	if !ok {
		return "", fmt.Errorf("template not found: %v", tn)
	}
	body := &strings.Builder{}
	if err := tmpl.Execute(body, data); err != nil {
		return "", fmt.Errorf("error executing template: %w", err)
	}
	return body.String(), nil
}

func (m *Mailer) buildMessage(to string, tn templateName, data any) (*mail.SGMailV3, error) {
	subject, ok := templateSubjects[tn]
	if !ok {
		return nil, fmt.Errorf("subject not found for template: %v", tn)
	}
	html, err := m.render(tn, data)
	if err != nil {
		return nil, err
	}
	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", to), "", html)
	if m.c.ReplyTo != "" {
		msg.SetReplyTo(mail.NewEmail("", m.c.ReplyTo))
	}
	return msg, nil
}

func (m *Mailer) send(ctx context.Context, msg *mail.SGMailV3) error {
	resp, err := m.cli.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrLimitReached
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("error sending email bad status code: %s, status code: %d", resp.Body, resp.StatusCode)
	}
	return nil
}

// sendAll sends one message per configured recipient and returns the joined errors.
func (m *Mailer) sendAll(ctx context.Context, tn templateName, data any) error {
	if m.cli == nil || len(m.c.Recipients) == 0 {
		return ErrNotConfigured
	}
	var errs []error
	for _, to := range m.c.Recipients {
		msg, err := m.buildMessage(to, tn, data)
		if err != nil {
			return err
		}
		if err := m.send(ctx, msg); err != nil {
			slog.Default().ErrorContext(ctx, "can't send email",
				slog.String("to", to),
				slog.String("template", string(tn)),
				slog.String("err", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", to, err))
			continue
		}
		slog.Default().InfoContext(ctx, "email sent",
			slog.String("to", to),
			slog.String("template", string(tn)))
	}
	return errors.Join(errs...)
}
