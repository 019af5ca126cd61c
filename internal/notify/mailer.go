// Package notify sends email notifications when a scrape turns up new press
// releases. Delivery uses SMTP over implicit TLS, matching the gmail setup
// the service runs with in production.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/presswatch/presswatch/internal/infrastructure/monitoring"
	"github.com/presswatch/presswatch/internal/shared/types"
)

// Config holds SMTP settings.
type Config struct {
	Host       string
	Port       int
	Sender     string
	Password   string
	Recipients []string
	Subject    string
}

// Mailer sends release notifications.
type Mailer struct {
	cfg     Config
	metrics *monitoring.Metrics
}

// NewMailer creates a mailer. Returns an error when the configuration is
// incomplete, so a half-configured deployment fails at boot instead of at
// send time.
func NewMailer(cfg Config, metrics *monitoring.Metrics) (*Mailer, error) {
	if cfg.Host == "" || cfg.Sender == "" || len(cfg.Recipients) == 0 {
		return nil, fmt.Errorf("mailer requires host, sender, and at least one recipient")
	}
	if cfg.Port == 0 {
		cfg.Port = 465
	}
	if cfg.Subject == "" {
		cfg.Subject = "here's the latest China press release"
	}
	return &Mailer{cfg: cfg, metrics: metrics}, nil
}

// SendReleases emails a digest of the given releases.
func (m *Mailer) SendReleases(ctx context.Context, releases []types.PressRelease) error {
	if len(releases) == 0 {
		return nil
	}
	return m.send(ctx, FormatDigest(releases))
}

func (m *Mailer) send(ctx context.Context, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Sender); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.cfg.Recipients...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(m.cfg.Subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Sender),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		if m.metrics != nil {
			m.metrics.EmailsFailed.Inc()
		}
		return fmt.Errorf("send notification: %w", err)
	}
	if m.metrics != nil {
		m.metrics.EmailsSent.Inc()
	}
	return nil
}

// FormatDigest renders releases as a plain-text email body.
func FormatDigest(releases []types.PressRelease) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d new press release(s):\n\n", len(releases))

	for i, r := range releases {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, r.Title, r.PublishDate)
		if r.DocNumber != "" {
			fmt.Fprintf(&b, "   %s\n", r.DocNumber)
		}
		fmt.Fprintf(&b, "   %s\n", r.URL)

		if r.Content != "" {
			snippet := r.Content
			if runes := []rune(snippet); len(runes) > 200 {
				snippet = string(runes[:200]) + "..."
			}
			fmt.Fprintf(&b, "   %s\n", snippet)
		}
		b.WriteString("\n")
	}
	return b.String()
}
