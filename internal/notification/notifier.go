package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"time"

	"backend/internal/config"
)

// Notifier delivers a notification over one channel.
type Notifier interface {
	Send(ctx context.Context, n *Notification) error
}

// Notification is a channel-agnostic outbound message.
type Notification struct {
	Type    string         // email, webhook
	To      string         // recipient address, used by email only
	Subject string
	Body    string
	Data    map[string]any // structured payload, forwarded verbatim on webhook
}

// MultiNotifier fans a notification out to the channel named by its Type.
type MultiNotifier struct {
	email   *EmailNotifier
	webhook *WebhookNotifier
}

// NewMultiNotifier builds the channel router from configuration.
func NewMultiNotifier(cfg *config.NotificationConfig) *MultiNotifier {
	m := &MultiNotifier{}
	if cfg != nil {
		if cfg.Email.SMTPHost != "" {
			m.email = NewEmailNotifier(&cfg.Email)
		}
		if cfg.Webhook.URL != "" {
			m.webhook = NewWebhookNotifier(&cfg.Webhook)
		}
	}
	return m
}

// Send routes the notification to the configured channel.
func (m *MultiNotifier) Send(ctx context.Context, n *Notification) error {
	var notifier Notifier

	switch n.Type {
	case "email":
		if m.email != nil {
			notifier = m.email
		}
	case "webhook":
		if m.webhook != nil {
			notifier = m.webhook
		}
	default:
		return fmt.Errorf("unsupported notification type: %s", n.Type)
	}

	if notifier == nil {
		// Channel not configured; notification delivery is best-effort.
		return nil
	}
	return notifier.Send(ctx, n)
}

// EmailNotifier sends plain-text mail over SMTP.
type EmailNotifier struct {
	cfg *config.EmailConfig
}

func NewEmailNotifier(cfg *config.EmailConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

func (e *EmailNotifier) Send(ctx context.Context, n *Notification) error {
	addr := fmt.Sprintf("%s:%d", e.cfg.SMTPHost, e.cfg.SMTPPort)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		e.cfg.From, n.To, n.Subject, n.Body)

	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, e.cfg.From, []string{n.To}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// WebhookNotifier POSTs the notification as JSON to a configured endpoint.
type WebhookNotifier struct {
	cfg    *config.WebhookConfig
	client *http.Client
}

func NewWebhookNotifier(cfg *config.WebhookConfig) *WebhookNotifier {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (w *WebhookNotifier) Send(ctx context.Context, n *Notification) error {
	payload := map[string]any{
		"subject": n.Subject,
		"body":    n.Body,
		"data":    n.Data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.cfg.Secret != "" {
		req.Header.Set("X-Webhook-Secret", w.cfg.Secret)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
