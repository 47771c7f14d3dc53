package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/smtp"

	"github.com/yukikurage/project-management-api/internal/config"
)

const resendBatchURL = "https://api.resend.com/emails/batch"

// NewTransport picks SMTP when enabled, Resend when an API key is set and a
// log-only transport otherwise.
func NewTransport(ecfg config.EmailConfig) Transport {
	switch {
	case ecfg.SMTPEnabled:
		return &SMTPTransport{cfg: ecfg}
	case ecfg.ResendAPIKey != "":
		return &ResendTransport{cfg: ecfg, client: http.DefaultClient, endpoint: resendBatchURL}
	default:
		return LogTransport{}
	}
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// ResendTransport sends through the Resend batch API.
type ResendTransport struct {
	cfg      config.EmailConfig
	client   *http.Client
	endpoint string
}

func (t *ResendTransport) SendBatch(ctx context.Context, messages []Message) error {
	body := make([]resendEmail, len(messages))
	for i, m := range messages {
		body[i] = resendEmail{
			From:    t.cfg.FromEmail,
			To:      []string{m.To},
			Subject: m.Subject,
			HTML:    m.HTML,
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.cfg.ResendAPIKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("resend API error: status %d", resp.StatusCode)
	}

	return nil
}

// SMTPTransport sends each message over SMTP.
type SMTPTransport struct {
	cfg config.EmailConfig
}

func (t *SMTPTransport) SendBatch(ctx context.Context, messages []Message) error {
	addr := t.cfg.SMTPHost + ":" + t.cfg.SMTPPort

	var auth smtp.Auth
	if t.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
	}

	var errs []error
	for _, m := range messages {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		msg := "From: " + t.cfg.FromEmail + "\r\n" +
			"To: " + m.To + "\r\n" +
			"Subject: " + m.Subject + "\r\n" +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
			"\r\n" +
			m.HTML

		if err := smtp.SendMail(addr, auth, t.cfg.FromEmail, []string{m.To}, []byte(msg)); err != nil {
			errs = append(errs, fmt.Errorf("smtp send to %s: %w", m.To, err))
		}
	}

	return errors.Join(errs...)
}

// LogTransport records messages in the process log instead of sending them.
type LogTransport struct{}

func (LogTransport) SendBatch(ctx context.Context, messages []Message) error {
	for _, m := range messages {
		log.Printf("Mail transport not configured; would send %q to %s", m.Subject, m.To)
	}
	return nil
}
