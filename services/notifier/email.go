package notifier

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strconv"
	"strings"

	"signalist_backend/config"
	"signalist_backend/models"
)

// Directional status labels carried in the alert email. Equals alerts
// reuse the above label, matching the emails users already receive.
const (
	StatusAboveReached = "Price Above Reached"
	StatusBelowHit     = "Price Below Hit"
)

// PriceAlertMessage carries everything needed to notify a user that
// their alert fired
type PriceAlertMessage struct {
	To           string
	AlertName    string
	Symbol       string
	Company      string
	CurrentPrice float64
	TargetPrice  float64
	Condition    models.AlertCondition
	Status       string
}

// Subject renders the email subject line
func (m PriceAlertMessage) Subject() string {
	return fmt.Sprintf("⚠️ %s: %s (%s)", m.Status, m.Company, m.Symbol)
}

// ConditionText renders the comparison as display text, e.g. "Price > $140"
func (m PriceAlertMessage) ConditionText() string {
	target := strconv.FormatFloat(m.TargetPrice, 'f', -1, 64)
	switch m.Condition {
	case models.ConditionGreaterThan:
		return "Price > $" + target
	case models.ConditionLessThan:
		return "Price < $" + target
	default:
		return "Price = $" + target
	}
}

// OpportunityText renders the call-to-action line keyed off direction
func (m PriceAlertMessage) OpportunityText() string {
	if m.Status == StatusBelowHit {
		return fmt.Sprintf("%s dropped below your target price! This might be a good time to buy.", m.Company)
	}
	return fmt.Sprintf("%s has reached your target price! This could be a good time to review your position and consider taking profits or adjusting your strategy.", m.Company)
}

// Body renders the HTML email body
func (m PriceAlertMessage) Body() string {
	accent := "#10b981"
	if m.Status == StatusBelowHit {
		accent = "#ef4444"
	}

	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html><html><body style="margin:0;padding:0;background-color:#050505;font-family:-apple-system,'Segoe UI',Roboto,sans-serif;">`)
	sb.WriteString(`<div style="max-width:600px;margin:40px auto;background-color:#141414;border:1px solid #30333A;border-radius:12px;padding:30px;color:#ffffff;">`)
	sb.WriteString(fmt.Sprintf(`<span style="display:inline-block;padding:10px 16px;border-radius:6px;font-size:12px;font-weight:600;background-color:%s;color:#ffffff;">⚠️ %s</span>`, accent, m.Status))
	sb.WriteString(fmt.Sprintf(`<h1 style="margin:20px 0 10px 0;font-size:26px;">%s</h1>`, m.Status))
	sb.WriteString(fmt.Sprintf(`<h2 style="margin:0 0 20px 0;font-size:18px;color:#9ca3af;">%s — %s</h2>`, m.Company, m.Symbol))
	sb.WriteString(`<div style="background-color:#1e293b;border:1px solid #334155;border-radius:8px;padding:20px;margin:20px 0;font-size:14px;">`)
	sb.WriteString(fmt.Sprintf(`<p style="margin:0 0 12px 0;">Current Price: <strong style="color:#10b981;">$%.2f</strong></p>`, m.CurrentPrice))
	sb.WriteString(fmt.Sprintf(`<p style="margin:0 0 12px 0;">Alert Condition: <strong>%s</strong></p>`, m.ConditionText()))
	sb.WriteString(fmt.Sprintf(`<p style="margin:0;">Target Price: <strong style="color:#fbbf24;">$%.2f</strong></p>`, m.TargetPrice))
	sb.WriteString(`</div>`)
	sb.WriteString(fmt.Sprintf(`<div style="background-color:#1e293b;border-left:4px solid %s;padding:15px;border-radius:6px;margin:20px 0;font-size:14px;">%s</div>`, accent, m.OpportunityText()))
	sb.WriteString(fmt.Sprintf(`<p style="margin:20px 0 0 0;font-size:13px;color:#6b7280;text-align:center;">Alert: <span style="color:#9ca3af;font-weight:600;">%s</span></p>`, m.AlertName))
	sb.WriteString(`<p style="margin:10px 0 0 0;font-size:13px;color:#9ca3af;text-align:center;">You're receiving this because you set up a price alert on Signalist.</p>`)
	sb.WriteString(`</div></body></html>`)
	return sb.String()
}

// EmailNotifier sends alert notifications over SMTP
type EmailNotifier struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewEmailNotifier creates an SMTP notifier from configuration
func NewEmailNotifier(cfg *config.Config) *EmailNotifier {
	return &EmailNotifier{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.EmailFrom,
	}
}

// SendPriceAlert delivers a triggered-alert email
func (e *EmailNotifier) SendPriceAlert(ctx context.Context, msg PriceAlertMessage) error {
	if err := e.sendHTML(ctx, msg.To, msg.Subject(), msg.Body()); err != nil {
		return fmt.Errorf("failed to send price alert email: %w", err)
	}
	log.Printf("Price alert email sent to %s for %s", msg.To, msg.Symbol)
	return nil
}

// SendNewsDigest delivers the daily market-news digest email
func (e *EmailNotifier) SendNewsDigest(ctx context.Context, msg NewsDigestMessage) error {
	if err := e.sendHTML(ctx, msg.To, msg.Subject(), msg.Body()); err != nil {
		return fmt.Errorf("failed to send news digest email: %w", err)
	}
	log.Printf("News digest email sent to %s", msg.To)
	return nil
}

// sendHTML sends one HTML email over SMTP
func (e *EmailNotifier) sendHTML(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("recipient address is required")
	}

	headers := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		e.from, to, subject,
	)
	payload := []byte(headers + body)

	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	var auth smtp.Auth
	if e.username != "" && e.password != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	// smtp.SendMail does not take a context; honor cancellation before
	// committing to the dial.
	if err := ctx.Err(); err != nil {
		return err
	}

	return smtp.SendMail(addr, auth, e.from, []string{to}, payload)
}
