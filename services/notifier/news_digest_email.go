package notifier

import (
	"fmt"
	"strings"
	"time"
)

// DigestArticle is one market-news article rendered into the digest email
type DigestArticle struct {
	Headline string
	Summary  string
	Source   string
	URL      string
}

// NewsDigestMessage carries one user's daily market-news email
type NewsDigestMessage struct {
	To       string
	Name     string
	Date     time.Time
	Articles []DigestArticle
}

// Subject renders the digest subject line
func (m NewsDigestMessage) Subject() string {
	return fmt.Sprintf("📈 Market News Summary Today - %s", m.Date.Format("January 2, 2006"))
}

// Body renders the HTML digest body
func (m NewsDigestMessage) Body() string {
	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html><html><body style="margin:0;padding:0;background-color:#050505;font-family:-apple-system,'Segoe UI',Roboto,sans-serif;">`)
	sb.WriteString(`<div style="max-width:600px;margin:40px auto;background-color:#141414;border:1px solid #30333A;border-radius:12px;padding:30px;color:#ffffff;">`)
	sb.WriteString(`<h1 style="margin:0 0 6px 0;font-size:24px;">Market News Summary</h1>`)
	sb.WriteString(fmt.Sprintf(`<p style="margin:0 0 20px 0;font-size:14px;color:#9ca3af;">%s</p>`, m.Date.Format("Monday, January 2, 2006")))
	if m.Name != "" {
		sb.WriteString(fmt.Sprintf(`<p style="margin:0 0 20px 0;font-size:14px;">Hi %s, here's what's moving the markets today.</p>`, m.Name))
	}

	if len(m.Articles) == 0 {
		sb.WriteString(`<p style="margin:0;font-size:14px;color:#9ca3af;">No market news available today.</p>`)
	}
	for _, article := range m.Articles {
		sb.WriteString(`<div style="background-color:#1e293b;border:1px solid #334155;border-radius:8px;padding:16px;margin:0 0 14px 0;">`)
		if article.URL != "" {
			sb.WriteString(fmt.Sprintf(`<a href="%s" style="color:#10b981;font-size:15px;font-weight:600;text-decoration:none;">%s</a>`, article.URL, article.Headline))
		} else {
			sb.WriteString(fmt.Sprintf(`<span style="color:#ffffff;font-size:15px;font-weight:600;">%s</span>`, article.Headline))
		}
		if article.Summary != "" {
			sb.WriteString(fmt.Sprintf(`<p style="margin:8px 0 0 0;font-size:13px;color:#d1d5db;">%s</p>`, article.Summary))
		}
		if article.Source != "" {
			sb.WriteString(fmt.Sprintf(`<p style="margin:8px 0 0 0;font-size:12px;color:#6b7280;">%s</p>`, article.Source))
		}
		sb.WriteString(`</div>`)
	}

	sb.WriteString(`<p style="margin:20px 0 0 0;font-size:13px;color:#9ca3af;text-align:center;">You're receiving this because you have a Signalist account.</p>`)
	sb.WriteString(`</div></body></html>`)
	return sb.String()
}
