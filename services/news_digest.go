package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"signalist_backend/models"
	"signalist_backend/services/notifier"
)

// DigestArticleLimit caps how many articles go into one digest email
const DigestArticleLimit = 6

// RecipientLister returns the users eligible for the news digest
type RecipientLister interface {
	ListWithEmail(ctx context.Context) ([]models.User, error)
}

// NewsFetcher returns general market news
type NewsFetcher interface {
	GetMarketNews(ctx context.Context, limit int) ([]NewsArticle, error)
}

// DigestSender delivers one digest email
type DigestSender interface {
	SendNewsDigest(ctx context.Context, msg notifier.NewsDigestMessage) error
}

// DigestSummary reports the outcome of one digest run
type DigestSummary struct {
	Recipients int      `json:"recipients"`
	EmailsSent int      `json:"emails_sent"`
	Errors     []string `json:"errors"`
}

// NewsDigest sends the daily market-news email to every user with a
// usable address. The same article set goes to everyone; per-user send
// failures never abort the run.
type NewsDigest struct {
	directory RecipientLister
	news      NewsFetcher
	sender    DigestSender
}

// NewNewsDigest wires the digest's collaborators
func NewNewsDigest(directory RecipientLister, news NewsFetcher, sender DigestSender) *NewsDigest {
	return &NewsDigest{directory: directory, news: news, sender: sender}
}

// Run sends one digest to every recipient and returns the run summary
func (d *NewsDigest) Run(ctx context.Context) DigestSummary {
	var summary DigestSummary

	recipients, err := d.directory.ListWithEmail(ctx)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("load recipients: %v", err))
		log.Printf("Error loading news digest recipients: %v", err)
		return summary
	}
	summary.Recipients = len(recipients)
	if len(recipients) == 0 {
		return summary
	}

	// One news fetch shared by every recipient. The digest still goes
	// out on a fetch failure, carrying the empty-news fallback.
	var articles []notifier.DigestArticle
	fetched, err := d.news.GetMarketNews(ctx, DigestArticleLimit)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("fetch market news: %v", err))
		log.Printf("Error fetching market news for digest: %v", err)
	}
	for _, article := range fetched {
		articles = append(articles, notifier.DigestArticle{
			Headline: article.Headline,
			Summary:  article.Summary,
			Source:   article.Source,
			URL:      article.URL,
		})
	}

	today := time.Now().UTC()
	for _, user := range recipients {
		msg := notifier.NewsDigestMessage{
			To:       user.Email,
			Name:     user.Name,
			Date:     today,
			Articles: articles,
		}
		if err := d.sender.SendNewsDigest(ctx, msg); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("send to %s: %v", user.Email, err))
			log.Printf("Error sending news digest to %s: %v", user.Email, err)
			continue
		}
		summary.EmailsSent++
	}

	return summary
}
