package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"signalist_backend/config"
)

// FinnhubQuote represents the quote response from the Finnhub API
type FinnhubQuote struct {
	Current       float64 `json:"c"`  // Current price
	Change        float64 `json:"d"`  // Change
	PercentChange float64 `json:"dp"` // Percent change
	High          float64 `json:"h"`  // High price of the day
	Low           float64 `json:"l"`  // Low price of the day
	Open          float64 `json:"o"`  // Open price of the day
	PrevClose     float64 `json:"pc"` // Previous close price
	Timestamp     int64   `json:"t"`  // Quote timestamp
}

// SymbolMatch represents one result from symbol search
type SymbolMatch struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	DisplaySym  string `json:"displaySymbol"`
	Type        string `json:"type"`
}

// finnhubSearchResponse wraps the search results
type finnhubSearchResponse struct {
	Count  int           `json:"count"`
	Result []SymbolMatch `json:"result"`
}

// NewsArticle represents one market news article
type NewsArticle struct {
	ID       int64  `json:"id"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	URL      string `json:"url"`
	Image    string `json:"image"`
	Datetime int64  `json:"datetime"`
	Category string `json:"category"`
	Related  string `json:"related"`
}

// QuoteService is the market-data provider client
type QuoteService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewQuoteService creates a market-data client from configuration
func NewQuoteService(cfg *config.Config) *QuoteService {
	return &QuoteService{
		baseURL: strings.TrimRight(cfg.FinnhubBaseURL, "/"),
		apiKey:  cfg.FinnhubAPIKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetPrice returns the current price for a symbol. The provider returns
// an all-zero quote for unknown symbols; that is reported as an error so
// stale alerts on delisted symbols never evaluate against zero.
func (q *QuoteService) GetPrice(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, fmt.Errorf("symbol is required")
	}

	var quote FinnhubQuote
	if err := q.get(ctx, "/quote", url.Values{"symbol": {symbol}}, &quote); err != nil {
		return 0, err
	}
	if quote.Current <= 0 && quote.Timestamp == 0 {
		return 0, fmt.Errorf("no price data for %s", symbol)
	}
	return quote.Current, nil
}

// GetQuote returns the full quote for a symbol
func (q *QuoteService) GetQuote(ctx context.Context, symbol string) (*FinnhubQuote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	var quote FinnhubQuote
	if err := q.get(ctx, "/quote", url.Values{"symbol": {symbol}}, &quote); err != nil {
		return nil, err
	}
	if quote.Current <= 0 && quote.Timestamp == 0 {
		return nil, fmt.Errorf("no price data for %s", symbol)
	}
	return &quote, nil
}

// SearchSymbols looks up instruments matching the query
func (q *QuoteService) SearchSymbols(ctx context.Context, query string) ([]SymbolMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}

	var resp finnhubSearchResponse
	if err := q.get(ctx, "/search", url.Values{"q": {query}}, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// GetMarketNews returns general market news articles
func (q *QuoteService) GetMarketNews(ctx context.Context, limit int) ([]NewsArticle, error) {
	var articles []NewsArticle
	if err := q.get(ctx, "/news", url.Values{"category": {"general"}}, &articles); err != nil {
		return nil, err
	}
	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	return articles, nil
}

// get performs one provider API call and decodes the JSON response
func (q *QuoteService) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	params.Set("token", q.apiKey)
	endpoint := q.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch from provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider error (status %d): %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
