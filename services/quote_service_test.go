package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signalist_backend/config"
)

func newTestQuoteService(handler http.Handler) (*QuoteService, *httptest.Server) {
	server := httptest.NewServer(handler)
	svc := NewQuoteService(&config.Config{
		FinnhubBaseURL: server.URL,
		FinnhubAPIKey:  "test-token",
	})
	return svc, server
}

func TestGetPrice(t *testing.T) {
	svc, server := newTestQuoteService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))
		w.Write([]byte(`{"c":150.25,"d":1.5,"dp":1.0,"h":151,"l":148,"o":149,"pc":148.75,"t":1700000000}`))
	}))
	defer server.Close()

	price, err := svc.GetPrice(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, 150.25, price)
}

func TestGetPriceUnknownSymbol(t *testing.T) {
	// Finnhub answers unknown symbols with an all-zero quote.
	svc, server := newTestQuoteService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"c":0,"d":0,"dp":0,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	}))
	defer server.Close()

	_, err := svc.GetPrice(context.Background(), "NOPE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no price data")
}

func TestGetPriceEmptySymbol(t *testing.T) {
	svc, server := newTestQuoteService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty symbol")
	}))
	defer server.Close()

	_, err := svc.GetPrice(context.Background(), "  ")
	assert.Error(t, err)
}

func TestGetPriceProviderError(t *testing.T) {
	svc, server := newTestQuoteService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`rate limited`))
	}))
	defer server.Close()

	_, err := svc.GetPrice(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestGetQuote(t *testing.T) {
	svc, server := newTestQuoteService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"c":310,"d":-2.5,"dp":-0.8,"h":315,"l":308,"o":312,"pc":312.5,"t":1700000000}`))
	}))
	defer server.Close()

	quote, err := svc.GetQuote(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 310.0, quote.Current)
	assert.Equal(t, 312.5, quote.PrevClose)
}

func TestSearchSymbols(t *testing.T) {
	svc, server := newTestQuoteService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "apple", r.URL.Query().Get("q"))
		w.Write([]byte(`{"count":1,"result":[{"symbol":"AAPL","description":"APPLE INC","displaySymbol":"AAPL","type":"Common Stock"}]}`))
	}))
	defer server.Close()

	matches, err := svc.SearchSymbols(context.Background(), "apple")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "AAPL", matches[0].Symbol)
}

func TestSearchSymbolsEmptyQuery(t *testing.T) {
	svc, server := newTestQuoteService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an empty query")
	}))
	defer server.Close()

	_, err := svc.SearchSymbols(context.Background(), "")
	assert.Error(t, err)
}

func TestGetMarketNewsLimit(t *testing.T) {
	svc, server := newTestQuoteService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/news", r.URL.Path)
		assert.Equal(t, "general", r.URL.Query().Get("category"))
		w.Write([]byte(`[
			{"id":1,"headline":"one","source":"a","datetime":1700000000},
			{"id":2,"headline":"two","source":"b","datetime":1700000100},
			{"id":3,"headline":"three","source":"c","datetime":1700000200}
		]`))
	}))
	defer server.Close()

	articles, err := svc.GetMarketNews(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "one", articles[0].Headline)
}
