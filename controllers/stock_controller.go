package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"signalist_backend/services"
)

// StockController proxies market-data requests to the provider
type StockController struct {
	quotes *services.QuoteService
}

// NewStockController creates a new stock controller
func NewStockController(quotes *services.QuoteService) *StockController {
	return &StockController{quotes: quotes}
}

// GetQuote returns the current quote for a symbol
// GET /api/v1/stocks/:symbol/quote
func (sc *StockController) GetQuote(c *gin.Context) {
	symbol := c.Param("symbol")

	quote, err := sc.quotes.GetQuote(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "No quote available for " + symbol})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": quote})
}

// SearchStocks looks up instruments matching a query
// GET /api/v1/stocks/search?q=
func (sc *StockController) SearchStocks(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Query parameter q is required"})
		return
	}

	matches, err := sc.quotes.SearchSymbols(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Symbol search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": matches})
}

// GetMarketNews returns general market news
// GET /api/v1/market/news
func (sc *StockController) GetMarketNews(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "6"))

	articles, err := sc.quotes.GetMarketNews(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to fetch market news"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": articles})
}
