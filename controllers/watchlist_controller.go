package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"signalist_backend/middleware"
	"signalist_backend/models"
	"signalist_backend/services"
)

// WatchlistController handles watchlist requests
type WatchlistController struct {
	watchlists *services.WatchlistService
}

// NewWatchlistController creates a new watchlist controller
func NewWatchlistController(watchlists *services.WatchlistService) *WatchlistController {
	return &WatchlistController{watchlists: watchlists}
}

// AddWatchlistRequest is the payload for watching a symbol
type AddWatchlistRequest struct {
	Symbol  string `json:"symbol"`
	Company string `json:"company"`
}

// GetWatchlist returns the authenticated user's watchlist
// GET /api/v1/watchlist
func (wc *WatchlistController) GetWatchlist(c *gin.Context) {
	items, err := wc.watchlists.List(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch watchlist"})
		return
	}
	if items == nil {
		items = []models.WatchlistItem{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items})
}

// AddToWatchlist puts a symbol on the authenticated user's watchlist
// POST /api/v1/watchlist
func (wc *WatchlistController) AddToWatchlist(c *gin.Context) {
	var req AddWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	item := models.WatchlistItem{
		UserID:  middleware.CurrentUserID(c),
		Symbol:  req.Symbol,
		Company: req.Company,
	}
	if err := wc.watchlists.Add(c.Request.Context(), &item); err != nil {
		if errors.Is(err, models.ErrWatchlistSymbolRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update watchlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Added to watchlist"})
}

// RemoveFromWatchlist takes a symbol off the authenticated user's watchlist
// DELETE /api/v1/watchlist/:symbol
func (wc *WatchlistController) RemoveFromWatchlist(c *gin.Context) {
	symbol := c.Param("symbol")
	if err := wc.watchlists.Remove(c.Request.Context(), middleware.CurrentUserID(c), symbol); err != nil {
		if errors.Is(err, services.ErrWatchlistItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Symbol not on watchlist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update watchlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Removed from watchlist"})
}
