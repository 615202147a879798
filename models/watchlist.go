package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrWatchlistSymbolRequired is returned when adding an empty symbol
var ErrWatchlistSymbolRequired = errors.New("Symbol is required")

// WatchlistItem represents one symbol on a user's watchlist
type WatchlistItem struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID  string             `bson:"userId" json:"user_id"`
	Symbol  string             `bson:"symbol" json:"symbol"`
	Company string             `bson:"company" json:"company"`
	AddedAt time.Time          `bson:"addedAt" json:"added_at"`
}

// Normalize uppercases the symbol and defaults the company label
func (w *WatchlistItem) Normalize() {
	w.Symbol = strings.ToUpper(strings.TrimSpace(w.Symbol))
	w.Company = strings.TrimSpace(w.Company)
	if w.Company == "" {
		w.Company = w.Symbol
	}
}

// Validate checks the item before persisting
func (w *WatchlistItem) Validate() error {
	if w.Symbol == "" {
		return ErrWatchlistSymbolRequired
	}
	return nil
}
