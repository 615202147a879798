package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"signalist_backend/models"
)

// ErrWatchlistItemNotFound is returned when removing a symbol the user is not watching
var ErrWatchlistItemNotFound = errors.New("watchlist item not found")

// WatchlistService manages per-user symbol watchlists
type WatchlistService struct {
	col *mongo.Collection
}

// NewWatchlistService creates a watchlist service on the given database
func NewWatchlistService(db *mongo.Database) *WatchlistService {
	return &WatchlistService{col: db.Collection(WatchlistCollection)}
}

// List returns the user's watchlist, most recently added first
func (s *WatchlistService) List(ctx context.Context, userID string) ([]models.WatchlistItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "addedAt", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.WatchlistItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode watchlist: %w", err)
	}
	return items, nil
}

// Add puts a symbol on the user's watchlist. Adding a symbol that is
// already watched refreshes the entry instead of failing.
func (s *WatchlistService) Add(ctx context.Context, item *models.WatchlistItem) error {
	item.Normalize()
	if err := item.Validate(); err != nil {
		return err
	}
	item.AddedAt = time.Now().UTC()

	filter := bson.M{"userId": item.UserID, "symbol": item.Symbol}
	update := bson.M{"$set": bson.M{
		"company": item.Company,
		"addedAt": item.AddedAt,
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := s.col.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to add %s to watchlist: %w", item.Symbol, err)
	}
	return nil
}

// Remove takes a symbol off the user's watchlist
func (s *WatchlistService) Remove(ctx context.Context, userID, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	res, err := s.col.DeleteOne(ctx, bson.M{"userId": userID, "symbol": symbol})
	if err != nil {
		return fmt.Errorf("failed to remove %s from watchlist: %w", symbol, err)
	}
	if res.DeletedCount == 0 {
		return ErrWatchlistItemNotFound
	}
	return nil
}
