package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"signalist_backend/models"
)

// Store-level errors callers branch on
var (
	ErrAlertNotFound  = errors.New("alert not found")
	ErrDuplicateAlert = errors.New("This alert already exists")
)

// AlertStore is the persistence boundary for alert documents
type AlertStore struct {
	col *mongo.Collection
}

// NewAlertStore creates an alert store on the given database
func NewAlertStore(db *mongo.Database) *AlertStore {
	return &AlertStore{col: db.Collection(AlertCollection)}
}

// ListActive returns all alerts eligible for evaluation
func (s *AlertStore) ListActive(ctx context.Context) ([]models.Alert, error) {
	cursor, err := s.col.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, fmt.Errorf("failed to query active alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []models.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode active alerts: %w", err)
	}
	return alerts, nil
}

// ListByUser returns every alert owned by the given user, newest first
func (s *AlertStore) ListByUser(ctx context.Context, userID string) ([]models.Alert, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts for user: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []models.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %w", err)
	}
	return alerts, nil
}

// Create validates and persists a new alert. An alert with the same
// user, symbol, condition and threshold is rejected as a duplicate.
func (s *AlertStore) Create(ctx context.Context, alert *models.Alert) error {
	alert.Normalize()
	if err := alert.Validate(); err != nil {
		return err
	}

	dup := s.col.FindOne(ctx, bson.M{
		"userId":         alert.UserID,
		"symbol":         alert.Symbol,
		"condition":      alert.Condition,
		"thresholdValue": alert.ThresholdValue,
	})
	if dup.Err() == nil {
		return ErrDuplicateAlert
	}
	if !errors.Is(dup.Err(), mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to check for duplicate alert: %w", dup.Err())
	}

	now := time.Now().UTC()
	alert.IsActive = true
	alert.CreatedAt = now
	alert.UpdatedAt = now

	res, err := s.col.InsertOne(ctx, alert)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		alert.ID = oid
	}
	return nil
}

// Delete removes an alert. The filter is owner-scoped so a user can
// only delete their own alerts.
func (s *AlertStore) Delete(ctx context.Context, id primitive.ObjectID, userID string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// SetActive updates the activation flag. This is the only write the
// alert checker performs.
func (s *AlertStore) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := s.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to update alert activation: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// Toggle flips the activation flag atomically and returns the updated alert
func (s *AlertStore) Toggle(ctx context.Context, id primitive.ObjectID, userID string) (*models.Alert, error) {
	update := bson.A{
		bson.M{"$set": bson.M{
			"isActive":  bson.M{"$not": "$isActive"},
			"updatedAt": "$$NOW",
		}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var alert models.Alert
	err := s.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "userId": userID}, update, opts).Decode(&alert)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to toggle alert: %w", err)
	}
	return &alert, nil
}
