package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"signalist_backend/models"
)

// ErrUserNotFound is returned when no delivery address can be resolved
var ErrUserNotFound = errors.New("user not found")

// UserDirectory resolves user identities to delivery addresses. It reads
// the auth provider's user collection and never writes to it.
type UserDirectory struct {
	col *mongo.Collection
}

// NewUserDirectory creates a directory on the given database
func NewUserDirectory(db *mongo.Database) *UserDirectory {
	return &UserDirectory{col: db.Collection(UserCollection)}
}

// EmailForUser resolves a user id to an email address
func (d *UserDirectory) EmailForUser(ctx context.Context, userID string) (string, error) {
	user, err := d.findUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Email == "" {
		return "", ErrUserNotFound
	}
	return user.Email, nil
}

func (d *UserDirectory) findUser(ctx context.Context, userID string) (*models.User, error) {
	// The auth provider writes its own id field; older documents are
	// only addressable by _id.
	filters := bson.A{bson.M{"id": userID}}
	if oid, err := primitive.ObjectIDFromHex(userID); err == nil {
		filters = append(filters, bson.M{"_id": oid})
	}

	var user models.User
	err := d.col.FindOne(ctx, bson.M{"$or": filters}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return &user, nil
}

// ListWithEmail returns every user that has a usable delivery address
func (d *UserDirectory) ListWithEmail(ctx context.Context) ([]models.User, error) {
	cursor, err := d.col.Find(ctx, bson.M{"email": bson.M{"$exists": true, "$ne": ""}})
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			continue
		}
		if user.Email == "" || user.Name == "" {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}
