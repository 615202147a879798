package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is a read-only view of the documents the auth provider keeps in
// the "user" collection. The backend never writes to that collection.
type User struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	AuthID  string             `bson:"id,omitempty" json:"id"`
	Email   string             `bson:"email" json:"email"`
	Name    string             `bson:"name" json:"name"`
	Country string             `bson:"country,omitempty" json:"country,omitempty"`
}
