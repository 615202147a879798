package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"signalist_backend/config"
)

// MongoDB collection names
const (
	AlertCollection     = "alerts"
	WatchlistCollection = "watchlists"
	UserCollection      = "user" // owned by the auth provider, read-only here
)

// MongoClient wraps the MongoDB connection. It is constructed once at
// process start, handed to the stores that need it, and closed at shutdown.
type MongoClient struct {
	client   *mongo.Client
	database *mongo.Database
}

// ConnectMongo establishes the MongoDB connection and verifies it with a ping.
func ConnectMongo(cfg *config.Config) (*MongoClient, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetMaxPoolSize(10).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(30 * time.Second).
		SetConnectTimeout(30 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	mc := &MongoClient{
		client:   client,
		database: client.Database(cfg.MongoDBName),
	}
	mc.createIndexes()

	log.Println("MongoDB connected successfully")
	return mc, nil
}

// Database returns the application database handle
func (m *MongoClient) Database() *mongo.Database {
	return m.database
}

// Ping verifies the connection is still alive
func (m *MongoClient) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (m *MongoClient) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// createIndexes creates necessary indexes for collections
func (m *MongoClient) createIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	alerts := m.database.Collection(AlertCollection)
	alerts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
	})

	watchlists := m.database.Collection(WatchlistCollection)
	watchlists.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "symbol", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	log.Println("MongoDB indexes created")
}
