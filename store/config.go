package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stemarcade/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ConfigCollection = "config"

	// backendConfigKey is the fixed key of the singleton config document.
	backendConfigKey = "backend"
)

type Config struct {
	col *mongo.Collection
}

func NewConfig(db *mongo.Database) *Config {
	return &Config{col: db.Collection(ConfigCollection)}
}

// GetBackendURL returns the saved file backend base URL, or an empty string
// if the singleton document has never been written.
func (s *Config) GetBackendURL(ctx context.Context) (string, error) {
	var cfg models.AppConfig
	err := s.col.FindOne(ctx, bson.M{"_id": backendConfigKey}).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get backend url: %w", err)
	}
	return cfg.BackendURL, nil
}

// SetBackendURL upserts the singleton config document.
func (s *Config) SetBackendURL(ctx context.Context, url string) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": backendConfigKey},
		bson.M{"$set": bson.M{
			"backend_url": url,
			"updated_at":  time.Now().UTC(),
		}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set backend url: %w", err)
	}
	return nil
}
