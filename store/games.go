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

const GamesCollection = "games"

type Games struct {
	col *mongo.Collection
}

func NewGames(db *mongo.Database) *Games {
	return &Games{col: db.Collection(GamesCollection)}
}

// Insert writes a new game record. The creation timestamp is assigned here,
// on write, never by the caller.
func (s *Games) Insert(ctx context.Context, game *models.Game) error {
	game.CreatedAt = time.Now().UTC()
	if _, err := s.col.InsertOne(ctx, game); err != nil {
		return fmt.Errorf("insert game %s: %w", game.ID, err)
	}
	return nil
}

func (s *Games) Get(ctx context.Context, id string) (*models.Game, error) {
	var game models.Game
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&game)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", id, err)
	}
	return &game, nil
}

func (s *Games) List(ctx context.Context) ([]models.Game, error) {
	cur, err := s.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	games := []models.Game{}
	if err := cur.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("decode games: %w", err)
	}
	return games, nil
}

func (s *Games) UpdateMetadata(ctx context.Context, id, title, description, markdownText string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":         title,
		"description":   description,
		"markdown_text": markdownText,
	}})
	if err != nil {
		return fmt.Errorf("update game %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Games) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Games) IncrementViews(ctx context.Context, id string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{"view_count": 1}})
	if err != nil {
		return fmt.Errorf("increment views for game %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// BumpAssetVersion advances the cache-busting version after a zip or
// thumbnail has been replaced in place on the file backend.
func (s *Games) BumpAssetVersion(ctx context.Context, id string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{"asset_version": 1}})
	if err != nil {
		return fmt.Errorf("bump asset version for game %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
