package store

import (
	"context"
	"fmt"
	"time"

	"stemarcade/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const FeedbackCollection = "feedbacks"

type Feedback struct {
	col *mongo.Collection
}

func NewFeedback(db *mongo.Database) *Feedback {
	return &Feedback{col: db.Collection(FeedbackCollection)}
}

func (s *Feedback) Insert(ctx context.Context, fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = primitive.NewObjectID().Hex()
	}
	fb.CreatedAt = time.Now().UTC()
	if _, err := s.col.InsertOne(ctx, fb); err != nil {
		return fmt.Errorf("insert feedback for game %s: %w", fb.GameID, err)
	}
	return nil
}

func (s *Feedback) ListByGame(ctx context.Context, gameID string) ([]models.Feedback, error) {
	cur, err := s.col.Find(ctx, bson.M{"game_id": gameID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list feedback for game %s: %w", gameID, err)
	}
	fbs := []models.Feedback{}
	if err := cur.All(ctx, &fbs); err != nil {
		return nil, fmt.Errorf("decode feedback: %w", err)
	}
	return fbs, nil
}

// DeleteByGame removes every feedback record referencing the game and
// reports how many were deleted.
func (s *Feedback) DeleteByGame(ctx context.Context, gameID string) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"game_id": gameID})
	if err != nil {
		return 0, fmt.Errorf("delete feedback for game %s: %w", gameID, err)
	}
	return res.DeletedCount, nil
}
