package models

import (
	"time"
)

// Feedback is an anonymous visitor comment on a game. Records are append-only
// and are removed only as a side effect of deleting the owning game.
type Feedback struct {
	ID        string    `json:"id" bson:"_id"`
	GameID    string    `json:"game_id" bson:"game_id"`
	Comment   string    `json:"comment" bson:"comment"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
