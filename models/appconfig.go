package models

import (
	"time"
)

// AppConfig is the singleton configuration document. Only one record exists,
// stored under a fixed key.
type AppConfig struct {
	ID         string    `json:"id" bson:"_id"`
	BackendURL string    `json:"backend_url" bson:"backend_url"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}
