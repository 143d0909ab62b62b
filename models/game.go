package models

import (
	"time"
)

// Game is one playable entry in the arcade catalog. The ID doubles as the
// folder name under which the file backend stores the game's zip bundle and
// thumbnail, so it must never change after creation.
type Game struct {
	ID           string    `json:"id" bson:"_id"`
	Title        string    `json:"title" bson:"title"`
	Description  string    `json:"description" bson:"description"`
	MarkdownText string    `json:"markdown_text" bson:"markdown_text"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	ViewCount    int64     `json:"view_count" bson:"view_count"`
	// AssetVersion increments whenever the zip or thumbnail is replaced in
	// place; clients append it to asset URLs to defeat stale caches.
	AssetVersion int64 `json:"asset_version" bson:"asset_version"`
}
