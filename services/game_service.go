package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"stemarcade/models"
	"stemarcade/store"
)

// GameStore persists game metadata records.
type GameStore interface {
	Insert(ctx context.Context, game *models.Game) error
	Get(ctx context.Context, id string) (*models.Game, error)
	List(ctx context.Context) ([]models.Game, error)
	UpdateMetadata(ctx context.Context, id, title, description, markdownText string) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	BumpAssetVersion(ctx context.Context, id string) error
}

// GameService coordinates the metadata store and the file backend. The two
// systems share nothing but the game id, and there is no cross-system
// transaction: each operation orders its writes so that the catalog never
// lists a game whose upload failed, while orphaned files on the backend are
// tolerated and logged.
type GameService struct {
	games    GameStore
	feedback FeedbackStore
	files    FileTransfer
	config   BackendResolver
	hub      Notifier
}

func NewGameService(games GameStore, feedback FeedbackStore, files FileTransfer, config BackendResolver, hub Notifier) *GameService {
	return &GameService{
		games:    games,
		feedback: feedback,
		files:    files,
		config:   config,
		hub:      hub,
	}
}

type CreateGameRequest struct {
	Title        string
	Description  string
	MarkdownText string
	Zip          *Asset
	Thumbnail    *Asset
}

type UpdateGameRequest struct {
	Title        string
	Description  string
	MarkdownText string
}

// GameDetail is a game record decorated with everything the play page
// needs: rendered markdown and backend-addressed asset URLs.
type GameDetail struct {
	models.Game
	DetailHTML   string `json:"detail_html"`
	PlayURL      string `json:"play_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

// Catalog is the public game listing plus the backend URL clients need to
// reach the embedded player.
type Catalog struct {
	BackendURL string       `json:"backend_url"`
	Games      []GameDetail `json:"games"`
}

// NewGameID generates a collision-resistant identifier from the current
// time and a random suffix. The id is immutable once assigned and is used
// both as the document key and as the backend folder name.
func NewGameID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return fmt.Sprintf("game_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(b)[:7])
}

// Create validates the request, pushes any binary assets to the file
// backend, and only then writes the metadata record. A failed transfer
// aborts the whole operation so no metadata ever points at missing content.
// The reverse failure (metadata write after a successful transfer) leaves
// orphaned files behind; that inconsistency is logged and accepted.
func (s *GameService) Create(ctx context.Context, req CreateGameRequest) (*models.Game, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	game := &models.Game{
		ID:           NewGameID(),
		Title:        title,
		Description:  req.Description,
		MarkdownText: req.MarkdownText,
	}

	if req.Zip != nil || req.Thumbnail != nil {
		if err := s.files.Upload(ctx, UploadRequest{
			ID:           game.ID,
			Title:        title,
			Description:  req.Description,
			MarkdownText: req.MarkdownText,
			Zip:          req.Zip,
			Thumbnail:    req.Thumbnail,
		}); err != nil {
			return nil, err
		}
		game.AssetVersion = 1
	}

	if err := s.games.Insert(ctx, game); err != nil {
		slog.Error("metadata insert failed after file upload, backend files orphaned",
			"game_id", game.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.notify(ScopeGames)
	return game, nil
}

// UpdateMetadata mutates title, description and detail text only; files are
// untouched.
func (s *GameService) UpdateMetadata(ctx context.Context, id string, req UpdateGameRequest) error {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	err := s.games.UpdateMetadata(ctx, id, title, req.Description, req.MarkdownText)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.notify(ScopeGames)
	return nil
}

// ReuploadFiles replaces the zip bundle and/or thumbnail in place on the
// backend. On success the asset version advances so clients stop serving
// cached copies of the old thumbnail; metadata is untouched either way.
func (s *GameService) ReuploadFiles(ctx context.Context, id string, zip, thumbnail *Asset) error {
	if zip == nil && thumbnail == nil {
		return fmt.Errorf("%w: provide a zip bundle, a thumbnail, or both", ErrInvalidInput)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.files.Reupload(ctx, id, zip, thumbnail); err != nil {
		return err
	}

	if err := s.games.BumpAssetVersion(ctx, id); err != nil {
		// The files are already replaced; a missed version bump only delays
		// cache invalidation until the next successful reupload.
		slog.Warn("asset version bump failed after reupload", "game_id", id, "error", err)
	}

	s.notify(ScopeGames)
	return nil
}

// Delete removes a game in three phases: backend files, metadata record,
// feedback records. Phase one is best-effort only; a dead backend must not
// keep a game visible in the catalog, even at the cost of orphaned files.
func (s *GameService) Delete(ctx context.Context, id string) error {
	if err := s.files.Delete(ctx, id); err != nil {
		slog.Warn("backend file delete failed, removing metadata anyway",
			"game_id", id, "error", err)
	}

	err := s.games.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if n, err := s.feedback.DeleteByGame(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	} else if n > 0 {
		slog.Info("deleted feedback for removed game", "game_id", id, "count", n)
	}

	s.notify(ScopeGames)
	return nil
}

func (s *GameService) Get(ctx context.Context, id string) (*models.Game, error) {
	game, err := s.games.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return game, nil
}

// GetDetail loads one game with rendered markdown and asset URLs. A missing
// backend URL degrades the response (no play/thumbnail links) rather than
// failing it.
func (s *GameService) GetDetail(ctx context.Context, id string) (*GameDetail, error) {
	game, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	base := s.resolveBackend(ctx)

	detail := s.decorate(*game, base)
	detail.DetailHTML = RenderMarkdown(game.MarkdownText)
	return &detail, nil
}

// ListCatalog returns all games, newest first, plus the backend URL.
func (s *GameService) ListCatalog(ctx context.Context) (*Catalog, error) {
	games, err := s.games.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	base := s.resolveBackend(ctx)

	catalog := &Catalog{BackendURL: base, Games: make([]GameDetail, 0, len(games))}
	for _, g := range games {
		catalog.Games = append(catalog.Games, s.decorate(g, base))
	}
	return catalog, nil
}

// IncrementViews bumps the monotonic view counter; fired when the play page
// loads.
func (s *GameService) IncrementViews(ctx context.Context, id string) error {
	err := s.games.IncrementViews(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: game %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *GameService) decorate(game models.Game, base string) GameDetail {
	detail := GameDetail{Game: game}
	if base != "" {
		detail.PlayURL = fmt.Sprintf("%s/games/%s/", base, game.ID)
		detail.ThumbnailURL = fmt.Sprintf("%s/games/%s/img.png?v=%d", base, game.ID, game.AssetVersion)
	}
	return detail
}

func (s *GameService) resolveBackend(ctx context.Context) string {
	base, err := s.config.BackendURL(ctx)
	if err != nil {
		slog.Warn("backend url lookup failed, rendering catalog without asset links", "error", err)
		return ""
	}
	return strings.TrimRight(base, "/")
}

func (s *GameService) notify(scope string) {
	if s.hub != nil {
		s.hub.Notify(scope)
	}
}
