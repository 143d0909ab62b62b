package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"stemarcade/models"
)

// FeedbackStore persists visitor comments.
type FeedbackStore interface {
	Insert(ctx context.Context, fb *models.Feedback) error
	ListByGame(ctx context.Context, gameID string) ([]models.Feedback, error)
	DeleteByGame(ctx context.Context, gameID string) (int64, error)
}

// FeedbackService records anonymous comments in two places: the backend's
// per-game flat-file log and the database. The backend copy is
// authoritative for this flow, which gives the error policy its asymmetry:
// a backend failure blocks the submission, a database failure after a
// successful backend write is only logged.
type FeedbackService struct {
	store FeedbackStore
	files FileTransfer
}

func NewFeedbackService(store FeedbackStore, files FileTransfer) *FeedbackService {
	return &FeedbackService{store: store, files: files}
}

// Submit validates and records one comment. Blank comments are rejected
// before any network call.
func (s *FeedbackService) Submit(ctx context.Context, gameID, comment string) error {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return fmt.Errorf("%w: write something before sending", ErrEmptyComment)
	}

	if err := s.files.Feedback(ctx, gameID, comment); err != nil {
		return err
	}

	fb := &models.Feedback{GameID: gameID, Comment: comment}
	if err := s.store.Insert(ctx, fb); err != nil {
		// The backend log already has the comment; the visitor is told the
		// submission succeeded.
		slog.Error("feedback database write failed after backend write",
			"game_id", gameID, "error", err)
	}
	return nil
}

func (s *FeedbackService) ListByGame(ctx context.Context, gameID string) ([]models.Feedback, error) {
	fbs, err := s.store.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return fbs, nil
}
