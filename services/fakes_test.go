package services

import (
	"context"
	"sort"
	"time"

	"stemarcade/models"
	"stemarcade/store"
)

// In-memory doubles for the persistence and transfer interfaces. Each fake
// exposes err fields to force failures in specific operations.

type fakeGameStore struct {
	games     map[string]*models.Game
	insertErr error
	getErr    error
	listErr   error
	updateErr error
	deleteErr error
	viewErr   error
	bumpErr   error
}

func newFakeGameStore() *fakeGameStore {
	return &fakeGameStore{games: make(map[string]*models.Game)}
}

func (f *fakeGameStore) Insert(_ context.Context, game *models.Game) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if game.CreatedAt.IsZero() {
		game.CreatedAt = time.Now().UTC()
	}
	cp := *game
	f.games[game.ID] = &cp
	return nil
}

func (f *fakeGameStore) Get(_ context.Context, id string) (*models.Game, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	game, ok := f.games[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *game
	return &cp, nil
}

func (f *fakeGameStore) List(_ context.Context) ([]models.Game, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Game, 0, len(f.games))
	for _, g := range f.games {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeGameStore) UpdateMetadata(_ context.Context, id, title, description, markdownText string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	game, ok := f.games[id]
	if !ok {
		return store.ErrNotFound
	}
	game.Title = title
	game.Description = description
	game.MarkdownText = markdownText
	return nil
}

func (f *fakeGameStore) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.games[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.games, id)
	return nil
}

func (f *fakeGameStore) IncrementViews(_ context.Context, id string) error {
	if f.viewErr != nil {
		return f.viewErr
	}
	game, ok := f.games[id]
	if !ok {
		return store.ErrNotFound
	}
	game.ViewCount++
	return nil
}

func (f *fakeGameStore) BumpAssetVersion(_ context.Context, id string) error {
	if f.bumpErr != nil {
		return f.bumpErr
	}
	game, ok := f.games[id]
	if !ok {
		return store.ErrNotFound
	}
	game.AssetVersion++
	return nil
}

func newFeedback(gameID, comment string) *models.Feedback {
	return &models.Feedback{GameID: gameID, Comment: comment}
}

type fakeFeedbackStore struct {
	items     []models.Feedback
	insertErr error
	listErr   error
	deleteErr error
}

func (f *fakeFeedbackStore) Insert(_ context.Context, fb *models.Feedback) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	f.items = append(f.items, *fb)
	return nil
}

func (f *fakeFeedbackStore) ListByGame(_ context.Context, gameID string) ([]models.Feedback, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Feedback
	for _, fb := range f.items {
		if fb.GameID == gameID {
			out = append(out, fb)
		}
	}
	return out, nil
}

func (f *fakeFeedbackStore) DeleteByGame(_ context.Context, gameID string) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	var kept []models.Feedback
	var removed int64
	for _, fb := range f.items {
		if fb.GameID == gameID {
			removed++
			continue
		}
		kept = append(kept, fb)
	}
	f.items = kept
	return removed, nil
}

type fakeConfigStore struct {
	url    string
	getErr error
	setErr error
}

func (f *fakeConfigStore) GetBackendURL(_ context.Context) (string, error) {
	return f.url, f.getErr
}

func (f *fakeConfigStore) SetBackendURL(_ context.Context, url string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.url = url
	return nil
}

type fakeFileTransfer struct {
	uploads     []UploadRequest
	reuploads   []string
	deletes     []string
	feedbacks   map[string][]string
	uploadErr   error
	reuploadErr error
	deleteErr   error
	feedbackErr error
}

func newFakeFileTransfer() *fakeFileTransfer {
	return &fakeFileTransfer{feedbacks: make(map[string][]string)}
}

func (f *fakeFileTransfer) Upload(_ context.Context, req UploadRequest) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.uploads = append(f.uploads, req)
	return nil
}

func (f *fakeFileTransfer) Reupload(_ context.Context, id string, _, _ *Asset) error {
	if f.reuploadErr != nil {
		return f.reuploadErr
	}
	f.reuploads = append(f.reuploads, id)
	return nil
}

func (f *fakeFileTransfer) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeFileTransfer) Feedback(_ context.Context, id, text string) error {
	if f.feedbackErr != nil {
		return f.feedbackErr
	}
	f.feedbacks[id] = append(f.feedbacks[id], text)
	return nil
}

type fakeNotifier struct {
	scopes []string
}

func (f *fakeNotifier) Notify(scope string) {
	f.scopes = append(f.scopes, scope)
}

type fakeResolver struct {
	url string
	err error
}

func (f *fakeResolver) BackendURL(_ context.Context) (string, error) {
	return f.url, f.err
}
