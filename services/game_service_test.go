package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newGameServiceForTest() (*GameService, *fakeGameStore, *fakeFeedbackStore, *fakeFileTransfer, *fakeNotifier) {
	games := newFakeGameStore()
	feedback := &fakeFeedbackStore{}
	files := newFakeFileTransfer()
	hub := &fakeNotifier{}
	svc := NewGameService(games, feedback, files, &fakeResolver{url: "http://files.example.com"}, hub)
	return svc, games, feedback, files, hub
}

func TestNewGameIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^game_\d+_[0-9a-f]{7}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := NewGameID()
		require.Regexp(t, pattern, id)
		require.False(t, seen[id], "ids must not collide: %s", id)
		seen[id] = true
	}
}

func TestCreateWithoutAssets(t *testing.T) {
	svc, _, _, files, hub := newGameServiceForTest()

	game, err := svc.Create(context.Background(), CreateGameRequest{Title: "  Space Escape  "})
	require.NoError(t, err)
	require.Equal(t, "Space Escape", game.Title)
	require.Empty(t, game.Description)
	require.Zero(t, game.AssetVersion)
	require.Empty(t, files.uploads, "no assets means no backend call")
	require.Equal(t, []string{ScopeGames}, hub.scopes)

	got, err := svc.Get(context.Background(), game.ID)
	require.NoError(t, err)
	require.Equal(t, game.Title, got.Title)
}

func TestCreateRequiresTitle(t *testing.T) {
	svc, games, _, files, _ := newGameServiceForTest()

	_, err := svc.Create(context.Background(), CreateGameRequest{Title: "   "})
	require.ErrorIs(t, err, ErrInvalidInput)
	require.Empty(t, games.games)
	require.Empty(t, files.uploads)
}

func TestCreateUploadsBeforeInsert(t *testing.T) {
	svc, games, _, files, _ := newGameServiceForTest()

	game, err := svc.Create(context.Background(), CreateGameRequest{
		Title:        "Space Escape",
		Description:  "dodge the asteroids",
		MarkdownText: "# Controls",
		Zip:          &Asset{Name: "bundle.zip", Reader: strings.NewReader("zip")},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, game.AssetVersion)

	require.Len(t, files.uploads, 1)
	require.Equal(t, game.ID, files.uploads[0].ID)
	require.Equal(t, "Space Escape", files.uploads[0].Title)
	require.Contains(t, games.games, game.ID)
}

func TestCreateAbortsOnTransferFailure(t *testing.T) {
	svc, games, _, files, hub := newGameServiceForTest()
	files.uploadErr = errors.New("connection refused")

	_, err := svc.Create(context.Background(), CreateGameRequest{
		Title: "Space Escape",
		Zip:   &Asset{Name: "bundle.zip", Reader: strings.NewReader("zip")},
	})
	require.Error(t, err)
	require.Empty(t, games.games, "a failed upload must not leave a catalog record")
	require.Empty(t, hub.scopes)
}

func TestCreateReportsInsertFailure(t *testing.T) {
	svc, games, _, files, _ := newGameServiceForTest()
	games.insertErr = errors.New("write concern timeout")

	_, err := svc.Create(context.Background(), CreateGameRequest{
		Title: "Space Escape",
		Zip:   &Asset{Name: "bundle.zip", Reader: strings.NewReader("zip")},
	})
	require.ErrorIs(t, err, ErrPersistence)
	require.Len(t, files.uploads, 1, "the upload already happened; the orphan is accepted")
}

func TestUpdateMetadata(t *testing.T) {
	svc, _, _, _, hub := newGameServiceForTest()
	game, err := svc.Create(context.Background(), CreateGameRequest{Title: "Old Title"})
	require.NoError(t, err)

	err = svc.UpdateMetadata(context.Background(), game.ID, UpdateGameRequest{
		Title:        "New Title",
		Description:  "updated",
		MarkdownText: "## Rules",
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), game.ID)
	require.NoError(t, err)
	require.Equal(t, "New Title", got.Title)
	require.Equal(t, "updated", got.Description)
	require.Contains(t, hub.scopes, ScopeGames)
}

func TestUpdateMetadataValidation(t *testing.T) {
	svc, _, _, _, _ := newGameServiceForTest()

	err := svc.UpdateMetadata(context.Background(), "game_1_abc", UpdateGameRequest{Title: " "})
	require.ErrorIs(t, err, ErrInvalidInput)

	err = svc.UpdateMetadata(context.Background(), "game_missing", UpdateGameRequest{Title: "x"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReuploadBumpsAssetVersion(t *testing.T) {
	svc, _, _, files, _ := newGameServiceForTest()
	game, err := svc.Create(context.Background(), CreateGameRequest{
		Title: "Space Escape",
		Zip:   &Asset{Name: "bundle.zip", Reader: strings.NewReader("v1")},
	})
	require.NoError(t, err)

	err = svc.ReuploadFiles(context.Background(), game.ID,
		&Asset{Name: "bundle.zip", Reader: strings.NewReader("v2")}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{game.ID}, files.reuploads)

	got, err := svc.Get(context.Background(), game.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, got.AssetVersion)
	require.Equal(t, "Space Escape", got.Title, "reupload must not touch metadata")
}

func TestReuploadValidation(t *testing.T) {
	svc, _, _, files, _ := newGameServiceForTest()

	err := svc.ReuploadFiles(context.Background(), "game_1_abc", nil, nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	err = svc.ReuploadFiles(context.Background(), "game_missing",
		&Asset{Name: "bundle.zip", Reader: strings.NewReader("v2")}, nil)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, files.reuploads)
}

func TestDeleteClearsEverything(t *testing.T) {
	svc, games, feedback, files, _ := newGameServiceForTest()
	game, err := svc.Create(context.Background(), CreateGameRequest{Title: "Space Escape"})
	require.NoError(t, err)
	require.NoError(t, feedback.Insert(context.Background(), newFeedback(game.ID, "fun")))
	require.NoError(t, feedback.Insert(context.Background(), newFeedback(game.ID, "too hard")))
	require.NoError(t, feedback.Insert(context.Background(), newFeedback("game_other", "unrelated")))

	require.NoError(t, svc.Delete(context.Background(), game.ID))

	require.Equal(t, []string{game.ID}, files.deletes)
	require.NotContains(t, games.games, game.ID)
	require.Len(t, feedback.items, 1, "only the deleted game's feedback goes away")
}

func TestDeleteSurvivesBackendFailure(t *testing.T) {
	svc, games, _, files, _ := newGameServiceForTest()
	game, err := svc.Create(context.Background(), CreateGameRequest{Title: "Space Escape"})
	require.NoError(t, err)
	files.deleteErr = errors.New("connection refused")

	require.NoError(t, svc.Delete(context.Background(), game.ID),
		"a dead backend must not keep the game in the catalog")
	require.NotContains(t, games.games, game.ID)
}

func TestDeleteMissingGame(t *testing.T) {
	svc, _, _, _, _ := newGameServiceForTest()

	err := svc.Delete(context.Background(), "game_missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetDetailRendersMarkdownAndURLs(t *testing.T) {
	svc, _, _, _, _ := newGameServiceForTest()
	game, err := svc.Create(context.Background(), CreateGameRequest{
		Title:        "Space Escape",
		MarkdownText: "# Controls\n\nArrow keys.",
		Zip:          &Asset{Name: "bundle.zip", Reader: strings.NewReader("zip")},
	})
	require.NoError(t, err)

	detail, err := svc.GetDetail(context.Background(), game.ID)
	require.NoError(t, err)
	require.Contains(t, detail.DetailHTML, "<h1")
	require.Contains(t, detail.DetailHTML, "Controls")
	require.Equal(t, "http://files.example.com/games/"+game.ID+"/", detail.PlayURL)
	require.Equal(t, "http://files.example.com/games/"+game.ID+"/img.png?v=1", detail.ThumbnailURL)
}

func TestGetDetailWithoutBackend(t *testing.T) {
	games := newFakeGameStore()
	svc := NewGameService(games, &fakeFeedbackStore{}, newFakeFileTransfer(), &fakeResolver{url: ""}, nil)
	game, err := svc.Create(context.Background(), CreateGameRequest{Title: "Space Escape"})
	require.NoError(t, err)

	detail, err := svc.GetDetail(context.Background(), game.ID)
	require.NoError(t, err)
	require.Empty(t, detail.PlayURL)
	require.Empty(t, detail.ThumbnailURL)
}

func TestListCatalog(t *testing.T) {
	svc, _, _, _, _ := newGameServiceForTest()
	for _, title := range []string{"First", "Second", "Third"} {
		_, err := svc.Create(context.Background(), CreateGameRequest{Title: title})
		require.NoError(t, err)
	}

	catalog, err := svc.ListCatalog(context.Background())
	require.NoError(t, err)
	require.Equal(t, "http://files.example.com", catalog.BackendURL)
	require.Len(t, catalog.Games, 3)
	for _, g := range catalog.Games {
		require.NotEmpty(t, g.PlayURL)
	}
}

// TestArcadeLifecycle runs a whole game's life against a real file client
// and a captured backend: create with assets, play, feedback, reupload,
// delete.
func TestArcadeLifecycle(t *testing.T) {
	srv, captured := newCaptureServer(t, 200)
	resolver := &fakeResolver{url: srv.URL}
	client := NewFileClient(resolver)

	games := newFakeGameStore()
	feedbackStore := &fakeFeedbackStore{}
	svc := NewGameService(games, feedbackStore, client, resolver, &fakeNotifier{})
	feedbackSvc := NewFeedbackService(feedbackStore, client)

	ctx := context.Background()

	game, err := svc.Create(ctx, CreateGameRequest{
		Title:        "Space Escape",
		Description:  "dodge the asteroids",
		MarkdownText: "# Controls\n\nArrow keys.",
		Zip:          &Asset{Name: "bundle.zip", Reader: strings.NewReader("zip-v1")},
		Thumbnail:    &Asset{Name: "cover.png", Reader: strings.NewReader("png-v1")},
	})
	require.NoError(t, err)

	require.NoError(t, svc.IncrementViews(ctx, game.ID))
	require.NoError(t, feedbackSvc.Submit(ctx, game.ID, "loved it"))

	err = svc.ReuploadFiles(ctx, game.ID,
		&Asset{Name: "bundle.zip", Reader: strings.NewReader("zip-v2")}, nil)
	require.NoError(t, err)

	detail, err := svc.GetDetail(ctx, game.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, detail.ViewCount)
	require.Contains(t, detail.ThumbnailURL, "?v=2")

	require.NoError(t, svc.Delete(ctx, game.ID))
	_, err = svc.Get(ctx, game.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, feedbackStore.items)

	var paths []string
	for _, req := range *captured {
		paths = append(paths, req.path)
	}
	require.Equal(t, []string{"/upload", "/feedback", "/reupload", "/delete"}, paths)
}

func TestIncrementViews(t *testing.T) {
	svc, _, _, _, _ := newGameServiceForTest()
	game, err := svc.Create(context.Background(), CreateGameRequest{Title: "Space Escape"})
	require.NoError(t, err)

	require.NoError(t, svc.IncrementViews(context.Background(), game.ID))
	require.NoError(t, svc.IncrementViews(context.Background(), game.ID))

	got, err := svc.Get(context.Background(), game.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, got.ViewCount)

	require.ErrorIs(t, svc.IncrementViews(context.Background(), "game_missing"), ErrNotFound)
}
