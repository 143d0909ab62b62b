package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"stemarcade/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	gameService *services.GameService
}

func NewGameHandler(gameService *services.GameService) *GameHandler {
	return &GameHandler{
		gameService: gameService,
	}
}

// ListGames serves the public catalog, newest first.
func (h *GameHandler) ListGames(c *gin.Context) {
	catalog, err := h.gameService.ListCatalog(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, catalog)
}

// GetGame serves the play page payload: record, rendered markdown, asset
// URLs.
func (h *GameHandler) GetGame(c *gin.Context) {
	detail, err := h.gameService.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// RecordView bumps the view counter when the play page loads.
func (h *GameHandler) RecordView(c *gin.Context) {
	if err := h.gameService.IncrementViews(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createGameForm struct {
	Title        string `form:"title" binding:"required"`
	Description  string `form:"description"`
	MarkdownText string `form:"markdown_text"`
}

// CreateGame accepts a multipart form with metadata plus optional zip and
// thumbnail files.
func (h *GameHandler) CreateGame(c *gin.Context) {
	var form createGameForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	zip, closeZip, err := formAsset(c, "zip")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeZip()

	thumbnail, closeThumb, err := formAsset(c, "thumbnail")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeThumb()

	game, err := h.gameService.Create(c.Request.Context(), services.CreateGameRequest{
		Title:        form.Title,
		Description:  form.Description,
		MarkdownText: form.MarkdownText,
		Zip:          zip,
		Thumbnail:    thumbnail,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, game)
}

type updateGameRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	MarkdownText string `json:"markdown_text"`
}

func (h *GameHandler) UpdateGame(c *gin.Context) {
	var req updateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.gameService.UpdateMetadata(c.Request.Context(), c.Param("id"), services.UpdateGameRequest{
		Title:        req.Title,
		Description:  req.Description,
		MarkdownText: req.MarkdownText,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "game updated"})
}

// ReuploadFiles replaces the zip and/or thumbnail of an existing game.
// Either file may be omitted.
func (h *GameHandler) ReuploadFiles(c *gin.Context) {
	zip, closeZip, err := formAsset(c, "zip")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeZip()

	thumbnail, closeThumb, err := formAsset(c, "thumbnail")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closeThumb()

	if err := h.gameService.ReuploadFiles(c.Request.Context(), c.Param("id"), zip, thumbnail); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "files reuploaded"})
}

func (h *GameHandler) DeleteGame(c *gin.Context) {
	if err := h.gameService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "game deleted"})
}

// formAsset opens an optional multipart file field. The returned cleanup is
// always safe to defer.
func formAsset(c *gin.Context, field string) (*services.Asset, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, noop, err
	}
	return &services.Asset{Name: fh.Filename, Reader: f}, func() { closeFile(f) }, nil
}

func closeFile(f multipart.File) {
	_ = f.Close()
}
