package handlers

import (
	"net/http"

	"stemarcade/services"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedbackService *services.FeedbackService
}

func NewFeedbackHandler(feedbackService *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
	}
}

type submitFeedbackRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// Submit accepts an anonymous comment for a game.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req submitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.feedbackService.Submit(c.Request.Context(), c.Param("id"), req.Comment); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "feedback received, thank you"})
}

// ListByGame serves the admin view-feedback dialog, newest first.
func (h *FeedbackHandler) ListByGame(c *gin.Context) {
	fbs, err := h.feedbackService.ListByGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, fbs)
}
