package handlers

import (
	"net/http"

	"stemarcade/middleware"
	"stemarcade/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.authService.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "password mismatch, try again"})
		return
	}

	token, err := h.authService.IssueToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Max-Age 0 makes it a session cookie; the token itself never expires.
	c.SetCookie(middleware.TokenCookie, token, 0, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Session answers only behind AuthRequired; reaching it means the token is
// valid.
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}
