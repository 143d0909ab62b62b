package handlers

import (
	"net/http"

	"stemarcade/services"

	"github.com/gin-gonic/gin"
)

type ConfigHandler struct {
	configService *services.ConfigService
}

func NewConfigHandler(configService *services.ConfigService) *ConfigHandler {
	return &ConfigHandler{
		configService: configService,
	}
}

func (h *ConfigHandler) GetConfig(c *gin.Context) {
	url, err := h.configService.BackendURL(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backend_url": url})
}

type setConfigRequest struct {
	BackendURL string `json:"backend_url" binding:"required"`
}

func (h *ConfigHandler) SetConfig(c *gin.Context) {
	var req setConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.configService.SetBackendURL(c.Request.Context(), req.BackendURL); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "backend url saved"})
}
