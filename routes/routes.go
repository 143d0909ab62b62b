package routes

import (
	"log/slog"
	"net/http"

	"stemarcade/handlers"
	"stemarcade/middleware"
	"stemarcade/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the catalog frontend may be served from another origin
	},
}

func SetupRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	gameHandler *handlers.GameHandler,
	feedbackHandler *handlers.FeedbackHandler,
	configHandler *handlers.ConfigHandler,
	hub *services.Hub,
	jwtSecret string,
) {
	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/session", middleware.AuthRequired(jwtSecret), authHandler.Session)
		}

		// Public catalog routes
		games := api.Group("/games")
		{
			games.GET("", gameHandler.ListGames)
			games.GET("/:id", gameHandler.GetGame)
			games.POST("/:id/view", gameHandler.RecordView)
			games.POST("/:id/feedback", feedbackHandler.Submit)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(jwtSecret))
		{
			admin.GET("/config", configHandler.GetConfig)
			admin.PUT("/config", configHandler.SetConfig)

			admin.POST("/games", gameHandler.CreateGame)
			admin.PUT("/games/:id", gameHandler.UpdateGame)
			admin.POST("/games/:id/files", gameHandler.ReuploadFiles)
			admin.DELETE("/games/:id", gameHandler.DeleteGame)
			admin.GET("/games/:id/feedback", feedbackHandler.ListByGame)
		}
	}

	// WebSocket endpoint pushing refresh events after admin mutations
	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "remote", c.ClientIP(), "error", err)
			return
		}
		hub.RegisterClient(conn)
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
