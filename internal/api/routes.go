package api

import (
	"net/http"

	"learngauge/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes.
func SetupRoutes(router *gin.Engine, handler *handlers.Handler) {
	router.Use(CORSMiddleware(handler.FrontendURL))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public auth routes.
	router.GET("/login", handler.HandleGoogleLogin)
	router.GET("/auth/google/callback", handler.HandleGoogleCallback)

	api := router.Group("/api")
	{
		api.GET("/auth/status", handler.HandleAuthStatus)

		authorized := api.Group("/")
		authorized.Use(handlers.AuthRequired())
		{
			authorized.GET("/user/profile", handler.HandleUserProfile)
			authorized.POST("/logout", handler.HandleLogout)

			authorized.POST("/quizzes/generate", handler.HandleGenerateQuiz)
			authorized.POST("/quizzes", handler.HandleSaveQuiz)
			authorized.GET("/quizzes", handler.HandleListQuizzes)
			authorized.GET("/quizzes/:quizId", handler.HandleGetQuiz)
			authorized.DELETE("/quizzes/:quizId", handler.HandleDeleteQuiz)

			authorized.POST("/fer/records", handler.HandleStoreFERRecords)
			authorized.GET("/fer/summary", handler.HandleFERSummary)
		}
	}
}
