package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"learngauge/internal/models"
	"learngauge/internal/quiz"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func elapsed(start time.Time) string {
	return fmt.Sprintf("%.2fs", time.Since(start).Seconds())
}

func contextUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDValue, exists := c.Get("userID")
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := userIDValue.(uuid.UUID)
	return userID, ok
}

// HandleGenerateQuiz runs the full generation pipeline for a batch of
// lecture PDFs and returns the aggregated questions with per-lecture
// outcomes.
func (h *Handler) HandleGenerateQuiz(c *gin.Context) {
	startTime := time.Now()

	userID, ok := contextUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req models.GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
			"errors":  []string{err.Error()},
		})
		return
	}

	log.Printf("INFO: Quiz generation requested by user %s: course %s, %d lectures",
		userID, req.CourseID, len(req.Lectures))

	result, err := h.Generator.Generate(c.Request.Context(), req)
	if err != nil {
		var verr *quiz.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid quiz generation request",
				"errors":  verr.Errors,
			})
			return
		}

		var berr *quiz.BatchError
		if errors.As(err, &berr) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success":           false,
				"message":           berr.Message,
				"processedLectures": berr.Outcomes,
				"processingTime":    elapsed(startTime),
			})
			return
		}

		log.Printf("ERROR: Quiz generation failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":           false,
			"message":           "Quiz generation failed",
			"error":             err.Error(),
			"processedLectures": []models.LectureOutcome{},
			"processingTime":    elapsed(startTime),
		})
		return
	}

	log.Printf("INFO: Quiz generation finished for user %s: %d/%d lectures succeeded, %d questions",
		userID, result.Summary.SuccessfulLectures, result.Summary.TotalLectures, len(result.Questions))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"questions":          result.Questions,
			"courseId":           result.CourseID,
			"totalQuestions":     result.TotalQuestions,
			"requestedQuestions": result.RequestedQuestions,
			"processedLectures":  result.ProcessedLectures,
			"summary":            result.Summary,
		},
		"processingTime": elapsed(startTime),
	})
}

// HandleSaveQuiz persists a reviewed set of generated questions as a quiz.
func (h *Handler) HandleSaveQuiz(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req models.SaveQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
			"errors":  []string{err.Error()},
		})
		return
	}

	saved, err := quiz.BuildSavedQuiz(req, userID, time.Now())
	if err != nil {
		var verr *quiz.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Invalid save request",
				"errors":  verr.Errors,
			})
			return
		}
		log.Printf("ERROR: Failed to build quiz for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save quiz"})
		return
	}

	if err := h.DB.Quizzes.Insert(c.Request.Context(), saved); err != nil {
		log.Printf("ERROR: Failed to insert quiz %s for user %s: %v", saved.ID, userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to save quiz"})
		return
	}

	log.Printf("INFO: Saved quiz %s for user %s (%d questions)", saved.ID, userID, saved.ActualQuestionCount)
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": saved})
}

// HandleGetQuiz fetches one saved quiz by id.
func (h *Handler) HandleGetQuiz(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}

	saved, err := h.DB.Quizzes.Get(c.Request.Context(), quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "quiz not found"})
			return
		}
		log.Printf("ERROR: Failed to get quiz %s: %v", quizID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch quiz"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": saved})
}

// HandleListQuizzes lists the active quizzes of a course, newest first.
func (h *Handler) HandleListQuizzes(c *gin.Context) {
	courseID := c.Query("courseId")
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "courseId query parameter is required"})
		return
	}

	quizzes, err := h.DB.Quizzes.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		log.Printf("ERROR: Failed to list quizzes for course %s: %v", courseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list quizzes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": quizzes})
}

// HandleDeleteQuiz soft-deletes a quiz owned by the caller.
func (h *Handler) HandleDeleteQuiz(c *gin.Context) {
	userID, ok := contextUserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	quizID, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}

	affected, err := h.DB.Quizzes.Deactivate(c.Request.Context(), quizID, userID)
	if err != nil {
		log.Printf("ERROR: Failed to delete quiz %s for user %s: %v", quizID, userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete quiz"})
		return
	}
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "quiz not found"})
		return
	}

	log.Printf("INFO: Deactivated quiz %s for user %s", quizID, userID)
	c.Status(http.StatusNoContent)
}
