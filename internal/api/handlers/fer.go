package handlers

import (
	"log"
	"net/http"
	"time"

	"learngauge/internal/models"

	"github.com/gin-gonic/gin"
)

// FERRecordsRequest is a batch of emotion observations from the external FER
// model.
type FERRecordsRequest struct {
	Records []models.FERRecord `json:"records"`
}

// HandleStoreFERRecords stores a batch of emotion observations captured
// during a lecture session.
func (h *Handler) HandleStoreFERRecords(c *gin.Context) {
	var req FERRecordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "records must not be empty"})
		return
	}

	now := time.Now()
	for i := range req.Records {
		rec := &req.Records[i]
		if rec.CourseID == "" || rec.LectureID == "" || rec.Emotion == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "each record requires courseId, lectureId and emotion"})
			return
		}
		if rec.CapturedAt.IsZero() {
			rec.CapturedAt = now
		}
	}

	if err := h.DB.FER.InsertRecords(c.Request.Context(), req.Records); err != nil {
		log.Printf("ERROR: Failed to store FER records: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store records"})
		return
	}

	log.Printf("INFO: Stored %d FER records for course %s", len(req.Records), req.Records[0].CourseID)
	c.JSON(http.StatusCreated, gin.H{"success": true, "stored": len(req.Records)})
}

// HandleFERSummary returns per-emotion counts for a course, optionally
// narrowed to one lecture via the lectureId query parameter.
func (h *Handler) HandleFERSummary(c *gin.Context) {
	courseID := c.Query("courseId")
	if courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "courseId query parameter is required"})
		return
	}

	summary, err := h.DB.FER.Summarize(c.Request.Context(), courseID, c.Query("lectureId"))
	if err != nil {
		log.Printf("ERROR: Failed to summarize FER records for course %s: %v", courseID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to summarize records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}
