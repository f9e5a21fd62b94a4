package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"StudyHub/internal/models"
)

type questionRequest struct {
	Subject       string   `json:"subject" binding:"required"`
	Prompt        string   `json:"question" binding:"required"`
	Options       []string `json:"options" binding:"required"`
	CorrectAnswer *int     `json:"correctAnswer" binding:"required"`
	Difficulty    string   `json:"difficulty" binding:"required"`
	Explanation   string   `json:"explanation"`
}

func (r questionRequest) validate() string {
	if len(r.Options) == 0 {
		return "options must not be empty"
	}
	if *r.CorrectAnswer < 0 || *r.CorrectAnswer >= len(r.Options) {
		return "correctAnswer must index options"
	}
	switch r.Difficulty {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return ""
	default:
		return "difficulty must be Easy, Medium or Hard"
	}
}

// ListQuestionsHandler returns the question bank, optionally filtered by
// subject, newest first.
func (h *Handler) ListQuestionsHandler(c *gin.Context) {
	query := h.DB.WithContext(c.Request.Context()).Order("created_at desc")
	if subject := c.Query("subject"); subject != "" {
		query = query.Where("subject = ?", subject)
	}

	var questions []models.Question
	if err := query.Find(&questions).Error; err != nil {
		log.Printf("ERROR: Could not fetch questions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// CreateQuestionHandler adds a question to the bank. Admin only.
func (h *Handler) CreateQuestionHandler(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question payload"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	question := models.Question{
		Subject:       req.Subject,
		Prompt:        req.Prompt,
		Options:       req.Options,
		CorrectAnswer: *req.CorrectAnswer,
		Difficulty:    req.Difficulty,
		Explanation:   req.Explanation,
		CreatedBy:     currentUserID(c),
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&question).Error; err != nil {
		log.Printf("ERROR: Could not create question: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create question"})
		return
	}
	c.JSON(http.StatusCreated, question)
}

// UpdateQuestionHandler replaces a question's content. Admin only.
func (h *Handler) UpdateQuestionHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question payload"})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var question models.Question
	if err := h.DB.WithContext(c.Request.Context()).First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load question"})
		return
	}

	question.Subject = req.Subject
	question.Prompt = req.Prompt
	question.Options = req.Options
	question.CorrectAnswer = *req.CorrectAnswer
	question.Difficulty = req.Difficulty
	question.Explanation = req.Explanation
	if err := h.DB.WithContext(c.Request.Context()).Save(&question).Error; err != nil {
		log.Printf("ERROR: Could not update question %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update question"})
		return
	}
	c.JSON(http.StatusOK, question)
}

// DeleteQuestionHandler removes a question from the bank. Admin only.
// In-progress sessions keep their snapshot and are unaffected.
func (h *Handler) DeleteQuestionHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Delete(&models.Question{}, id)
	if res.Error != nil {
		log.Printf("ERROR: Could not delete question %d: %v", id, res.Error)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete question"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted"})
}

// GenerateQuestionsHandler asks the AI service to draft questions for a
// subject and difficulty and stores the ones not already in the bank.
// Admin only; a generation failure leaves the bank untouched.
func (h *Handler) GenerateQuestionsHandler(c *gin.Context) {
	if h.AIService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI question generation is not configured"})
		return
	}

	var req struct {
		Subject    string `json:"subject" binding:"required"`
		Difficulty string `json:"difficulty" binding:"required"`
		Count      int    `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: subject and difficulty are required"})
		return
	}
	if req.Count <= 0 || req.Count > 20 {
		req.Count = 5
	}

	generated, err := h.AIService.GenerateQuestions(c.Request.Context(), req.Subject, req.Difficulty, req.Count)
	if err != nil {
		log.Printf("WARNING: AI question generation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Question generation failed"})
		return
	}

	userID := currentUserID(c)
	saved := make([]models.Question, 0, len(generated))
	for _, q := range generated {
		var existing models.Question
		dbErr := h.DB.Where("prompt = ?", q.Prompt).First(&existing).Error
		if dbErr == nil {
			log.Printf("INFO: Question %q already exists in bank, skipping.", q.Prompt)
			continue
		}
		if !errors.Is(dbErr, gorm.ErrRecordNotFound) {
			log.Printf("ERROR: Bank check failed for question %q: %v", q.Prompt, dbErr)
			continue
		}

		q.CreatedBy = userID
		if err := h.DB.Create(&q).Error; err != nil {
			log.Printf("ERROR: Failed to save generated question %q: %v", q.Prompt, err)
			continue
		}
		saved = append(saved, q)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Questions generated",
		"generated": len(generated),
		"saved":     len(saved),
		"questions": saved,
	})
}
