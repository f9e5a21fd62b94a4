package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"StudyHub/internal/assembler"
	"StudyHub/internal/models"
	"StudyHub/internal/results"
	"StudyHub/internal/session"
)

// loadQuestions fetches the question bank, newest first. A fetch failure
// degrades to an empty bank: the assembler falls back to its sample test
// and test-taking is never blocked.
func (h *Handler) loadQuestions(c *gin.Context) []models.Question {
	var questions []models.Question
	err := h.DB.WithContext(c.Request.Context()).
		Order("created_at desc").
		Find(&questions).Error
	if err != nil {
		log.Printf("WARNING: Could not fetch questions, degrading to empty bank: %v", err)
		return nil
	}
	return questions
}

func (h *Handler) availableTests(c *gin.Context) []assembler.TestDefinition {
	return assembler.Build(h.loadQuestions(c), h.Subjects)
}

// ListTestsHandler returns the assembled test list without question bodies.
func (h *Handler) ListTestsHandler(c *gin.Context) {
	tests := h.availableTests(c)

	type testSummary struct {
		ID            string `json:"id"`
		Title         string `json:"title"`
		Subject       string `json:"subject"`
		Duration      int    `json:"duration"`
		Difficulty    string `json:"difficulty"`
		QuestionCount int    `json:"question_count"`
	}

	summaries := make([]testSummary, 0, len(tests))
	for _, t := range tests {
		summaries = append(summaries, testSummary{
			ID:            t.ID,
			Title:         t.Title,
			Subject:       t.Subject,
			Duration:      t.Duration,
			Difficulty:    t.Difficulty,
			QuestionCount: len(t.Questions),
		})
	}

	c.JSON(http.StatusOK, gin.H{"tests": summaries})
}

// TestStatsHandler returns the summary aggregates for the stats cards.
func (h *Handler) TestStatsHandler(c *gin.Context) {
	summary, err := h.Recorder.SummaryForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		log.Printf("WARNING: Could not compute test stats: %v", err)
		summary = results.Summary{}
	}
	c.JSON(http.StatusOK, summary)
}

// ResultsHandler returns the user's prior results, newest first. A fetch
// failure degrades to an empty history.
func (h *Handler) ResultsHandler(c *gin.Context) {
	history, err := h.Recorder.ListForUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		log.Printf("WARNING: Could not fetch test history: %v", err)
		history = []models.TestResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": history})
}

// StartTestHandler begins a session for the test id in the path. An
// existing session for the user is discarded first.
func (h *Handler) StartTestHandler(c *gin.Context) {
	test, ok := assembler.Find(h.availableTests(c), c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Test not found"})
		return
	}

	sess := h.Sessions.Start(test, currentUserID(c))
	c.JSON(http.StatusOK, sess.Snapshot())
}

// SessionStateHandler returns the current session snapshot.
func (h *Handler) SessionStateHandler(c *gin.Context) {
	sess, err := h.Sessions.Get(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active test session"})
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// AnswerHandler records the selected option for the current question.
func (h *Handler) AnswerHandler(c *gin.Context) {
	var req struct {
		Option *int `json:"option" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: option is required"})
		return
	}

	sess, err := h.Sessions.Get(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active test session"})
		return
	}

	if err := sess.SelectAnswer(*req.Option); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// NextHandler advances to the next question, clamped at the last one.
func (h *Handler) NextHandler(c *gin.Context) {
	h.navigate(c, func(s *session.Session) error { return s.Next() })
}

// PreviousHandler moves back one question, clamped at the first one.
func (h *Handler) PreviousHandler(c *gin.Context) {
	h.navigate(c, func(s *session.Session) error { return s.Previous() })
}

func (h *Handler) navigate(c *gin.Context, move func(*session.Session) error) {
	sess, err := h.Sessions.Get(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active test session"})
		return
	}
	if err := move(sess); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// SubmitHandler submits the session. The result is persisted before the
// completed snapshot is returned; a failed save is reported alongside the
// locally computed score.
func (h *Handler) SubmitHandler(c *gin.Context) {
	sess, err := h.Sessions.Get(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active test session"})
		return
	}

	result, err := sess.Submit(c.Request.Context())
	if err != nil {
		h.sessionError(c, err)
		return
	}

	snap := sess.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"message":     "Test submitted successfully",
		"result":      result,
		"save_failed": snap.SaveFailed,
	})
}

// ReviewHandler returns the per-question breakdown of the completed
// session. The breakdown is recomputed from the in-memory test snapshot, so
// it is gone once the session is dismissed or the process restarts;
// persisted results carry only the score, counts and raw answer buffer.
func (h *Handler) ReviewHandler(c *gin.Context) {
	sess, err := h.Sessions.Get(currentUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active test session"})
		return
	}

	items, err := sess.Review()
	if err != nil {
		h.sessionError(c, err)
		return
	}

	snap := sess.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"result": snap.Result,
		"review": items,
	})
}

// DismissHandler discards the session and returns the user to the test
// list.
func (h *Handler) DismissHandler(c *gin.Context) {
	if err := h.Sessions.Dismiss(currentUserID(c)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active test session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session dismissed"})
}

func (h *Handler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrSessionCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "Test session already completed"})
	case errors.Is(err, session.ErrNotCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": "Test session is not completed yet"})
	case errors.Is(err, session.ErrInvalidOption):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Selected option is out of range"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not update test session"})
	}
}
