package handlers

import (
	"StudyHub/internal/ai"
	"StudyHub/internal/community"
	"StudyHub/internal/models"
	"StudyHub/internal/results"
	"StudyHub/internal/session"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	DB          *gorm.DB
	Sessions    *session.Manager
	Recorder    *results.Recorder
	Community   *community.Service
	AIService   *ai.Service
	AdminEmails []string
	Subjects    []string
}

func New(db *gorm.DB, sessions *session.Manager, recorder *results.Recorder, comm *community.Service, aiService *ai.Service, adminEmails, subjects []string) Handler {
	return Handler{
		DB:          db,
		Sessions:    sessions,
		Recorder:    recorder,
		Community:   comm,
		AIService:   aiService,
		AdminEmails: adminEmails,
		Subjects:    subjects,
	}
}

// currentUserID reads the user id the auth middleware stored on the context.
func currentUserID(c *gin.Context) uint {
	claim, _ := c.Get("user_id")
	id, _ := claim.(float64)
	return uint(id)
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get("user_role")
	return role == models.RoleAdmin
}

// pathID parses a numeric :id path parameter, answering 400 itself on bad
// input.
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter"})
		return 0, false
	}
	return uint(id), true
}
