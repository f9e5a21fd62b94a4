package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"

	"StudyHub/internal/models"
)

// GoogleAuthHandler verifies a Google ID token and creates or refreshes the
// matching user record. The role is assigned from the configured admin
// email list.
func (h *Handler) GoogleAuthHandler(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: token is required"})
		return
	}

	payload, err := idtoken.Validate(c.Request.Context(), req.Token, "")
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google ID Token"})
		return
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	user := models.User{
		GoogleID:   payload.Subject,
		Email:      email,
		Name:       name,
		Role:       h.roleFor(email),
		PictureURL: picture,
		LastActive: time.Now().UTC(),
	}

	if err := h.DB.Where(models.User{GoogleID: user.GoogleID}).FirstOrCreate(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not process user"})
		return
	}

	// Keep role and activity current for returning users; an email added to
	// the admin list takes effect on the next sign-in.
	updates := map[string]interface{}{"last_active": time.Now().UTC()}
	if role := h.roleFor(user.Email); user.Role != role {
		user.Role = role
		updates["role"] = role
	}
	if err := h.DB.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not process user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User authenticated successfully. Use the provided ID token for subsequent requests.",
		"user":    user,
	})
}

func (h *Handler) roleFor(email string) string {
	for _, admin := range h.AdminEmails {
		if admin == email {
			return models.RoleAdmin
		}
	}
	return models.RoleStudent
}
