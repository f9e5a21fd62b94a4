package middleware

import (
	"StudyHub/internal/models"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"google.golang.org/api/idtoken"
	"gorm.io/gorm"
)

// GoogleTokenMiddleware validates the Google ID token on every request and
// resolves it to a known user.
func GoogleTokenMiddleware(db *gorm.DB, audience string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}
		tokenString := parts[1]

		payload, err := idtoken.Validate(c.Request.Context(), tokenString, audience)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Google ID Token"})
			return
		}

		var user models.User
		if err := db.Where("google_id = ?", payload.Subject).First(&user).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found for this token"})
			return
		}

		// Gin context is safer with float64 for numbers.
		c.Set("user_id", float64(user.ID))
		c.Set("user_role", user.Role)
		c.Next()
	}
}

// AdminRequired rejects requests whose resolved user is not an admin. Roles
// come from the configured admin email list at sign-in, never from a
// hardcoded address.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
