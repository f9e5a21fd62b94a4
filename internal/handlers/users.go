package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"StudyHub/internal/community"
	"StudyHub/internal/models"
)

// UserProfileHandler returns the current user's profile.
func (h *Handler) UserProfileHandler(c *gin.Context) {
	var user models.User
	if err := h.DB.WithContext(c.Request.Context()).First(&user, currentUserID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          user.ID,
		"name":        user.Name,
		"email":       user.Email,
		"role":        user.Role,
		"picture_url": user.PictureURL,
		"bio":         user.Bio,
		"skills":      user.Skills,
		"joined_at":   user.CreatedAt,
	})
}

// UpdateProfileHandler updates the editable profile fields.
func (h *Handler) UpdateProfileHandler(c *gin.Context) {
	var req struct {
		Name       *string         `json:"name"`
		Bio        *string         `json:"bio"`
		PictureURL *string         `json:"picture_url"`
		Skills     json.RawMessage `json:"skills"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile payload"})
		return
	}

	updates := map[string]interface{}{"last_active": time.Now().UTC()}
	if req.Name != nil && *req.Name != "" {
		updates["name"] = *req.Name
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.PictureURL != nil {
		updates["picture_url"] = *req.PictureURL
	}
	if req.Skills != nil {
		updates["skills"] = req.Skills
	}

	err := h.DB.WithContext(c.Request.Context()).
		Model(&models.User{}).
		Where("id = ?", currentUserID(c)).
		Updates(updates).Error
	if err != nil {
		log.Printf("ERROR: Could not update profile: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// SearchUsersHandler matches users by name or email substring.
func (h *Handler) SearchUsersHandler(c *gin.Context) {
	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}

	users, err := h.Community.SearchUsers(c.Request.Context(), term)
	if err != nil {
		log.Printf("ERROR: Could not search users: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// FollowHandler follows or unfollows the target user.
func (h *Handler) FollowHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	following, err := h.Community.ToggleFollow(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		switch {
		case errors.Is(err, community.ErrSelfFollow):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot follow yourself"})
		case errors.Is(err, community.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			log.Printf("ERROR: Could not toggle follow of user %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update follow"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": following})
}

// FollowersHandler lists the users following the target user.
func (h *Handler) FollowersHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	users, err := h.Community.Followers(c.Request.Context(), id)
	if err != nil {
		log.Printf("ERROR: Could not fetch followers of user %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch followers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// FollowingHandler lists the users the target user follows.
func (h *Handler) FollowingHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	users, err := h.Community.Following(c.Request.Context(), id)
	if err != nil {
		log.Printf("ERROR: Could not fetch users followed by %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch following"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
