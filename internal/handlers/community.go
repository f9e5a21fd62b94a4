package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"StudyHub/internal/community"
	"StudyHub/internal/models"
)

// ListPostsHandler returns the community feed, newest first.
func (h *Handler) ListPostsHandler(c *gin.Context) {
	posts, err := h.Community.ListPosts(c.Request.Context())
	if err != nil {
		log.Printf("ERROR: Could not fetch posts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// CreatePostHandler publishes a post to the feed.
func (h *Handler) CreatePostHandler(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
		Type    string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: content is required"})
		return
	}

	switch req.Type {
	case models.PostTypeAchievement, models.PostTypeQuestion, models.PostTypeDiscussion:
	case "":
		req.Type = models.PostTypeDiscussion
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post type"})
		return
	}

	post := models.Post{
		AuthorID: currentUserID(c),
		Content:  req.Content,
		Type:     req.Type,
	}
	id, err := h.Community.CreatePost(c.Request.Context(), &post)
	if err != nil {
		log.Printf("ERROR: Could not create post: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// DeletePostHandler removes a post. Only the author or an admin may delete.
func (h *Handler) DeletePostHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	authorID, err := h.Community.PostAuthor(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, community.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load post"})
		return
	}
	if authorID != currentUserID(c) && !isAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You may only delete your own posts"})
		return
	}

	if err := h.Community.DeletePost(c.Request.Context(), id); err != nil {
		log.Printf("ERROR: Could not delete post %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// ToggleLikeHandler likes or unlikes a post for the current user.
func (h *Handler) ToggleLikeHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	liked, err := h.Community.ToggleLike(c.Request.Context(), id, currentUserID(c))
	if err != nil {
		if errors.Is(err, community.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		log.Printf("ERROR: Could not toggle like on post %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update like"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// ListCommentsHandler returns a post's comments, oldest first.
func (h *Handler) ListCommentsHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	comments, err := h.Community.ListComments(c.Request.Context(), id)
	if err != nil {
		log.Printf("ERROR: Could not fetch comments for post %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// AddCommentHandler attaches a comment to a post.
func (h *Handler) AddCommentHandler(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: content is required"})
		return
	}

	comment := models.Comment{
		PostID:   id,
		AuthorID: currentUserID(c),
		Content:  req.Content,
	}
	commentID, err := h.Community.AddComment(c.Request.Context(), &comment)
	if err != nil {
		if errors.Is(err, community.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		log.Printf("ERROR: Could not add comment to post %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add comment"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": commentID})
}
