package community

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"StudyHub/internal/models"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrUserNotFound = errors.New("user not found")
	ErrSelfFollow   = errors.New("users cannot follow themselves")
)

// Service is plain CRUD over the community collections: the feed, comments,
// likes and the follow graph.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreatePost stores a new feed post with zeroed counters.
func (s *Service) CreatePost(ctx context.Context, post *models.Post) (uint, error) {
	post.Likes = 0
	post.Comments = 0
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return 0, fmt.Errorf("create post: %w", err)
	}
	return post.ID, nil
}

// ListPosts returns the feed, newest first, with authors preloaded.
func (s *Service) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Order("created_at desc").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// DeletePost removes a post and its likes and comments.
func (s *Service) DeletePost(ctx context.Context, postID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Post{}, postID)
		if res.Error != nil {
			return fmt.Errorf("delete post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.PostLike{}).Error; err != nil {
			return fmt.Errorf("delete post likes: %w", err)
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete post comments: %w", err)
		}
		return nil
	})
}

// PostAuthor returns the author id of a post.
func (s *Service) PostAuthor(ctx context.Context, postID uint) (uint, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Select("id", "author_id").First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load post: %w", err)
	}
	return post.AuthorID, nil
}

// ToggleLike likes the post if the user has not liked it yet and unlikes it
// otherwise. Returns whether the post is liked after the call.
func (s *Service) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	liked := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return fmt.Errorf("load post: %w", err)
		}

		var like models.PostLike
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&like).Error
		switch {
		case err == nil:
			if err := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{}).Error; err != nil {
				return fmt.Errorf("remove like: %w", err)
			}
			return tx.Model(&post).Update("likes", gorm.Expr("likes - 1")).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
				return fmt.Errorf("add like: %w", err)
			}
			liked = true
			return tx.Model(&post).Update("likes", gorm.Expr("likes + 1")).Error
		default:
			return fmt.Errorf("check like: %w", err)
		}
	})
	return liked, err
}

// AddComment stores a comment and bumps the post's comment counter.
func (s *Service) AddComment(ctx context.Context, comment *models.Comment) (uint, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, comment.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return fmt.Errorf("load post: %w", err)
		}
		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		return tx.Model(&post).Update("comments", gorm.Expr("comments + 1")).Error
	})
	if err != nil {
		return 0, err
	}
	return comment.ID, nil
}

// ListComments returns a post's comments, oldest first.
func (s *Service) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at asc").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// ToggleFollow follows the target if not followed yet, unfollows otherwise.
// Returns whether the caller follows the target after the call.
func (s *Service) ToggleFollow(ctx context.Context, followerID, targetID uint) (bool, error) {
	if followerID == targetID {
		return false, ErrSelfFollow
	}

	following := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.User
		if err := tx.First(&target, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("load user: %w", err)
		}

		var edge models.Follow
		err := tx.Where("follower_id = ? AND followee_id = ?", followerID, targetID).First(&edge).Error
		switch {
		case err == nil:
			return tx.Where("follower_id = ? AND followee_id = ?", followerID, targetID).Delete(&models.Follow{}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			following = true
			return tx.Create(&models.Follow{FollowerID: followerID, FolloweeID: targetID}).Error
		default:
			return fmt.Errorf("check follow: %w", err)
		}
	})
	return following, err
}

// Followers returns the users following the given user.
func (s *Service) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return users, nil
}

// Following returns the users the given user follows.
func (s *Service) Following(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", userID).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	return users, nil
}

// SearchUsers matches the term against names and emails, case-insensitive.
func (s *Service) SearchUsers(ctx context.Context, term string) ([]models.User, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("lower(name) LIKE ? OR lower(email) LIKE ?", pattern, pattern).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	return users, nil
}
