package models

import (
	"encoding/json"
	"time"
)

// Difficulty tiers for questions and assembled tests.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// User roles.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	GoogleID   string          `gorm:"unique;not null" json:"-"`
	Email      string          `gorm:"unique;not null" json:"email"`
	Name       string          `gorm:"not null" json:"name"`
	Role       string          `gorm:"not null;default:'student'" json:"role"`
	PictureURL string          `json:"picture_url"`
	Bio        string          `json:"bio"`
	Skills     json.RawMessage `gorm:"type:jsonb" json:"skills,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	LastActive time.Time       `json:"last_active"`
}

// Question is one multiple-choice item in the question bank.
// CorrectAnswer indexes Options; callers are expected to keep it in range.
type Question struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Subject       string    `gorm:"not null;index" json:"subject"`
	Prompt        string    `gorm:"not null" json:"question"`
	Options       []string  `gorm:"serializer:json;not null" json:"options"`
	CorrectAnswer int       `gorm:"not null" json:"correctAnswer"`
	Difficulty    string    `gorm:"not null;index" json:"difficulty"`
	Explanation   string    `json:"explanation"`
	CreatedBy     uint      `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// TestResult is the immutable record of one completed test attempt.
// Answers keeps the raw answer buffer (-1 = unanswered) for review.
type TestResult struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	TestID         string    `gorm:"not null" json:"test_id"`
	TestTitle      string    `gorm:"not null" json:"test_title"`
	Score          int       `gorm:"not null" json:"score"`
	TotalQuestions int       `gorm:"not null" json:"total_questions"`
	CorrectAnswers int       `gorm:"not null" json:"correct_answers"`
	Answers        []int     `gorm:"serializer:json;not null" json:"answers"`
	TimeSpent      int       `gorm:"not null" json:"time_spent"`
	CompletedAt    time.Time `gorm:"index" json:"completed_at"`
}

// Post types on the community feed.
const (
	PostTypeAchievement = "achievement"
	PostTypeQuestion    = "question"
	PostTypeDiscussion  = "discussion"
)

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string    `gorm:"not null" json:"content"`
	Type      string    `gorm:"not null;default:'discussion'" json:"type"`
	Likes     int       `gorm:"not null;default:0" json:"likes"`
	Comments  int       `gorm:"not null;default:0" json:"comments"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PostLike struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string    `gorm:"not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Follow is one edge of the social graph: follower -> followee.
type Follow struct {
	FollowerID uint      `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FolloweeID uint      `gorm:"primaryKey;autoIncrement:false" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
