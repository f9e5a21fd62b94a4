package community

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"StudyHub/internal/database"
	"StudyHub/internal/models"
)

func testService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})
	return NewService(db), db
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()
	user := models.User{GoogleID: email, Name: name, Email: email, Role: models.RoleStudent}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestPostsAndComments(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()
	author := seedUser(t, db, "Alice", "alice@example.com")

	postID, err := svc.CreatePost(ctx, &models.Post{
		AuthorID: author.ID,
		Content:  "Just passed the React Medium test!",
		Type:     models.PostTypeAchievement,
	})
	require.NoError(t, err)

	commenter := seedUser(t, db, "Bob", "bob@example.com")
	_, err = svc.AddComment(ctx, &models.Comment{
		PostID:   postID,
		AuthorID: commenter.ID,
		Content:  "Congrats!",
	})
	require.NoError(t, err)

	posts, err := svc.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 1, posts[0].Comments)
	assert.Equal(t, "Alice", posts[0].Author.Name)

	comments, err := svc.ListComments(ctx, postID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Congrats!", comments[0].Content)

	_, err = svc.AddComment(ctx, &models.Comment{PostID: 9999, AuthorID: commenter.ID, Content: "?"})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestToggleLike(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()
	author := seedUser(t, db, "Alice", "alice2@example.com")
	liker := seedUser(t, db, "Bob", "bob2@example.com")

	postID, err := svc.CreatePost(ctx, &models.Post{AuthorID: author.ID, Content: "hello", Type: models.PostTypeDiscussion})
	require.NoError(t, err)

	liked, err := svc.ToggleLike(ctx, postID, liker.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	var post models.Post
	require.NoError(t, db.First(&post, postID).Error)
	assert.Equal(t, 1, post.Likes)

	liked, err = svc.ToggleLike(ctx, postID, liker.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	require.NoError(t, db.First(&post, postID).Error)
	assert.Equal(t, 0, post.Likes)

	_, err = svc.ToggleLike(ctx, 9999, liker.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestFollowGraph(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "Alice", "alice3@example.com")
	bob := seedUser(t, db, "Bob", "bob3@example.com")

	_, err := svc.ToggleFollow(ctx, alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrSelfFollow)

	following, err := svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := svc.Followers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	assert.Equal(t, "Alice", followers[0].Name)

	followed, err := svc.Following(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, followed, 1)
	assert.Equal(t, "Bob", followed[0].Name)

	following, err = svc.ToggleFollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	followers, err = svc.Followers(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, followers)
}

func TestSearchUsers(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()
	seedUser(t, db, "Charlie Brown", "charlie@example.com")
	seedUser(t, db, "Daisy", "daisy@peanuts.org")

	users, err := svc.SearchUsers(ctx, "CHARLIE")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Charlie Brown", users[0].Name)

	users, err = svc.SearchUsers(ctx, "peanuts")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Daisy", users[0].Name)

	users, err = svc.SearchUsers(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, users)
}
