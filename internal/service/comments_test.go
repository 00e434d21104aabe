package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujalbistaa/drumfeed/internal/common"
	"github.com/sujalbistaa/drumfeed/internal/models"
)

func TestCreateComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner, fan := env.user(t, "owner"), env.user(t, "fan")
	p := env.post(t, owner, "Stewart Copeland", "Synchronicity")

	c, err := env.posts.CreateComment(ctx, fan.ID, p.ID, models.CommentInput{Title: " Splash ", Text: "Those splashes"})
	require.NoError(t, err)

	assert.Equal(t, "Splash", c.Title)
	assert.Equal(t, p.ID, c.PostID)
	assert.False(t, c.IsEdited)
	require.NotNil(t, c.User)
	assert.Equal(t, "fan", c.User.Username)
	assert.Contains(t, env.events.types(), EventCommentCreated)
}

func TestCreateComment_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "u")
	p := env.post(t, u, "Stewart Copeland", "Synchronicity")

	_, err := env.posts.CreateComment(ctx, u.ID, p.ID, models.CommentInput{Title: "", Text: "x"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "Title and text are required", err.Error())

	_, err = env.posts.CreateComment(ctx, u.ID, uuid.NewString(), models.CommentInput{Title: "t", Text: "x"})
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "Post not found", err.Error())
}

func TestListComments_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "u")
	p := env.post(t, u, "Stewart Copeland", "Synchronicity")
	other := env.post(t, u, "Topper Headon", "London Calling")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := env.posts.CreateComment(ctx, u.ID, p.ID, models.CommentInput{Title: "1", Text: "first"})
	require.NoError(t, err)
	second, err := env.posts.CreateComment(ctx, u.ID, p.ID, models.CommentInput{Title: "2", Text: "second"})
	require.NoError(t, err)
	_, err = env.posts.CreateComment(ctx, u.ID, other.ID, models.CommentInput{Title: "x", Text: "elsewhere"})
	require.NoError(t, err)
	env.backdate(t, &models.Comment{}, first.ID, base)
	env.backdate(t, &models.Comment{}, second.ID, base.Add(time.Second))

	comments, err := env.posts.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, second.ID, comments[0].ID)
	assert.Equal(t, first.ID, comments[1].ID)
	assert.Equal(t, "u", comments[0].User.Username)

	_, err = env.posts.ListComments(ctx, uuid.NewString())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateComment_MarksEditedForever(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.user(t, "u")
	p := env.post(t, u, "Stewart Copeland", "Synchronicity")
	c, err := env.posts.CreateComment(ctx, u.ID, p.ID, models.CommentInput{Title: "t", Text: "x"})
	require.NoError(t, err)

	got, err := env.posts.UpdateComment(ctx, u.ID, c.ID, models.CommentPatch{Text: str("better")})
	require.NoError(t, err)
	assert.True(t, got.IsEdited)
	assert.Equal(t, "t", got.Title)
	assert.Equal(t, "better", got.Text)

	got, err = env.posts.UpdateComment(ctx, u.ID, c.ID, models.CommentPatch{})
	require.NoError(t, err)
	assert.True(t, got.IsEdited)

	comments, err := env.posts.ListComments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.True(t, comments[0].IsEdited)
	assert.Equal(t, "better", comments[0].Text)
}

func TestUpdateComment_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author, other := env.user(t, "author"), env.user(t, "other")
	p := env.post(t, author, "Stewart Copeland", "Synchronicity")
	c, err := env.posts.CreateComment(ctx, author.ID, p.ID, models.CommentInput{Title: "t", Text: "x"})
	require.NoError(t, err)

	_, err = env.posts.UpdateComment(ctx, other.ID, c.ID, models.CommentPatch{Text: str("mine now")})
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "You are not authorized to edit this comment", err.Error())

	_, err = env.posts.UpdateComment(ctx, author.ID, c.ID, models.CommentPatch{Title: str(" ")})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = env.posts.UpdateComment(ctx, author.ID, uuid.NewString(), models.CommentPatch{})
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "Comment not found", err.Error())

	comments, err := env.posts.ListComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", comments[0].Text)
	assert.False(t, comments[0].IsEdited)
}

func TestDeleteComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author, other := env.user(t, "author"), env.user(t, "other")
	p := env.post(t, author, "Stewart Copeland", "Synchronicity")
	c, err := env.posts.CreateComment(ctx, author.ID, p.ID, models.CommentInput{Title: "t", Text: "x"})
	require.NoError(t, err)

	err = env.posts.DeleteComment(ctx, other.ID, c.ID)
	require.ErrorIs(t, err, common.ErrForbidden)

	require.NoError(t, env.posts.DeleteComment(ctx, author.ID, c.ID))
	comments, err := env.posts.ListComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	err = env.posts.DeleteComment(ctx, author.ID, c.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, EventCommentDeleted, env.events.types()[len(env.events.types())-1])
}

func TestUpdateComment_OwnershipAndExistenceBeforeFieldChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author, other := env.user(t, "author"), env.user(t, "other")
	p := env.post(t, author, "Stewart Copeland", "Synchronicity")
	c, err := env.posts.CreateComment(ctx, author.ID, p.ID, models.CommentInput{Title: "t", Text: "x"})
	require.NoError(t, err)

	_, err = env.posts.UpdateComment(ctx, other.ID, c.ID, models.CommentPatch{Text: str(" ")})
	require.ErrorIs(t, err, common.ErrForbidden)

	_, err = env.posts.UpdateComment(ctx, author.ID, uuid.NewString(), models.CommentPatch{Title: str("")})
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "Comment not found", err.Error())

	_, err = env.posts.UpdateComment(ctx, author.ID, c.ID, models.CommentPatch{Title: str("new"), Text: str("")})
	require.ErrorIs(t, err, common.ErrValidation)

	comments, err := env.posts.ListComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "t", comments[0].Title)
	assert.False(t, comments[0].IsEdited)
}
