package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/sujalbistaa/drumfeed/internal/common"
	"github.com/sujalbistaa/drumfeed/internal/db"
	"github.com/sujalbistaa/drumfeed/internal/models"
	"github.com/sujalbistaa/drumfeed/internal/ownership"
)

// ListComments returns the comments on a post, newest first.
func (s *PostService) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	id, err := parseID(postID, "Post")
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Posts().ByID(ctx, id); err != nil {
		return nil, fail(ctx, s.log, "Fetching comments", "Post", err)
	}
	comments, err := s.repos.Comments().ByPost(ctx, id)
	if err != nil {
		return nil, fail(ctx, s.log, "Fetching comments", "Comment", err)
	}
	return comments, nil
}

func (s *PostService) CreateComment(ctx context.Context, requesterID, postID string, in models.CommentInput) (*models.Comment, error) {
	const msg = "Title and text are required"
	title, err := required(in.Title, msg)
	if err != nil {
		return nil, err
	}
	text, err := required(in.Text, msg)
	if err != nil {
		return nil, err
	}
	id, err := parseID(postID, "Post")
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Posts().ByID(ctx, id); err != nil {
		return nil, fail(ctx, s.log, "Creating comment", "Post", err)
	}

	c := &models.Comment{
		ID:     uuid.NewString(),
		Title:  title,
		Text:   text,
		UserID: ownership.Normalize(requesterID),
		PostID: id,
	}
	if err := s.repos.Comments().Create(ctx, c); err != nil {
		return nil, fail(ctx, s.log, "Creating comment", "Comment", err)
	}

	s.events.Publish(EventCommentCreated, c)
	return c, nil
}

// UpdateComment applies patch and marks the comment edited, even when the
// patch changes nothing. Ownership is checked before the fields.
func (s *PostService) UpdateComment(ctx context.Context, requesterID, commentID string, patch models.CommentPatch) (*models.Comment, error) {
	id, err := parseID(commentID, "Comment")
	if err != nil {
		return nil, err
	}

	var out *models.Comment
	err = s.repos.Transaction(ctx, func(r db.Repos) error {
		c, err := r.Comments().ByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ownership.Authorize(c.UserID, requesterID); err != nil {
			return common.Error(err, "You are not authorized to edit this comment")
		}
		title, err := optional(patch.Title, "Title cannot be empty")
		if err != nil {
			return err
		}
		text, err := optional(patch.Text, "Text cannot be empty")
		if err != nil {
			return err
		}
		if title != nil {
			c.Title = *title
		}
		if text != nil {
			c.Text = *text
		}
		c.IsEdited = true
		if err := r.Comments().Save(ctx, c); err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, fail(ctx, s.log, "Updating comment", "Comment", err)
	}

	s.events.Publish(EventCommentUpdated, out)
	return out, nil
}

func (s *PostService) DeleteComment(ctx context.Context, requesterID, commentID string) error {
	id, err := parseID(commentID, "Comment")
	if err != nil {
		return err
	}

	var postID string
	err = s.repos.Transaction(ctx, func(r db.Repos) error {
		c, err := r.Comments().ByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ownership.Authorize(c.UserID, requesterID); err != nil {
			return common.Error(err, "You are not authorized to delete this comment")
		}
		postID = c.PostID
		return r.Comments().Delete(ctx, id)
	})
	if err != nil {
		return fail(ctx, s.log, "Deleting comment", "Comment", err)
	}

	s.events.Publish(EventCommentDeleted, map[string]string{"_id": id, "drummerPost": postID})
	return nil
}
