// Package service holds the application's use cases: account signup/login
// and the post, vote and comment operations. Services validate input, check
// ownership, apply vote transitions and call the persistence gateway.
package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/sujalbistaa/drumfeed/internal/common"
	"github.com/sujalbistaa/drumfeed/internal/logging"
)

// Publisher receives an event after every successful mutation.
type Publisher interface {
	Publish(eventType string, data any)
}

type NopPublisher struct{}

func (NopPublisher) Publish(string, any) {}

const (
	EventPostCreated    = "post_created"
	EventPostUpdated    = "post_updated"
	EventPostDeleted    = "post_deleted"
	EventPostVoted      = "post_voted"
	EventCommentCreated = "comment_created"
	EventCommentUpdated = "comment_updated"
	EventCommentDeleted = "comment_deleted"
)

// parseID returns the canonical form of a resource id. Anything that is not
// a uuid cannot exist, so it is reported as missing.
func parseID(id, what string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", common.Errorf(common.ErrNotFound, "%s not found", what)
	}
	return u.String(), nil
}

// required trims s and fails with ErrValidation when nothing is left.
func required(s, msg string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", common.Error(common.ErrValidation, msg)
	}
	return v, nil
}

// optional validates a patch field: nil stays nil, present must be non-blank.
func optional(s *string, msg string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	v, err := required(*s, msg)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// fail logs internal errors and replaces a bare ErrNotFound from the
// gateway with a message naming the resource.
func fail(ctx context.Context, log logging.Logger, op, what string, err error) error {
	switch {
	case errors.Is(err, common.ErrInternal):
		log.Error(ctx, op+" failed", "err", err)
		return common.Errorf(common.ErrInternal, "Error %s", strings.ToLower(op))
	case err == common.ErrNotFound:
		return common.Errorf(common.ErrNotFound, "%s not found", what)
	default:
		return err
	}
}
