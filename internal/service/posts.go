package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/sujalbistaa/drumfeed/internal/common"
	"github.com/sujalbistaa/drumfeed/internal/db"
	"github.com/sujalbistaa/drumfeed/internal/logging"
	"github.com/sujalbistaa/drumfeed/internal/models"
	"github.com/sujalbistaa/drumfeed/internal/ownership"
	"github.com/sujalbistaa/drumfeed/internal/vote"
)

// VoteResult is the post after a vote plus the message for the voter.
type VoteResult struct {
	Post    *models.Post
	Message string
}

type PostService struct {
	repos  db.Repos
	events Publisher
	log    logging.Logger
}

func NewPostService(repos db.Repos, events Publisher, log logging.Logger) *PostService {
	if events == nil {
		events = NopPublisher{}
	}
	return &PostService{repos: repos, events: events, log: log}
}

// ListAll returns every post, most liked first.
func (s *PostService) ListAll(ctx context.Context) ([]models.Post, error) {
	posts, err := s.repos.Posts().All(ctx)
	if err != nil {
		return nil, fail(ctx, s.log, "Fetching posts", "Post", err)
	}
	models.SortByLikes(posts)
	return posts, nil
}

// ListMine returns the requester's posts, newest first.
func (s *PostService) ListMine(ctx context.Context, requesterID string) ([]models.Post, error) {
	posts, err := s.repos.Posts().ByUser(ctx, ownership.Normalize(requesterID))
	if err != nil {
		return nil, fail(ctx, s.log, "Fetching user posts", "Post", err)
	}
	return posts, nil
}

func (s *PostService) GetOne(ctx context.Context, postID string) (*models.Post, error) {
	id, err := parseID(postID, "Post")
	if err != nil {
		return nil, err
	}
	p, err := s.repos.Posts().ByID(ctx, id)
	if err != nil {
		return nil, fail(ctx, s.log, "Fetching post", "Post", err)
	}
	return p, nil
}

func (s *PostService) Create(ctx context.Context, requesterID string, in models.PostInput) (*models.Post, error) {
	const msg = "Drummer name and album are required"
	name, err := required(in.DrummerName, msg)
	if err != nil {
		return nil, err
	}
	album, err := required(in.Album, msg)
	if err != nil {
		return nil, err
	}

	p := &models.Post{
		ID:          uuid.NewString(),
		DrummerName: name,
		Album:       album,
		UserID:      ownership.Normalize(requesterID),
		Likes:       []string{},
		Dislikes:    []string{},
	}
	if in.DrumKit != nil {
		p.DrumKit = in.DrumKit.Clean()
	}
	if in.AddOns != nil {
		p.AddOns = in.AddOns.Clean()
	}

	if err := s.repos.Posts().Create(ctx, p); err != nil {
		return nil, fail(ctx, s.log, "Creating post", "Post", err)
	}

	s.log.Info(ctx, "post created", "post_id", p.ID, "user_id", p.UserID)
	s.events.Publish(EventPostCreated, p)
	return p, nil
}

// Update applies patch to a post owned by the requester. Descriptor slots
// are merged one by one; everything absent from the patch is kept. Fields
// are validated only once the post is known to exist and to be the
// requester's.
func (s *PostService) Update(ctx context.Context, requesterID, postID string, patch models.PostPatch) (*models.Post, error) {
	id, err := parseID(postID, "Post")
	if err != nil {
		return nil, err
	}

	p, err := s.repos.Posts().Mutate(ctx, id, func(p *models.Post) error {
		if err := ownership.Authorize(p.UserID, requesterID); err != nil {
			return common.Error(err, "You are not authorized to update this post")
		}
		name, err := optional(patch.DrummerName, "Drummer name cannot be empty")
		if err != nil {
			return err
		}
		album, err := optional(patch.Album, "Album cannot be empty")
		if err != nil {
			return err
		}
		if name != nil {
			p.DrummerName = *name
		}
		if album != nil {
			p.Album = *album
		}
		if patch.DrumKit != nil {
			p.DrumKit = p.DrumKit.Merge(*patch.DrumKit)
		}
		if patch.AddOns != nil {
			p.AddOns = p.AddOns.Merge(*patch.AddOns)
		}
		return nil
	})
	if err != nil {
		return nil, fail(ctx, s.log, "Updating post", "Post", err)
	}

	s.events.Publish(EventPostUpdated, p)
	return p, nil
}

// Delete removes a post owned by the requester together with its comments.
func (s *PostService) Delete(ctx context.Context, requesterID, postID string) error {
	id, err := parseID(postID, "Post")
	if err != nil {
		return err
	}

	err = s.repos.Transaction(ctx, func(r db.Repos) error {
		p, err := r.Posts().ByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ownership.Authorize(p.UserID, requesterID); err != nil {
			return common.Error(err, "You are not authorized to delete this post")
		}
		if err := r.Comments().DeleteByPost(ctx, id); err != nil {
			return err
		}
		return r.Posts().Delete(ctx, id)
	})
	if err != nil {
		return fail(ctx, s.log, "Deleting post", "Post", err)
	}

	s.log.Info(ctx, "post deleted", "post_id", id)
	s.events.Publish(EventPostDeleted, map[string]string{"_id": id})
	return nil
}

// Vote toggles the requester's like or dislike. The read-modify-write runs
// in one transaction so concurrent voters cannot lose each other's votes.
func (s *PostService) Vote(ctx context.Context, requesterID, postID string, action vote.Action) (*VoteResult, error) {
	if !action.Valid() {
		return nil, common.Errorf(common.ErrValidation, "Unknown vote action %q", action)
	}
	uid := ownership.Normalize(requesterID)
	if uid == "" {
		return nil, common.ErrUnauthenticated
	}
	id, err := parseID(postID, "Post")
	if err != nil {
		return nil, err
	}

	var outcome vote.Outcome
	p, err := s.repos.Posts().Mutate(ctx, id, func(p *models.Post) error {
		r := vote.Apply(p.Likes, p.Dislikes, uid, action)
		p.Likes, p.Dislikes = r.Likes, r.Dislikes
		outcome = r.Outcome
		return nil
	})
	if err != nil {
		return nil, fail(ctx, s.log, verb(action)+" post", "Post", err)
	}

	s.events.Publish(EventPostVoted, p)
	return &VoteResult{Post: p, Message: vote.Message(action, outcome)}, nil
}

func verb(a vote.Action) string {
	if a == vote.Dislike {
		return "Disliking"
	}
	return "Liking"
}
