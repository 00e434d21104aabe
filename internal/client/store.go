package client

import (
	"context"
	"slices"
	"sync"

	"github.com/sujalbistaa/drumfeed/internal/common"
	"github.com/sujalbistaa/drumfeed/internal/models"
	"github.com/sujalbistaa/drumfeed/internal/ownership"
	"github.com/sujalbistaa/drumfeed/internal/vote"
)

// Store caches posts by id. The "all" and "mine" views are computed from
// the one map on every read, so a post never has two diverging copies.
//
// Only votes are applied optimistically. Creates, updates and deletes touch
// the cache after the server has accepted them.
//
// Concurrent toggles on the same post are not queued: each one works from
// whatever the cache holds when it starts, and a failing toggle restores
// the post as it was before that toggle, possibly discarding a newer one.
type Store struct {
	api API

	mu        sync.Mutex
	userID    string
	posts     map[string]models.Post
	listeners []func()
}

func NewStore(api API, userID string) *Store {
	return &Store{
		api:    api,
		userID: ownership.Normalize(userID),
		posts:  make(map[string]models.Post),
	}
}

// SetUser switches the current user; an empty id logs out.
func (s *Store) SetUser(userID string) {
	s.mu.Lock()
	s.userID = ownership.Normalize(userID)
	s.mu.Unlock()
	s.notify()
}

func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// OnChange registers fn to run after every change to the cached posts.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) notify() {
	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// All returns every cached post, most liked first.
func (s *Store) All() []models.Post {
	s.mu.Lock()
	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, clonePost(p))
	}
	s.mu.Unlock()
	models.SortByLikes(out)
	return out
}

// Mine returns the current user's cached posts, newest first.
func (s *Store) Mine() []models.Post {
	s.mu.Lock()
	out := []models.Post{}
	for _, p := range s.posts {
		if s.userID != "" && ownership.Same(p.UserID, s.userID) {
			out = append(out, clonePost(p))
		}
	}
	s.mu.Unlock()
	models.SortNewest(out)
	return out
}

// Post returns one cached post.
func (s *Store) Post(id string) (models.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return models.Post{}, false
	}
	return clonePost(p), true
}

// LoadAll replaces the cache with the server's post list.
func (s *Store) LoadAll(ctx context.Context) error {
	posts, err := s.api.ListPosts(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.posts = make(map[string]models.Post, len(posts))
	for _, p := range posts {
		s.posts[p.ID] = p
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

// LoadMine refreshes the current user's posts, dropping cached ones the
// server no longer returns.
func (s *Store) LoadMine(ctx context.Context) error {
	posts, err := s.api.ListMyPosts(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	fresh := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		fresh[p.ID] = struct{}{}
		s.posts[p.ID] = p
	}
	for id, p := range s.posts {
		if _, ok := fresh[id]; !ok && ownership.Same(p.UserID, s.userID) {
			delete(s.posts, id)
		}
	}
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) Create(ctx context.Context, in models.PostInput) (*models.Post, error) {
	p, err := s.api.CreatePost(ctx, in)
	if err != nil {
		return nil, err
	}
	s.put(*p)
	return p, nil
}

func (s *Store) Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	p, err := s.api.UpdatePost(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.put(*p)
	return p, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.api.DeletePost(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.posts, id)
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) ToggleLike(ctx context.Context, id string) (*models.Post, error) {
	return s.toggle(ctx, id, vote.Like, s.api.Like)
}

func (s *Store) ToggleDislike(ctx context.Context, id string) (*models.Post, error) {
	return s.toggle(ctx, id, vote.Dislike, s.api.Dislike)
}

// toggle applies the vote locally, asks the server, then either overwrites
// the post with the server's copy or puts back the pre-vote post.
func (s *Store) toggle(ctx context.Context, id string, action vote.Action,
	send func(context.Context, string) (*models.Post, error)) (*models.Post, error) {

	s.mu.Lock()
	if s.userID == "" {
		s.mu.Unlock()
		return nil, common.Error(common.ErrUnauthenticated, "Log in to vote")
	}
	before, cached := s.posts[id]
	if cached {
		r := vote.Apply(before.Likes, before.Dislikes, s.userID, action)
		optimistic := before
		optimistic.Likes, optimistic.Dislikes = r.Likes, r.Dislikes
		s.posts[id] = optimistic
	}
	s.mu.Unlock()
	if cached {
		s.notify()
	}

	p, err := send(ctx, id)
	if err != nil {
		if cached {
			s.mu.Lock()
			if _, still := s.posts[id]; still {
				s.posts[id] = before
			}
			s.mu.Unlock()
			s.notify()
		}
		return nil, err
	}

	s.put(*p)
	return p, nil
}

func (s *Store) put(p models.Post) {
	s.mu.Lock()
	s.posts[p.ID] = p
	s.mu.Unlock()
	s.notify()
}

// Comments are not cached; these pass straight through to the server.

func (s *Store) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	return s.api.Comments(ctx, postID)
}

func (s *Store) CreateComment(ctx context.Context, postID string, in models.CommentInput) (*models.Comment, error) {
	return s.api.CreateComment(ctx, postID, in)
}

func (s *Store) UpdateComment(ctx context.Context, id string, patch models.CommentPatch) (*models.Comment, error) {
	return s.api.UpdateComment(ctx, id, patch)
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	return s.api.DeleteComment(ctx, id)
}

func clonePost(p models.Post) models.Post {
	p.Likes = slices.Clone(p.Likes)
	p.Dislikes = slices.Clone(p.Dislikes)
	return p
}
