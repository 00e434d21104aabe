// Package client talks to the drumfeed REST API and keeps a local,
// optimistically updated view of the posts.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sujalbistaa/drumfeed/internal/common"
	"github.com/sujalbistaa/drumfeed/internal/models"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// Unwrap maps the status code back onto the error taxonomy so callers can
// use errors.Is(err, common.ErrForbidden) and friends.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return common.ErrValidation
	case http.StatusUnauthorized:
		return common.ErrUnauthenticated
	case http.StatusForbidden:
		return common.ErrForbidden
	case http.StatusNotFound:
		return common.ErrNotFound
	case http.StatusConflict:
		return common.ErrConflict
	default:
		return common.ErrInternal
	}
}

// API is the subset of the REST surface the Store needs.
type API interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	ListMyPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
	Like(ctx context.Context, id string) (*models.Post, error)
	Dislike(ctx context.Context, id string) (*models.Post, error)
	Comments(ctx context.Context, postID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, postID string, in models.CommentInput) (*models.Comment, error)
	UpdateComment(ctx context.Context, id string, patch models.CommentPatch) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// envelope is the server's response body.
type envelope struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Token    string           `json:"token"`
	User     *models.User     `json:"user"`
	Post     *models.Post     `json:"post"`
	Posts    []models.Post    `json:"posts"`
	Comment  *models.Comment  `json:"comment"`
	Comments []models.Comment `json:"comments"`
}

// Client is an HTTP implementation of API plus the auth endpoints.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient returns a client for the server at baseURL. hc may be nil.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Signup creates an account and keeps the returned token for later calls.
func (c *Client) Signup(ctx context.Context, username, password string) (*models.User, error) {
	return c.authenticate(ctx, "/api/auth/signup", username, password)
}

// Login keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (*models.User, error) {
	return c.authenticate(ctx, "/api/auth/login", username, password)
}

func (c *Client) authenticate(ctx context.Context, path, username, password string) (*models.User, error) {
	var env envelope
	body := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, path, body, &env); err != nil {
		return nil, err
	}
	if env.Token == "" || env.User == nil {
		return nil, errors.Join(common.ErrInternal, errors.New("auth response without token"))
	}
	c.SetToken(env.Token)
	return env.User, nil
}

func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &env); err != nil {
		return nil, err
	}
	return env.Posts, nil
}

func (c *Client) ListMyPosts(ctx context.Context) ([]models.Post, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/posts/user", nil, &env); err != nil {
		return nil, err
	}
	return env.Posts, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return post(env)
}

func (c *Client) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/api/posts", in, &env); err != nil {
		return nil, err
	}
	return post(env)
}

func (c *Client) UpdatePost(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id), patch, &env); err != nil {
		return nil, err
	}
	return post(env)
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Like(ctx context.Context, id string) (*models.Post, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id)+"/like", nil, &env); err != nil {
		return nil, err
	}
	return post(env)
}

func (c *Client) Dislike(ctx context.Context, id string) (*models.Post, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id)+"/dislike", nil, &env); err != nil {
		return nil, err
	}
	return post(env)
}

func (c *Client) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/comments/post/"+url.PathEscape(postID), nil, &env); err != nil {
		return nil, err
	}
	return env.Comments, nil
}

func (c *Client) CreateComment(ctx context.Context, postID string, in models.CommentInput) (*models.Comment, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/api/comments/post/"+url.PathEscape(postID), in, &env); err != nil {
		return nil, err
	}
	return comment(env)
}

func (c *Client) UpdateComment(ctx context.Context, id string, patch models.CommentPatch) (*models.Comment, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPut, "/api/comments/"+url.PathEscape(id), patch, &env); err != nil {
		return nil, err
	}
	return comment(env)
}

func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/comments/"+url.PathEscape(id), nil, nil)
}

// do sends body as JSON and decodes the envelope into out when out is set.
func (c *Client) do(ctx context.Context, method, path string, body any, out *envelope) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return errors.Join(common.ErrInternal, err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return errors.Join(common.ErrInternal, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return errors.Join(common.ErrInternal, fmt.Errorf("decode %s %s: %w", method, path, decodeErr))
	}
	if out != nil {
		*out = env
	}
	return nil
}

func post(env envelope) (*models.Post, error) {
	if env.Post == nil {
		return nil, errors.Join(common.ErrInternal, errors.New("response without post"))
	}
	return env.Post, nil
}

func comment(env envelope) (*models.Comment, error) {
	if env.Comment == nil {
		return nil, errors.Join(common.ErrInternal, errors.New("response without comment"))
	}
	return env.Comment, nil
}
