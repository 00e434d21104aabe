package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sujalbistaa/drumfeed/internal/auth"
	"github.com/sujalbistaa/drumfeed/internal/common"
	"github.com/sujalbistaa/drumfeed/internal/logging"
	"github.com/sujalbistaa/drumfeed/internal/models"
	"github.com/sujalbistaa/drumfeed/internal/service"
	"github.com/sujalbistaa/drumfeed/internal/vote"
	"github.com/sujalbistaa/drumfeed/internal/ws"
)

// --- Structs for request binding ---
type credentialsInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Env carries the handlers' dependencies.
type Env struct {
	Auth  *service.AuthService
	Posts *service.PostService
	Hub   *ws.Hub
	Log   logging.Logger
}

// --- Responses ---

// statusOf maps the error taxonomy onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail aborts with the status and message for err. Unclassified errors are
// logged since they never went through a service.
func (e *Env) fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError && !errors.Is(err, common.ErrInternal) {
		e.Log.Error(c.Request.Context(), "unclassified error", "err", err, "path", c.FullPath())
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": common.Message(err)})
}

// ok writes a success envelope.
func ok(c *gin.Context, status int, body gin.H) {
	body["success"] = true
	c.JSON(status, body)
}

// bind decodes the JSON body; a malformed body is a validation error.
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return common.Error(common.ErrValidation, "Invalid request body")
	}
	return nil
}

// --- Auth Handlers ---

// Signup handles POST /api/auth/signup.
func (e *Env) Signup(c *gin.Context) {
	var in credentialsInput
	if err := bind(c, &in); err != nil {
		e.fail(c, err)
		return
	}
	res, err := e.Auth.Signup(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		e.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "User created successfully", "token": res.Token, "user": res.User})
}

// Login handles POST /api/auth/login.
func (e *Env) Login(c *gin.Context) {
	var in credentialsInput
	if err := bind(c, &in); err != nil {
		e.fail(c, err)
		return
	}
	res, err := e.Auth.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		e.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Login successful", "token": res.Token, "user": res.User})
}

// Health handles GET /api/test.
func (e *Env) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Server is running!"})
}

// Protected echoes the caller's identity.
func (e *Env) Protected(c *gin.Context) {
	id := identity(c)
	c.JSON(http.StatusOK, gin.H{"message": "You accessed a protected route!", "user": gin.H{"_id": id.UserID, "username": id.Username}})
}

// --- Post Handlers ---

// GetPosts returns every post, most liked first.
func (e *Env) GetPosts(c *gin.Context) {
	posts, err := e.Posts.ListAll(c.Request.Context())
	if err != nil {
		e.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"posts": nonNil(posts)})
}

// GetMyPosts returns the caller's posts, newest first.
func (e *Env) GetMyPosts(c *gin.Context) {
	posts, err := e.Posts.ListMine(c.Request.Context(), identity(c).UserID)
	if err != nil {
		e.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"posts": nonNil(posts)})
}

// GetPost handles GET /api/posts/:id.
func (e *Env) GetPost(c *gin.Context) {
	post, err := e.Posts.GetOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		e.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"post": post})
}

// CreatePost handles POST /api/posts.
func (e *Env) CreatePost(c *gin.Context) {
	var in models.PostInput
	if err := bind(c, &in); err != nil {
		e.fail(c, err)
		return
	}
	post, err := e.Posts.Create(c.Request.Context(), identity(c).UserID, in)
	if err != nil {
		e.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "Post created successfully", "post": post})
}

// UpdatePost applies a partial update; owner only.
func (e *Env) UpdatePost(c *gin.Context) {
	var patch models.PostPatch
	if err := bind(c, &patch); err != nil {
		e.fail(c, err)
		return
	}
	post, err := e.Posts.Update(c.Request.Context(), identity(c).UserID, c.Param("id"), patch)
	if err != nil {
		e.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Post updated successfully", "post": post})
}

// VoteOnPost serves both /like and /dislike.
func (e *Env) VoteOnPost(action vote.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := e.Posts.Vote(c.Request.Context(), identity(c).UserID, c.Param("id"), action)
		if err != nil {
			e.fail(c, err)
			return
		}
		ok(c, http.StatusOK, gin.H{"message": res.Message, "post": res.Post})
	}
}

// DeletePost removes a post and its comments; owner only.
func (e *Env) DeletePost(c *gin.Context) {
	if err := e.Posts.Delete(c.Request.Context(), identity(c).UserID, c.Param("id")); err != nil {
		e.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// --- Comment Handlers ---

// GetComments lists a post's comments, newest first.
func (e *Env) GetComments(c *gin.Context) {
	comments, err := e.Posts.ListComments(c.Request.Context(), c.Param("postId"))
	if err != nil {
		e.fail(c, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	ok(c, http.StatusOK, gin.H{"comments": comments})
}

// CreateComment handles POST /api/comments/post/:postId.
func (e *Env) CreateComment(c *gin.Context) {
	var in models.CommentInput
	if err := bind(c, &in); err != nil {
		e.fail(c, err)
		return
	}
	comment, err := e.Posts.CreateComment(c.Request.Context(), identity(c).UserID, c.Param("postId"), in)
	if err != nil {
		e.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "Comment created successfully", "comment": comment})
}

// UpdateComment edits a comment and marks it edited; author only.
func (e *Env) UpdateComment(c *gin.Context) {
	var patch models.CommentPatch
	if err := bind(c, &patch); err != nil {
		e.fail(c, err)
		return
	}
	comment, err := e.Posts.UpdateComment(c.Request.Context(), identity(c).UserID, c.Param("id"), patch)
	if err != nil {
		e.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Comment updated successfully", "comment": comment})
}

// DeleteComment handles DELETE /api/comments/:id; author only.
func (e *Env) DeleteComment(c *gin.Context) {
	if err := e.Posts.DeleteComment(c.Request.Context(), identity(c).UserID, c.Param("id")); err != nil {
		e.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

// --- WebSocket ---

// ServeWs upgrades the connection once the token in ?token= checks out.
// Browsers cannot set headers on a websocket handshake.
func (e *Env) ServeWs(c *gin.Context) {
	id, err := e.Auth.Identify(c.Query("token"))
	if err != nil {
		e.fail(c, err)
		return
	}
	if err := ws.ServeWs(e.Hub, id.UserID, c.Writer, c.Request); err != nil {
		e.Log.Warn(c.Request.Context(), "websocket upgrade failed", "err", err)
	}
}

// --- Helpers ---

// nonNil keeps empty lists serialised as [] instead of null.
func nonNil(posts []models.Post) []models.Post {
	if posts == nil {
		return []models.Post{}
	}
	return posts
}

// identity returns what RequireAuth stored; zero when the route is public.
func identity(c *gin.Context) auth.Identity {
	id, _ := c.Get(identityKey)
	v, _ := id.(auth.Identity)
	return v
}
