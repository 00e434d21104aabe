package http

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/sujalbistaa/drumfeed/internal/vote"
)

// RouteConfig carries the transport settings taken from the server config.
type RouteConfig struct {
	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int
}

// SetupRoutes configures all application routes and middleware. ctx bounds
// the rate limiter's background pruning.
func SetupRoutes(ctx context.Context, router *gin.Engine, env *Env, cfg RouteConfig) {
	// --- Middleware ---
	router.Use(RequestLogger(env.Log))
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	corsOrigin := cfg.CORSOrigin
	if corsOrigin == "" {
		corsOrigin = "*"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: corsOrigin != "*",
	}))

	// --- Rate Limiter Setup ---
	limiter := NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	go limiter.PruneEvery(ctx, 10*time.Minute)
	limited := RateLimitMiddleware(limiter)
	requireAuth := RequireAuth(env.Auth)

	// --- API Routes ---
	api := router.Group("/api")
	{
		api.GET("/test", env.Health)
		api.GET("/protected", requireAuth, env.Protected)

		authGroup := api.Group("/auth", limited)
		authGroup.POST("/signup", env.Signup)
		authGroup.POST("/login", env.Login)

		posts := api.Group("/posts", requireAuth)
		posts.GET("", env.GetPosts)
		posts.GET("/user", env.GetMyPosts)
		posts.GET("/:id", env.GetPost)
		posts.POST("", limited, env.CreatePost)
		posts.PUT("/:id", env.UpdatePost)
		posts.PUT("/:id/like", env.VoteOnPost(vote.Like))
		posts.PUT("/:id/dislike", env.VoteOnPost(vote.Dislike))
		posts.DELETE("/:id", env.DeletePost)

		comments := api.Group("/comments", requireAuth)
		comments.GET("/post/:postId", env.GetComments)
		comments.POST("/post/:postId", env.CreateComment)
		comments.PUT("/:id", env.UpdateComment)
		comments.DELETE("/:id", env.DeleteComment)
	}

	// --- WebSocket Route ---
	router.GET("/ws", env.ServeWs)
}
