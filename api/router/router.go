package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"blog-api/api/handlers"
	"blog-api/api/middleware"
	"blog-api/config"
	_ "blog-api/docs"
	"blog-api/services"
)

// Pinger checks that the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	DefaultLimit int
	Static       config.StaticConfig
	// Health is pinged by GET /health. Nil reports ok unconditionally.
	Health Pinger
}

func New(postsSvc *services.PostService, opts Options) *gin.Engine {
	if opts.DefaultLimit < 1 {
		opts.DefaultLimit = services.DefaultLimit
	}

	r := gin.New()
	r.Use(middleware.RequestTrace(), gin.Recovery())

	if opts.Static.Dir != "" {
		r.Use(handlers.LegacySlugRedirect(opts.Static.BlogPath))
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if opts.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
			defer cancel()
			if err := opts.Health.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.GET("/blogs", handlers.ListPostsHandler(postsSvc, opts.DefaultLimit))
		api.GET("/blogs/count", handlers.CountPostsHandler(postsSvc))
		api.GET("/blogs/slug/:slug", handlers.GetPostBySlugHandler(postsSvc))
		api.GET("/blogs/:id", handlers.GetPostHandler(postsSvc))
		api.POST("/blogs", handlers.CreatePostHandler(postsSvc))
		api.PUT("/blogs/:id", handlers.UpdatePostHandler(postsSvc))
		api.DELETE("/blogs/:id", handlers.DeletePostHandler(postsSvc))
	}

	r.NoRoute(handlers.NotFoundHandler(opts.Static.Dir))

	return r
}

// WithCORS wraps h so that browsers may call the API from the given origins.
func WithCORS(h http.Handler, allowedOrigins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{middleware.HeaderRequestID},
	}).Handler(h)
}
