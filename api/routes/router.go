package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"instaclone/internal/auth"
	"instaclone/internal/notifications"
	"instaclone/internal/posts"
	"instaclone/internal/shared/config"
	"instaclone/internal/shared/database"
	"instaclone/internal/shared/security"
	"instaclone/internal/users"
	"instaclone/pkg/cache"
	"instaclone/pkg/logger"
)

// Router holds all route dependencies
type Router struct {
	config     *config.Config
	db         *database.DB
	codec      *auth.Codec
	dispatcher *notifications.Dispatcher
	log        *logger.Logger

	hasher   *security.Hasher
	userRepo users.Repository
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, codec *auth.Codec, dispatcher *notifications.Dispatcher, log *logger.Logger) *Router {
	return &Router{
		config:     cfg,
		db:         db,
		codec:      codec,
		dispatcher: dispatcher,
		log:        log,
		hasher:     security.NewHasher(0),
		userRepo:   users.NewRepository(db.PostgreSQL),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupUserRoutes(api)
		r.setupPostRoutes(api)
	}
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   r.config.ProjectName,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   r.config.ProjectName,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	store := auth.NewRedisTokenStore(r.db.Redis)
	service := auth.NewService(r.userRepo, r.hasher, r.codec, store, r.dispatcher, r.log, auth.ServiceConfig{
		Issuer:     r.config.TokenIssuer(),
		Audience:   r.config.TokenAudience(),
		AccessTTL:  r.config.JWT.AccessExpiresIn,
		RefreshTTL: r.config.JWT.RefreshExpiresIn,
		ResetTTL:   r.config.JWT.ResetExpiresIn,
	})
	controller := auth.NewController(service)

	auth.SetupAuthRoutes(rg, controller, r.config)
}

func (r *Router) setupUserRoutes(rg *gin.RouterGroup) {
	service := users.NewService(r.userRepo, r.hasher, r.dispatcher, r.log)
	controller := users.NewController(service)

	users.SetupUserRoutes(rg, controller, r.config)
}

func (r *Router) setupPostRoutes(rg *gin.RouterGroup) {
	repo := posts.NewRepository(r.db.PostgreSQL)
	cacheService := cache.NewService(r.db.Redis)
	service := posts.NewService(repo, cacheService, r.config.Redis.CacheTTL, r.log)
	controller := posts.NewController(service)

	posts.SetupPostRoutes(rg, controller, r.config)
}
