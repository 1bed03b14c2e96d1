package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"whiskr/internal/auth"
	"whiskr/internal/metrics"
	"whiskr/internal/service"
)

// TokenVerifier resolves a bearer token into the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Services struct {
	Users     service.UserService
	Recipes   service.RecipeService
	Ratings   service.RatingService
	Bookmarks service.BookmarkService
}

type Config struct {
	QueryTimeout time.Duration
	CORSOrigin   string
	MaxPhotoSize int64
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	svc     Services
	tokens  TokenVerifier
	health  Pinger
	logger  *logrus.Logger
	metrics *metrics.Metrics
	cfg     Config
}

// NewHandler builds the API. health and m may be nil.
func NewHandler(svc Services, tokens TokenVerifier, health Pinger, logger *logrus.Logger, m *metrics.Metrics, cfg Config) *Handler {
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 5 * time.Second
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	if cfg.MaxPhotoSize <= 0 {
		cfg.MaxPhotoSize = 5 << 20
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		svc:     svc,
		tokens:  tokens,
		health:  health,
		logger:  logger,
		metrics: m,
		cfg:     cfg,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(h.cfg.CORSOrigin), h.requestLogger())

	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	api := router.Group("/api", h.queryTimeout())
	{
		api.GET("/health", h.healthCheck)

		users := api.Group("/users")
		users.POST("/register", h.register)
		users.POST("/login", h.login)
		users.GET("/me", h.requireAuth(), h.me)

		recipes := api.Group("/recipes")
		recipes.GET("", h.optionalAuth(), h.listRecipes)
		recipes.GET("/:id", h.optionalAuth(), h.getRecipe)
		recipes.POST("", h.requireAuth(), h.createRecipe)
		recipes.PUT("/:id", h.requireAuth(), h.updateRecipe)
		recipes.DELETE("/:id", h.requireAuth(), h.deleteRecipe)
		recipes.PUT("/:id/photo", h.requireAuth(), h.uploadPhoto)
		recipes.GET("/:id/photo", h.getPhoto)

		ratings := api.Group("/ratings")
		ratings.GET("", h.listRatings)
		ratings.POST("", h.requireAuth(), h.createRating)
		ratings.PUT("/:id", h.requireAuth(), h.updateRating)
		ratings.DELETE("/:id", h.requireAuth(), h.deleteRating)

		bookmarks := api.Group("/bookmarks", h.requireAuth())
		bookmarks.GET("", h.listBookmarks)
		bookmarks.GET("/user/:userId", h.listUserBookmarks)
		bookmarks.POST("", h.addBookmark)
		bookmarks.DELETE("", h.removeBookmark)
	}
}

func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	if h.health != nil {
		if err := h.health.Ping(c.Request.Context()); err != nil {
			h.logger.WithError(err).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
