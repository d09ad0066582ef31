package http

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"jobby-api/internal/auth"
	"jobby-api/internal/service"
	"jobby-api/internal/storage"
)

// TokenVerifier validates bearer tokens presented by clients.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Config carries the collaborators and settings of a Handler.
type Config struct {
	Users    service.UserService
	Jobs     service.JobService
	Feedback service.FeedbackService
	Tokens   TokenVerifier

	// Storage is optional; logo uploads answer 503 without it.
	Storage       storage.Service
	Bucket        string
	KeyPrefix     string
	Region        string
	PublicBaseURL string
	MaxLogoBytes  int64

	// MaxJobPayloadBytes caps the body of job create requests.
	MaxJobPayloadBytes int64

	FeedbackLocation *time.Location
	AllowOrigins     []string
	Logger           *logrus.Logger
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	jobs     service.JobService
	feedback service.FeedbackService
	tokens   TokenVerifier

	storage       storage.Service
	bucket        string
	keyPrefix     string
	region        string
	publicBaseURL string
	maxLogoBytes  int64
	maxJobBytes   int64

	feedbackLoc  *time.Location
	allowOrigins []string
	logger       *logrus.Logger
}

const (
	defaultMaxLogoBytes = 2 << 20
	defaultMaxJobBytes  = 1 << 20
)

func NewHandler(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.FeedbackLocation == nil {
		cfg.FeedbackLocation = time.UTC
	}
	if cfg.MaxLogoBytes <= 0 {
		cfg.MaxLogoBytes = defaultMaxLogoBytes
	}
	if cfg.MaxJobPayloadBytes <= 0 {
		cfg.MaxJobPayloadBytes = defaultMaxJobBytes
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}
	return &Handler{
		users:         cfg.Users,
		jobs:          cfg.Jobs,
		feedback:      cfg.Feedback,
		tokens:        cfg.Tokens,
		storage:       cfg.Storage,
		bucket:        cfg.Bucket,
		keyPrefix:     cfg.KeyPrefix,
		region:        cfg.Region,
		publicBaseURL: cfg.PublicBaseURL,
		maxLogoBytes:  cfg.MaxLogoBytes,
		maxJobBytes:   cfg.MaxJobPayloadBytes,
		feedbackLoc:   cfg.FeedbackLocation,
		allowOrigins:  cfg.AllowOrigins,
		logger:        cfg.Logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestIDMiddleware(), accessLogMiddleware(h.logger), corsMiddleware(h.allowOrigins))

	router.POST("/signup", h.signup)
	router.POST("/login", h.login)
	router.GET("/protected", h.requireAuth(), h.currentUser)

	api := router.Group("/api")
	{
		api.GET("/users", h.listUsers)
		api.GET("/users/me", h.requireAuth(), h.currentUser)
		api.DELETE("/users/:id", h.deleteUser)

		api.POST("/jobs", h.createJobs)
		api.GET("/jobs", h.listJobs)
		api.DELETE("/jobs", h.deleteAllJobs)
		api.GET("/jobs/:id", h.getJob)
		api.DELETE("/jobs/:id", h.deleteJob)
		api.POST("/jobs/:id/logo", h.uploadJobLogo)

		api.POST("/feedback", h.requireAuth(), h.createFeedback)
		api.GET("/feedback", h.listFeedback)
		api.DELETE("/feedback", h.deleteAllFeedback)
		api.GET("/feedback/:id", h.getFeedback)
		api.PUT("/feedback/:id", h.updateFeedback)
		api.DELETE("/feedback/:id", h.deleteFeedback)

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	wildcard := slices.Contains(origins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case wildcard:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(origins, origin):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
