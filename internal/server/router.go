package server

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"github.com/equipskill/equipskill-dashboard/internal/cache"
	"github.com/equipskill/equipskill-dashboard/internal/handlers"
	"github.com/equipskill/equipskill-dashboard/internal/middleware"
	"github.com/equipskill/equipskill-dashboard/internal/repository"
	"github.com/equipskill/equipskill-dashboard/pkg/jwt"
)

const (
	// APIPrefix is where the versioned marketplace API is mounted.
	APIPrefix = "/api/v1"

	maxBodyBytes = 1 << 20
)

// Store is everything the sandbox routes read and write.
type Store interface {
	repository.ProfileRepository
	repository.EquipmentRepository
	repository.ReviewRepository
	repository.StatsRepository
}

// Options configures NewRouter.
type Options struct {
	ServiceName    string
	AllowedOrigins []string
	// RequestsPerSecond and Burst bound each caller. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int
	// StatsCacheTTL bounds how long GET /stats answers from cache.
	// Zero uses cache.DefaultStatsTTL.
	StatsCacheTTL time.Duration
}

// NewRouter builds the sandbox backend. Background work started for the
// router stops when ctx is done.
func NewRouter(ctx context.Context, store Store, tokenManager *jwt.TokenManager, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	if opts.ServiceName != "" {
		router.Use(otelgin.Middleware(opts.ServiceName))
	}
	router.Use(middleware.ObservabilityMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	if len(opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  opts.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "traceparent", "tracestate"},
			ExposeHeaders: []string{"Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}

	statsCache := cache.NewStatsCache(opts.StatsCacheTTL)

	healthHandler := handlers.NewHealthHandler(nil)
	profileHandler := handlers.NewProfileHandler(store)
	equipmentHandler := handlers.NewEquipmentHandler(store, statsCache)
	reviewHandler := handlers.NewReviewHandler(store)
	statsHandler := handlers.NewStatsHandler(store, statsCache)

	api := router.Group("/api")
	api.GET("/healthcheck", healthHandler.Healthcheck)
	api.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group(APIPrefix)
	v1.Use(middleware.BearerAuthMiddleware(tokenManager))
	if opts.RequestsPerSecond > 0 {
		limiter := middleware.NewRateLimiter(ctx, rate.Limit(opts.RequestsPerSecond), max(opts.Burst, 1))
		v1.Use(limiter.Middleware())
	}
	v1.Use(middleware.BodySizeLimitMiddleware(maxBodyBytes))

	v1.GET("/profile", profileHandler.GetProfile)
	v1.PUT("/profile", profileHandler.UpdateProfile)

	v1.GET("/equipment", equipmentHandler.List)
	v1.POST("/equipment", equipmentHandler.Create)
	v1.PUT("/equipment/:id", equipmentHandler.Update)
	v1.DELETE("/equipment/:id", equipmentHandler.Delete)

	v1.GET("/stats", statsHandler.GetStats)

	v1.GET("/reviews", reviewHandler.List)
	v1.POST("/reviews", reviewHandler.Create)
	v1.PUT("/reviews/:id", reviewHandler.Update)
	v1.DELETE("/reviews/:id", reviewHandler.Delete)

	return router
}
