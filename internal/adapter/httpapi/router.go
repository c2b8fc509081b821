package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/inkcloud/review-service/internal/domain"
	"github.com/inkcloud/review-service/internal/middleware"
	"github.com/inkcloud/review-service/internal/platform/logger"
	"github.com/inkcloud/review-service/internal/platform/metrics"
)

// RouterConfig carries the transport-level settings the router needs.
type RouterConfig struct {
	JWTSecret          string
	CORSAllowedOrigins []string
}

// NewRouter assembles the gin engine: common middleware, CORS, and the
// review routes under /api/v1/reviews.
func NewRouter(cfg RouterConfig, reviews *ReviewHandler, reports *ReportHandler, m *metrics.Manager, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log.Named("HTTP")))
	router.Use(middleware.Metrics(m))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1/reviews")

	api.GET("/products/:productId", reviews.ListByProduct)

	authed := api.Group("")
	authed.Use(middleware.Auth(cfg.JWTSecret, log.Named("Auth")))
	{
		authed.POST("", reviews.Create)
		authed.GET("/products/:productId/me", reviews.ListByProductForMember)
		authed.GET("/members/me", reviews.ListMine)
		authed.GET("/detail/:reviewId", reviews.Detail)
		authed.PATCH("/:reviewId", reviews.Update)
		authed.DELETE("", reviews.Delete)
		authed.POST("/:reviewId/like", reviews.Like)
		authed.DELETE("/:reviewId/like", reviews.CancelLike)
		authed.POST("/report", reports.Create)
	}

	admin := authed.Group("")
	admin.Use(middleware.RequireRole(domain.AdminRole, log.Named("Auth")))
	{
		admin.POST("/admin", reviews.AdminSearch)
		admin.GET("/reports", reports.Search)
		admin.GET("/reports/:reviewId", reports.ByReview)
		admin.DELETE("/report", reports.Delete)
	}

	return router
}
