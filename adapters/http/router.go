package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/khoahotran/devprofile/pkg/logger"
)

type RouterConfig struct {
	ServiceName    string
	AllowedOrigins []string
	RateLimit      int
	RateWindow     time.Duration
}

type Handlers struct {
	Profile     *ProfileHandler
	Endorsement *EndorsementHandler
	Bio         *BioHandler
}

// NewRouter builds the gin engine with every route under /api. rdb may be
// nil, which disables rate limiting.
func NewRouter(cfg RouterConfig, h Handlers, rdb *redis.Client, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(RequestLogger(log))
	router.Use(Metrics())
	router.Use(CORS(cfg.AllowedOrigins))
	router.Use(ErrorMiddleware(log))

	limited := func(resource string) gin.HandlerFunc {
		return RateLimit(rdb, resource, cfg.RateLimit, cfg.RateWindow, log)
	}

	router.GET("/metrics", MetricsHandler())

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })

		profiles := api.Group("/profiles")
		{
			profiles.GET("", h.Profile.ListProfiles)
			profiles.POST("", h.Profile.CreateProfile)
			profiles.POST("/generate-bio", limited("generate-bio"), h.Bio.GenerateBio)
			profiles.GET("/email/:email", h.Profile.GetProfileByEmail)

			profiles.GET("/:id", h.Profile.GetProfile)
			profiles.PUT("/:id", h.Profile.UpdateProfile)
			profiles.DELETE("/:id", h.Profile.DeleteProfile)
			profiles.PATCH("/:id/theme", h.Profile.UpdateTheme)
			profiles.GET("/:id/stats", h.Profile.GetStats)
			profiles.POST("/:id/picture", h.Profile.UploadPicture)

			profiles.POST("/:id/skills/:skillId/endorse", limited("endorse"), h.Endorsement.EndorseSkill)
			profiles.GET("/:id/skills/:skillId/endorsements", h.Endorsement.ListEndorsements)
			profiles.GET("/:id/endorsements/feed", h.Endorsement.Feed)
		}
	}

	return router
}
