package router

import (
	"fmt"
	"time"

	"github.com/climatrix/climatrix/internal/apperr"
	"github.com/climatrix/climatrix/internal/auth"
	"github.com/climatrix/climatrix/internal/handlers"
	"github.com/climatrix/climatrix/internal/middleware"
	"github.com/climatrix/climatrix/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	AllowedOrigins []string
	Tokens         *auth.Service
	AuthLimiter    *middleware.RateLimiter
	Hub            *handlers.AlertHub
}

func NewRouter(h *handlers.Handler, opts Options) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			apperr.Write(c, apperr.Internal(fmt.Errorf("panic: %v", recovered)))
		}),
		middleware.Metrics(),
	)

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", handlers.CacheHeader, middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.Authenticate(opts.Tokens))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	staff := middleware.RequireRole(types.StaffRoles...)
	requireAuth := middleware.RequireAuth()

	authLimit := func(c *gin.Context) { c.Next() }
	if opts.AuthLimiter != nil {
		authLimit = opts.AuthLimiter.Handler()
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", authLimit, handlers.Wrap(h.Signup))
			authGroup.POST("/login", authLimit, handlers.Wrap(h.Login))
			authGroup.POST("/logout", handlers.Wrap(h.Logout))
			authGroup.GET("/me", requireAuth, handlers.Wrap(h.Me))
		}

		climate := api.Group("/climate")
		{
			climate.GET("/latest", handlers.Wrap(h.LatestReading))
			climate.GET("/history", handlers.Wrap(h.ReadingHistory))
			climate.POST("/readings", staff, handlers.Wrap(h.CreateReading))
		}

		alerts := api.Group("/alerts")
		{
			alerts.GET("/active", handlers.Wrap(h.ActiveAlerts))
			alerts.POST("", staff, handlers.Wrap(h.CreateAlert))
			alerts.PATCH("/:id", staff, handlers.Wrap(h.UpdateAlert))
			if opts.Hub != nil {
				alerts.GET("/ws", opts.Hub.Serve)
			}
		}

		groups := api.Group("/community/groups")
		{
			groups.GET("", handlers.Wrap(h.ListGroups))
			groups.POST("", requireAuth, handlers.Wrap(h.CreateGroup))
			groups.POST("/:id/join", requireAuth, handlers.Wrap(h.JoinGroup))
		}

		posts := api.Group("/posts")
		{
			posts.GET("", handlers.Wrap(h.ListPosts))
			posts.POST("", requireAuth, handlers.Wrap(h.CreatePost))
			posts.GET("/:id/comments", handlers.Wrap(h.ListComments))
			posts.POST("/:id/comments", requireAuth, handlers.Wrap(h.CreateComment))
		}

		pledges := api.Group("/pledges", requireAuth)
		{
			pledges.GET("", handlers.Wrap(h.ListPledges))
			pledges.POST("", handlers.Wrap(h.CreatePledge))
			pledges.PATCH("/:id/status", handlers.Wrap(h.UpdatePledgeStatus))
		}

		supply := api.Group("/supply-chain", requireAuth)
		{
			supply.GET("", handlers.Wrap(h.ListShipments))
			supply.POST("", handlers.Wrap(h.CreateShipment))
			supply.PATCH("/:id", handlers.Wrap(h.UpdateShipment))
			supply.POST("/:id/events", handlers.Wrap(h.CreateShipmentEvent))
		}

		profile := api.Group("/profile", requireAuth)
		{
			profile.GET("", handlers.Wrap(h.GetProfile))
			profile.PATCH("", handlers.Wrap(h.UpdateProfile))
		}

		weather := api.Group("/weather")
		{
			weather.GET("/city", handlers.Wrap(h.WeatherByCity))
			weather.GET("/coords", handlers.Wrap(h.WeatherByCoords))
			weather.GET("/trend", handlers.Wrap(h.WeatherTrend))
			weather.GET("/air-quality", handlers.Wrap(h.AirQuality))
		}
	}

	r.NoRoute(func(c *gin.Context) {
		apperr.Write(c, apperr.NotFound("Route not found"))
	})

	return r
}
