package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/qrave1/LetzTalk/internal/application/config"
	"github.com/qrave1/LetzTalk/internal/infra/ports/http/dto"
	"github.com/qrave1/LetzTalk/internal/infra/ports/http/handlers"
	"github.com/qrave1/LetzTalk/internal/infra/ports/http/middleware"
)

// New собирает echo сервер. moderationHandler == nil отключает ручки report/block.
func New(
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	iceHandler *handlers.IceHandler,
	wsHandler *handlers.WebSocketHandler,
	moderationHandler *handlers.ModerationHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")
	{
		api.GET("/health", healthHandler.Health)

		v1 := api.Group("/v1")
		{
			v1.GET("/ws", wsHandler.Handle, middleware.OptionalJWTAuthMiddleware(cfg.JWTSecret))

			limiter := restRateLimiter(cfg.RateLimit)

			v1.GET("/stats", healthHandler.Stats, limiter)
			v1.GET("/ice", iceHandler.IceServers, limiter)

			if moderationHandler != nil {
				auth := middleware.JWTAuthMiddleware(cfg.JWTSecret)

				v1.POST("/reports", moderationHandler.ReportHandler, limiter, auth)
				v1.POST("/blocks", moderationHandler.BlockHandler, limiter, auth)
			}
		}
	}

	return e
}

// restRateLimiter - лимит запросов на IP: Requests за Window.
func restRateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	store := echomw.NewRateLimiterMemoryStoreWithConfig(
		echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
			Burst:     cfg.Requests,
			ExpiresIn: cfg.Window,
		},
	)

	return echomw.RateLimiterWithConfig(
		echomw.RateLimiterConfig{
			Store: store,
			IdentifierExtractor: func(c echo.Context) (string, error) {
				return c.RealIP(), nil
			},
			DenyHandler: func(c echo.Context, _ string, _ error) error {
				return c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{Error: "too many requests, please try again later"})
			},
			ErrorHandler: func(c echo.Context, _ error) error {
				return c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "unable to identify client"})
			},
		},
	)
}
