package metric

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qrave1/LetzTalk/internal/domain/output"
)

// StatsFunc - снимок брокера для /health сервера метрик
type StatsFunc func() output.BrokerStats

type healthResponse struct {
	Status string             `json:"status"`
	Broker output.BrokerStats `json:"broker"`
}

// NewServer создает сервер метрик, отдельный от основного API.
// /health здесь не проходит через rate limit основного API и годится для probe-ов.
func NewServer(stats StatsFunc) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, healthResponse{Status: "ok", Broker: stats()})
	})

	return e
}
