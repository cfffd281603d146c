package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/LetzTalk/internal/infra/ports/http/dto"
	"github.com/qrave1/LetzTalk/internal/usecase"
)

type HealthHandler struct {
	broker usecase.BrokerUsecase
}

func NewHealthHandler(broker usecase.BrokerUsecase) *HealthHandler {
	return &HealthHandler{broker: broker}
}

func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		Service: "LetzTalk API",
		Time:    time.Now().UTC(),
	})
}

// Stats - размер очереди и число активных комнат
func (h *HealthHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.broker.Stats())
}
