package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/LetzTalk/internal/application/constant"
	"github.com/qrave1/LetzTalk/internal/domain/input"
	"github.com/qrave1/LetzTalk/internal/infra/appctx"
	"github.com/qrave1/LetzTalk/internal/infra/ports/http/dto"
	"github.com/qrave1/LetzTalk/internal/usecase"
)

type ModerationHandler struct {
	moderationUsecase usecase.ModerationUsecase
}

func NewModerationHandler(moderationUsecase usecase.ModerationUsecase) *ModerationHandler {
	return &ModerationHandler{moderationUsecase: moderationUsecase}
}

func (h *ModerationHandler) ReportHandler(c echo.Context) error {
	var req dto.ReportRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
	}

	// Получаем userID из JWT токена
	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid user"})
	}

	reportedUserID, err := parseOptionalUUID(req.ReportedUserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid reportedUserId"})
	}

	report, err := h.moderationUsecase.Report(c.Request().Context(), &input.ReportInput{
		ReporterID:           userID,
		ReportedUserID:       reportedUserID,
		ReportedConnectionID: req.ReportedConnectionID,
		Reason:               req.Reason,
		RoomID:               req.RoomID,
	})
	if err != nil {
		return h.moderationError(c, "create report", err)
	}

	return c.JSON(http.StatusCreated, dto.ReportResponse{Success: true, Report: report})
}

func (h *ModerationHandler) BlockHandler(c echo.Context) error {
	var req dto.BlockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
	}

	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid user"})
	}

	blockedUserID, err := parseOptionalUUID(req.BlockedUserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid blockedUserId"})
	}

	block, created, err := h.moderationUsecase.Block(c.Request().Context(), &input.BlockInput{
		BlockerID:           userID,
		BlockedUserID:       blockedUserID,
		BlockedConnectionID: req.BlockedConnectionID,
	})
	if err != nil {
		return h.moderationError(c, "create block", err)
	}

	// повторная блокировка отдает существующую запись
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}

	return c.JSON(status, dto.BlockResponse{Success: true, Block: block})
}

func (h *ModerationHandler) moderationError(c echo.Context, msg string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrTargetRequired), errors.Is(err, usecase.ErrSelfReport):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		slog.Error(msg, slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to " + msg})
	}
}

func parseOptionalUUID(s string) (uuid.NullUUID, error) {
	if s == "" {
		return uuid.NullUUID{}, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.NullUUID{}, err
	}

	return uuid.NullUUID{UUID: id, Valid: true}, nil
}
