package dto

import "github.com/qrave1/LetzTalk/internal/domain/models"

type ReportRequest struct {
	ReportedConnectionID string `json:"reportedConnectionId"`
	ReportedUserID       string `json:"reportedUserId"`
	Reason               string `json:"reason"`
	RoomID               string `json:"roomId"`
}

type ReportResponse struct {
	Success bool           `json:"success"`
	Report  *models.Report `json:"report"`
}

type BlockRequest struct {
	BlockedConnectionID string `json:"blockedConnectionId"`
	BlockedUserID       string `json:"blockedUserId"`
}

type BlockResponse struct {
	Success bool          `json:"success"`
	Block   *models.Block `json:"block"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
