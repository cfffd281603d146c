package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultReportReason = "inappropriate_behavior"

// Report - жалоба на собеседника. Хотя бы одно из ReportedUserID / ReportedConnectionID заполнено.
type Report struct {
	ID                   uuid.UUID     `json:"id" db:"id"`
	ReporterID           uuid.UUID     `json:"reporter_id" db:"reporter_id"`
	ReportedUserID       uuid.NullUUID `json:"reported_user_id" db:"reported_user_id"`
	ReportedConnectionID string        `json:"reported_connection_id,omitempty" db:"reported_connection_id"`
	Reason               string        `json:"reason" db:"reason"`
	RoomID               string        `json:"room_id,omitempty" db:"room_id"`
	CreatedAt            time.Time     `json:"created_at" db:"created_at"`
}

func NewReport(reporterID uuid.UUID, reportedUserID uuid.NullUUID, connID, reason, roomID string) *Report {
	if reason == "" {
		reason = DefaultReportReason
	}

	return &Report{
		ID:                   uuid.New(),
		ReporterID:           reporterID,
		ReportedUserID:       reportedUserID,
		ReportedConnectionID: connID,
		Reason:               reason,
		RoomID:               roomID,
		CreatedAt:            time.Now(),
	}
}
