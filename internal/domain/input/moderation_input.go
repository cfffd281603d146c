package input

import "github.com/google/uuid"

type ReportInput struct {
	ReporterID           uuid.UUID
	ReportedUserID       uuid.NullUUID
	ReportedConnectionID string
	Reason               string
	RoomID               string
}

type BlockInput struct {
	BlockerID           uuid.UUID
	BlockedUserID       uuid.NullUUID
	BlockedConnectionID string
}
