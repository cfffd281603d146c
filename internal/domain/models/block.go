package models

import (
	"time"

	"github.com/google/uuid"
)

type Block struct {
	ID                  uuid.UUID     `json:"id" db:"id"`
	BlockerID           uuid.UUID     `json:"blocker_id" db:"blocker_id"`
	BlockedUserID       uuid.NullUUID `json:"blocked_user_id" db:"blocked_user_id"`
	BlockedConnectionID string        `json:"blocked_connection_id,omitempty" db:"blocked_connection_id"`
	CreatedAt           time.Time     `json:"created_at" db:"created_at"`
}

func NewBlock(blockerID uuid.UUID, blockedUserID uuid.NullUUID, connID string) *Block {
	return &Block{
		ID:                  uuid.New(),
		BlockerID:           blockerID,
		BlockedUserID:       blockedUserID,
		BlockedConnectionID: connID,
		CreatedAt:           time.Now(),
	}
}
