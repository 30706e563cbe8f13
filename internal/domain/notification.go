package domain

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	ID        uint64         `json:"id"`
	UserID    uint64         `gorm:"not null;index" json:"user_id"`
	EventID   string         `gorm:"type:uuid;index" json:"event_id"`
	Kind      string         `gorm:"size:64;not null" json:"kind"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	Payload   datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
