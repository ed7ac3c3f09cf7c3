package models

import (
	"time"
)

// SessionRecord is a persisted login session. It lives in the session
// database, not next to the business tables.
type SessionRecord struct {
	Token     string    `gorm:"primaryKey;size:64"`
	UserID    uint      `gorm:"not null;index"`
	Username  string    `gorm:"size:80;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

func (SessionRecord) TableName() string {
	return "sessions"
}
