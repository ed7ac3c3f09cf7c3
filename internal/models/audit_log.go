package models

import (
	"time"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id"`           // Nullable for failed logins
	Action    string    `gorm:"size:50;not null" json:"action"` // e.g., "LOGIN", "CREATE_ISSUE", "DELETE_LABEL"
	EntityID  string    `gorm:"size:50" json:"entity_id"`       // ID of the object affected (e.g. issue UUID or username)
	Details   string    `gorm:"type:text" json:"details"`       // JSON description
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	Client    string    `gorm:"size:120" json:"client"` // browser and OS parsed from the User-Agent
	Timestamp time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"timestamp"`
}
