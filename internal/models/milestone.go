package models

import (
	"time"
)

const (
	MilestoneStatusOpen   = "open"
	MilestoneStatusClosed = "closed"

	// DueDateLayout is the calendar date format stored in Milestone.DueDate.
	DueDateLayout = "2006-01-02"
)

var MilestoneStatuses = []string{MilestoneStatusOpen, MilestoneStatusClosed}

type Milestone struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	DueDate     *string   `gorm:"size:10" json:"due_date"`
	Status      string    `gorm:"size:10;not null;default:open;index;check:chk_milestones_status,status IN ('open','closed')" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
