package models

import (
	"time"
)

const (
	IssueStatusOpen       = "open"
	IssueStatusInProgress = "in_progress"
	IssueStatusResolved   = "resolved"
	IssueStatusClosed     = "closed"

	PriorityLow      = "low"
	PriorityMedium   = "medium"
	PriorityHigh     = "high"
	PriorityCritical = "critical"
)

// IssueStatuses lists every accepted Issue.Status value in workflow order.
var IssueStatuses = []string{IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed}

// Priorities lists every accepted Issue.Priority value, lowest first.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

type Issue struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"size:20;not null;default:open;index;check:chk_issues_status,status IN ('open','in_progress','resolved','closed')" json:"status"`
	Priority    string    `gorm:"size:20;not null;default:medium;index;check:chk_issues_priority,priority IN ('low','medium','high','critical')" json:"priority"`
	Assignee    *string   `gorm:"size:80;index" json:"assignee"`
	Creator     string    `gorm:"size:80;not null" json:"creator"`
	MilestoneID *string   `gorm:"size:36;index" json:"milestone_id"`
	Labels      []Label   `gorm:"many2many:issue_labels" json:"labels"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IssueLabel is the join row between an issue and one of its labels.
type IssueLabel struct {
	IssueID string `gorm:"primaryKey;size:36"`
	LabelID string `gorm:"primaryKey;size:36;index"`
}

func (IssueLabel) TableName() string {
	return "issue_labels"
}
