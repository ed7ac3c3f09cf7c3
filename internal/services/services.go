package services

import (
	"log/slog"

	"gorm.io/gorm"
)

// Services bundles every domain service; each transport adapter is built
// on top of one shared instance.
type Services struct {
	Audit      *AuditService
	Auth       *AuthService
	Issues     *IssueService
	Labels     *LabelService
	Comments   *CommentService
	Milestones *MilestoneService
}

func New(db *gorm.DB, logger *slog.Logger) *Services {
	audit := NewAuditService(db, logger)
	return &Services{
		Audit:      audit,
		Auth:       NewAuthService(db, audit, logger),
		Issues:     NewIssueService(db, audit, logger),
		Labels:     NewLabelService(db, audit, logger),
		Comments:   NewCommentService(db, audit, logger),
		Milestones: NewMilestoneService(db, audit, logger),
	}
}
