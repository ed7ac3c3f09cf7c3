package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"tracker/internal/models"

	"gorm.io/gorm"
)

type CreateIssueInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description"`
	Status      string   `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Priority    string   `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Assignee    *string  `json:"assignee" validate:"omitnil,max=80"`
	Creator     string   `json:"creator" validate:"required,max=80"`
	MilestoneID *string  `json:"milestone_id"`
	Labels      []string `json:"labels" validate:"dive,required"`
}

// UpdateIssueInput is a partial update; nil fields are left untouched. An
// empty Assignee or MilestoneID clears it, and Labels replaces the full set.
type UpdateIssueInput struct {
	Title       *string   `json:"title" validate:"omitnil,min=1,max=200"`
	Description *string   `json:"description"`
	Status      *string   `json:"status" validate:"omitnil,oneof=open in_progress resolved closed"`
	Priority    *string   `json:"priority" validate:"omitnil,oneof=low medium high critical"`
	Assignee    *string   `json:"assignee" validate:"omitnil,max=80"`
	MilestoneID *string   `json:"milestone_id"`
	Labels      *[]string `json:"labels" validate:"omitnil,dive,required"`
}

func (in UpdateIssueInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil && in.Priority == nil &&
		in.Assignee == nil && in.MilestoneID == nil && in.Labels == nil
}

type IssueFilter struct {
	Status   string `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
}

type IssueService struct {
	db     *gorm.DB
	audit  *AuditService
	logger *slog.Logger
}

func NewIssueService(db *gorm.DB, audit *AuditService, logger *slog.Logger) *IssueService {
	return &IssueService{db: db, audit: audit, logger: logger}
}

func (s *IssueService) Create(ctx context.Context, in CreateIssueInput) (*models.Issue, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Creator = strings.TrimSpace(in.Creator)
	if in.Creator == "" {
		if actor, ok := ActorFrom(ctx); ok {
			in.Creator = actor.Username
		}
	}
	in.Assignee = trimPtr(in.Assignee)
	in.MilestoneID = trimPtr(in.MilestoneID)
	in.Labels = dedupe(in.Labels)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.IssueStatusOpen
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}

	issue := models.Issue{
		ID:          newID(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		Creator:     in.Creator,
	}
	if in.Assignee != nil && *in.Assignee != "" {
		issue.Assignee = in.Assignee
	}
	if in.MilestoneID != nil && *in.MilestoneID != "" {
		issue.MilestoneID = in.MilestoneID
	}

	var created *models.Issue
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkMilestone(tx, issue.MilestoneID); err != nil {
			return err
		}
		if err := checkLabels(tx, in.Labels); err != nil {
			return err
		}
		if err := tx.Omit("Labels").Create(&issue).Error; err != nil {
			return dbError("create issue", err)
		}
		if err := linkLabels(tx, issue.ID, in.Labels); err != nil {
			return err
		}
		var err error
		created, err = loadIssue(tx, issue.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, "CREATE_ISSUE", created.ID, map[string]string{"title": created.Title})
	return created, nil
}

func (s *IssueService) Get(ctx context.Context, id string) (*models.Issue, error) {
	return loadIssue(s.db.WithContext(ctx), id)
}

func (s *IssueService) List(ctx context.Context, filter IssueFilter, page PageRequest) ([]models.Issue, Pagination, error) {
	if err := validateInput(filter); err != nil {
		return nil, Pagination{}, err
	}

	query := s.db.WithContext(ctx).Model(&models.Issue{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, dbError("count issues", err)
	}

	issues := []models.Issue{}
	err := query.Preload("Labels", orderLabels).
		Order("created_at DESC").Order("id").
		Offset(page.Offset()).Limit(page.PerPage).
		Find(&issues).Error
	if err != nil {
		return nil, Pagination{}, dbError("list issues", err)
	}
	return issues, newPagination(page, total), nil
}

func (s *IssueService) Update(ctx context.Context, id string, in UpdateIssueInput) (*models.Issue, error) {
	if in.empty() {
		return nil, ErrNoUpdateFields
	}
	in.Title = trimPtr(in.Title)
	in.Assignee = trimPtr(in.Assignee)
	in.MilestoneID = trimPtr(in.MilestoneID)
	if in.Labels != nil {
		labels := dedupe(*in.Labels)
		in.Labels = &labels
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	if in.Priority != nil {
		updates["priority"] = *in.Priority
	}
	if in.Assignee != nil {
		updates["assignee"] = blankToNil(in.Assignee)
	}
	if in.MilestoneID != nil {
		updates["milestone_id"] = blankToNil(in.MilestoneID)
	}

	var updated *models.Issue
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Issue{}, id, "issue"); err != nil {
			return err
		}
		if in.MilestoneID != nil && *in.MilestoneID != "" {
			if err := checkMilestone(tx, in.MilestoneID); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Issue{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return dbError("update issue", err)
		}
		if in.Labels != nil {
			if err := checkLabels(tx, *in.Labels); err != nil {
				return err
			}
			if err := tx.Where("issue_id = ?", id).Delete(&models.IssueLabel{}).Error; err != nil {
				return dbError("unlink labels", err)
			}
			if err := linkLabels(tx, id, *in.Labels); err != nil {
				return err
			}
		}
		var err error
		updated, err = loadIssue(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	details := changedFields(updates)
	if in.Labels != nil {
		details["fields"] = append(details["fields"], "labels")
	}
	s.audit.LogAction(ctx, "UPDATE_ISSUE", id, details)
	return updated, nil
}

// Delete removes the issue together with its comments and label links.
func (s *IssueService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&models.Issue{})
		if result.Error != nil {
			return dbError("delete issue", result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("issue")
		}
		if err := tx.Where("issue_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return dbError("delete issue comments", err)
		}
		if err := tx.Where("issue_id = ?", id).Delete(&models.IssueLabel{}).Error; err != nil {
			return dbError("unlink labels", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.LogAction(ctx, "DELETE_ISSUE", id, nil)
	return nil
}

func loadIssue(db *gorm.DB, id string) (*models.Issue, error) {
	var issue models.Issue
	if err := db.Preload("Labels", orderLabels).Where("id = ?", id).First(&issue).Error; err != nil {
		return nil, mapDBError("issue", "find", err)
	}
	return &issue, nil
}

func orderLabels(db *gorm.DB) *gorm.DB {
	return db.Order("labels.name").Order("labels.id")
}

func checkMilestone(tx *gorm.DB, id *string) error {
	if id == nil || *id == "" {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Milestone{}).Where("id = ?", *id).Count(&count).Error; err != nil {
		return dbError("find milestone", err)
	}
	if count == 0 {
		return invalidInput("milestone %s does not exist", *id)
	}
	return nil
}

func checkLabels(tx *gorm.DB, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	var found []string
	if err := tx.Model(&models.Label{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return dbError("find labels", err)
	}
	if len(found) == len(ids) {
		return nil
	}
	known := make(map[string]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			return invalidInput("label %s does not exist", id)
		}
	}
	return nil
}

func linkLabels(tx *gorm.DB, issueID string, labelIDs []string) error {
	if len(labelIDs) == 0 {
		return nil
	}
	links := make([]models.IssueLabel, 0, len(labelIDs))
	for _, labelID := range labelIDs {
		links = append(links, models.IssueLabel{IssueID: issueID, LabelID: labelID})
	}
	if err := tx.Create(&links).Error; err != nil {
		return dbError("link labels", err)
	}
	return nil
}

// exists returns NOT_FOUND when no row of model has the given id.
func exists(tx *gorm.DB, model any, id, entity string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return dbError("find "+entity, err)
	}
	if count == 0 {
		return notFound(entity)
	}
	return nil
}

func changedFields(updates map[string]any) map[string][]string {
	fields := make([]string, 0, len(updates))
	for k := range updates {
		if k != "updated_at" {
			fields = append(fields, k)
		}
	}
	return map[string][]string{"fields": fields}
}
