package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"tracker/internal/models"

	"gorm.io/gorm"
)

type CreateMilestoneInput struct {
	Title       string  `json:"title" validate:"required,max=100"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      string  `json:"status" validate:"omitempty,oneof=open closed"`
}

type UpdateMilestoneInput struct {
	Title       *string `json:"title" validate:"omitnil,min=1,max=100"`
	Description *string `json:"description"`
	DueDate     *string `json:"due_date"`
	Status      *string `json:"status" validate:"omitnil,oneof=open closed"`
}

type MilestoneFilter struct {
	Status string `json:"status" validate:"omitempty,oneof=open closed"`
}

type MilestoneService struct {
	db     *gorm.DB
	audit  *AuditService
	logger *slog.Logger
}

func NewMilestoneService(db *gorm.DB, audit *AuditService, logger *slog.Logger) *MilestoneService {
	return &MilestoneService{db: db, audit: audit, logger: logger}
}

func (s *MilestoneService) Create(ctx context.Context, in CreateMilestoneInput) (*models.Milestone, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.DueDate = trimPtr(in.DueDate)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := checkDueDate(in.DueDate); err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = models.MilestoneStatusOpen
	}

	milestone := models.Milestone{
		ID:          newID(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	}
	if in.DueDate != nil && *in.DueDate != "" {
		milestone.DueDate = in.DueDate
	}

	var created models.Milestone
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&milestone).Error; err != nil {
			return dbError("create milestone", err)
		}
		return mapDBError("milestone", "find", tx.Where("id = ?", milestone.ID).First(&created).Error)
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, "CREATE_MILESTONE", created.ID, map[string]string{"title": created.Title})
	return &created, nil
}

func (s *MilestoneService) Get(ctx context.Context, id string) (*models.Milestone, error) {
	var milestone models.Milestone
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&milestone).Error; err != nil {
		return nil, mapDBError("milestone", "find", err)
	}
	return &milestone, nil
}

func (s *MilestoneService) List(ctx context.Context, filter MilestoneFilter, page PageRequest) ([]models.Milestone, Pagination, error) {
	if err := validateInput(filter); err != nil {
		return nil, Pagination{}, err
	}

	query := s.db.WithContext(ctx).Model(&models.Milestone{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, dbError("count milestones", err)
	}

	milestones := []models.Milestone{}
	// Milestones without a due date sort last.
	err := query.Order("due_date IS NULL").Order("due_date").Order("created_at").Order("id").
		Offset(page.Offset()).Limit(page.PerPage).
		Find(&milestones).Error
	if err != nil {
		return nil, Pagination{}, dbError("list milestones", err)
	}
	return milestones, newPagination(page, total), nil
}

func (s *MilestoneService) Update(ctx context.Context, id string, in UpdateMilestoneInput) (*models.Milestone, error) {
	if in.Title == nil && in.Description == nil && in.DueDate == nil && in.Status == nil {
		return nil, ErrNoUpdateFields
	}
	in.Title = trimPtr(in.Title)
	in.DueDate = trimPtr(in.DueDate)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := checkDueDate(in.DueDate); err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.DueDate != nil {
		updates["due_date"] = blankToNil(in.DueDate)
	}
	if in.Status != nil {
		updates["status"] = *in.Status
	}

	var updated models.Milestone
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Milestone{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return dbError("update milestone", result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("milestone")
		}
		return mapDBError("milestone", "find", tx.Where("id = ?", id).First(&updated).Error)
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, "UPDATE_MILESTONE", id, changedFields(updates))
	return &updated, nil
}

// Delete removes the milestone and clears it from any issue that used it.
func (s *MilestoneService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&models.Milestone{})
		if result.Error != nil {
			return dbError("delete milestone", result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("milestone")
		}
		err := tx.Model(&models.Issue{}).Where("milestone_id = ?", id).
			UpdateColumn("milestone_id", nil).Error
		if err != nil {
			return dbError("detach milestone", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.LogAction(ctx, "DELETE_MILESTONE", id, nil)
	return nil
}

// checkDueDate accepts nil, empty (no due date) or a YYYY-MM-DD date.
func checkDueDate(d *string) error {
	if d == nil || *d == "" {
		return nil
	}
	if _, err := time.Parse(models.DueDateLayout, *d); err != nil {
		return invalidInput("due_date must be a date formatted as YYYY-MM-DD")
	}
	return nil
}
