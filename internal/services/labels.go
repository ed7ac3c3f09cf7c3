package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"tracker/internal/models"

	"gorm.io/gorm"
)

type CreateLabelInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Color       string `json:"color" validate:"required"`
	Description string `json:"description" validate:"max=200"`
}

type UpdateLabelInput struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=50"`
	Color       *string `json:"color"`
	Description *string `json:"description" validate:"omitnil,max=200"`
}

type LabelService struct {
	db     *gorm.DB
	audit  *AuditService
	logger *slog.Logger
}

func NewLabelService(db *gorm.DB, audit *AuditService, logger *slog.Logger) *LabelService {
	return &LabelService{db: db, audit: audit, logger: logger}
}

func (s *LabelService) Create(ctx context.Context, in CreateLabelInput) (*models.Label, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Color = strings.TrimSpace(in.Color)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	color, err := NormalizeColor(in.Color)
	if err != nil {
		return nil, err
	}

	label := models.Label{
		ID:          newID(),
		Name:        in.Name,
		Color:       color,
		Description: in.Description,
	}
	var created models.Label
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&label).Error; err != nil {
			return dbError("create label", err)
		}
		return mapDBError("label", "find", tx.Where("id = ?", label.ID).First(&created).Error)
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, "CREATE_LABEL", created.ID, map[string]string{"name": created.Name})
	return &created, nil
}

func (s *LabelService) Get(ctx context.Context, id string) (*models.Label, error) {
	var label models.Label
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&label).Error; err != nil {
		return nil, mapDBError("label", "find", err)
	}
	return &label, nil
}

func (s *LabelService) List(ctx context.Context, page PageRequest) ([]models.Label, Pagination, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Label{}).Count(&total).Error; err != nil {
		return nil, Pagination{}, dbError("count labels", err)
	}

	labels := []models.Label{}
	err := s.db.WithContext(ctx).Order("name").Order("id").
		Offset(page.Offset()).Limit(page.PerPage).
		Find(&labels).Error
	if err != nil {
		return nil, Pagination{}, dbError("list labels", err)
	}
	return labels, newPagination(page, total), nil
}

func (s *LabelService) Update(ctx context.Context, id string, in UpdateLabelInput) (*models.Label, error) {
	if in.Name == nil && in.Color == nil && in.Description == nil {
		return nil, ErrNoUpdateFields
	}
	in.Name = trimPtr(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Color != nil {
		color, err := NormalizeColor(*in.Color)
		if err != nil {
			return nil, err
		}
		updates["color"] = color
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}

	var updated models.Label
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Label{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return dbError("update label", result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("label")
		}
		return mapDBError("label", "find", tx.Where("id = ?", id).First(&updated).Error)
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, "UPDATE_LABEL", id, changedFields(updates))
	return &updated, nil
}

// Delete removes the label and detaches it from every issue.
func (s *LabelService) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&models.Label{})
		if result.Error != nil {
			return dbError("delete label", result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("label")
		}
		if err := tx.Where("label_id = ?", id).Delete(&models.IssueLabel{}).Error; err != nil {
			return dbError("unlink label", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.audit.LogAction(ctx, "DELETE_LABEL", id, nil)
	return nil
}
