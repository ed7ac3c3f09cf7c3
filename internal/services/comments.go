package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"tracker/internal/models"

	"gorm.io/gorm"
)

type CreateCommentInput struct {
	IssueID string `json:"issue_id" validate:"required"`
	Content string `json:"content" validate:"required"`
	Author  string `json:"author" validate:"required,max=80"`
}

type UpdateCommentInput struct {
	Content *string `json:"content" validate:"omitnil,min=1"`
}

type CommentService struct {
	db     *gorm.DB
	audit  *AuditService
	logger *slog.Logger
}

func NewCommentService(db *gorm.DB, audit *AuditService, logger *slog.Logger) *CommentService {
	return &CommentService{db: db, audit: audit, logger: logger}
}

// Create adds a comment to an existing issue; a missing issue is NOT_FOUND
// and nothing is written.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	in.IssueID = strings.TrimSpace(in.IssueID)
	in.Content = strings.TrimSpace(in.Content)
	in.Author = strings.TrimSpace(in.Author)
	if in.Author == "" {
		if actor, ok := ActorFrom(ctx); ok {
			in.Author = actor.Username
		}
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:      newID(),
		IssueID: in.IssueID,
		Content: in.Content,
		Author:  in.Author,
	}
	var created models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Issue{}, in.IssueID, "issue"); err != nil {
			if KindOf(err) == KindNotFound {
				return &Error{Kind: KindNotFound, Message: "issue not found: cannot add comment"}
			}
			return err
		}
		if err := tx.Create(&comment).Error; err != nil {
			return dbError("create comment", err)
		}
		return mapDBError("comment", "find", tx.Where("id = ?", comment.ID).First(&created).Error)
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, "CREATE_COMMENT", created.ID, map[string]string{"issue_id": created.IssueID})
	return &created, nil
}

func (s *CommentService) Get(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, mapDBError("comment", "find", err)
	}
	return &comment, nil
}

// List returns the comments of one issue, oldest first.
func (s *CommentService) List(ctx context.Context, issueID string, page PageRequest) ([]models.Comment, Pagination, error) {
	db := s.db.WithContext(ctx)
	if err := exists(db, &models.Issue{}, issueID, "issue"); err != nil {
		return nil, Pagination{}, err
	}

	query := db.Model(&models.Comment{}).Where("issue_id = ?", issueID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, dbError("count comments", err)
	}

	comments := []models.Comment{}
	err := query.Order("created_at").Order("id").
		Offset(page.Offset()).Limit(page.PerPage).
		Find(&comments).Error
	if err != nil {
		return nil, Pagination{}, dbError("list comments", err)
	}
	return comments, newPagination(page, total), nil
}

func (s *CommentService) Update(ctx context.Context, id string, in UpdateCommentInput) (*models.Comment, error) {
	if in.Content == nil {
		return nil, ErrNoUpdateFields
	}
	in.Content = trimPtr(in.Content)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	updates := map[string]any{"content": *in.Content, "updated_at": time.Now().UTC()}
	var updated models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Comment{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return dbError("update comment", result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("comment")
		}
		return mapDBError("comment", "find", tx.Where("id = ?", id).First(&updated).Error)
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogAction(ctx, "UPDATE_COMMENT", id, nil)
	return &updated, nil
}

func (s *CommentService) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Comment{})
	if result.Error != nil {
		return dbError("delete comment", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("comment")
	}
	s.audit.LogAction(ctx, "DELETE_COMMENT", id, nil)
	return nil
}
