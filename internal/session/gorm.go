package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tracker/internal/models"

	"gorm.io/gorm"
)

// GormStore persists sessions in their own database (a separate SQLite
// file by default) so logins survive restarts.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&models.SessionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session table: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (g *GormStore) Put(ctx context.Context, s Session) error {
	rec := models.SessionRecord{
		Token:     s.Token,
		UserID:    s.Principal.UserID,
		Username:  s.Principal.Username,
		ExpiresAt: s.ExpiresAt,
	}
	if err := g.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("gorm: save session: %w", err)
	}
	return nil
}

func (g *GormStore) Get(ctx context.Context, token string) (Session, error) {
	var rec models.SessionRecord
	err := g.db.WithContext(ctx).Where("token = ?", token).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("gorm: find session: %w", err)
	}
	return Session{
		Token:     rec.Token,
		Principal: Principal{UserID: rec.UserID, Username: rec.Username},
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (g *GormStore) Delete(ctx context.Context, token string) error {
	if err := g.db.WithContext(ctx).Where("token = ?", token).Delete(&models.SessionRecord{}).Error; err != nil {
		return fmt.Errorf("gorm: delete session: %w", err)
	}
	return nil
}

func (g *GormStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := g.db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&models.SessionRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("gorm: delete expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
