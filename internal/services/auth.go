package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"tracker/internal/models"
	"tracker/pkg/utils"

	"gorm.io/gorm"
)

// AuthService is the credential store: it registers users and verifies
// username/password pairs against bcrypt hashes.
type AuthService struct {
	db     *gorm.DB
	audit  *AuditService
	logger *slog.Logger
	hash   func(string) (string, error)

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(db *gorm.DB, audit *AuditService, logger *slog.Logger) *AuthService {
	return &AuthService{
		db:     db,
		audit:  audit,
		logger: logger,
		hash:   utils.HashPassword,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalidInput("username and password are required")
	}
	if len(username) > 80 {
		return nil, invalidInput("username must be at most 80 characters")
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dbError("find user", err)
	}

	hashed, err := s.hash(password)
	if err != nil {
		s.logger.Error("Failed to hash password", "username", username, "error", err)
		return nil, &Error{Kind: KindHashError, Message: "failed to process password", Err: err}
	}

	user := models.User{Username: username, PasswordHash: hashed}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateEntryError(err) {
			return nil, ErrUserExists
		}
		return nil, dbError("create user", err)
	}

	auditCtx := ctx
	if a, ok := ActorFrom(ctx); ok {
		a.UserID, a.Username = user.ID, user.Username
		auditCtx = WithActor(ctx, a)
	}
	s.audit.LogAction(auditCtx, "REGISTER", user.Username, nil)
	s.logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	return &user, nil
}

// Verify returns the user for a valid username/password pair. Unknown users
// and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Verify(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Spend the same bcrypt time as a real comparison.
			utils.CheckPasswordHash(password, s.timingHash())
			s.logger.Warn("Login failed", "username", username, "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, dbError("find user", err)
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.logger.Warn("Login failed", "username", username, "reason", "password mismatch")
		return nil, ErrInvalidCredentials
	}

	actor, _ := ActorFrom(ctx)
	actor.UserID, actor.Username = user.ID, user.Username
	s.audit.LogAction(WithActor(ctx, actor), "LOGIN", user.Username, nil)
	return &user, nil
}

func (s *AuthService) Profile(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, mapDBError("user", "find", err)
	}
	return &user, nil
}

func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = utils.HashPassword("tracker-timing-placeholder")
	})
	return s.dummyHash
}
