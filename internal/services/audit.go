package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"tracker/internal/models"

	"github.com/mssola/user_agent"
	"gorm.io/gorm"
)

const auditBufferSize = 100

type AuditService struct {
	db      *gorm.DB
	logger  *slog.Logger
	channel chan models.AuditLog
}

func NewAuditService(db *gorm.DB, logger *slog.Logger) *AuditService {
	return &AuditService{
		db:      db,
		logger:  logger,
		channel: make(chan models.AuditLog, auditBufferSize),
	}
}

func (s *AuditService) Start(ctx context.Context) {
	s.logger.Info("Audit worker starting")
	for {
		select {
		case entry := <-s.channel:
			s.write(entry)
		case <-ctx.Done():
			s.drain()
			s.logger.Info("Audit worker stopping")
			return
		}
	}
}

func (s *AuditService) drain() {
	for {
		select {
		case entry := <-s.channel:
			s.write(entry)
		default:
			return
		}
	}
}

func (s *AuditService) write(entry models.AuditLog) {
	if err := s.db.Create(&entry).Error; err != nil {
		s.logger.Error("Failed to write audit log", "error", err, "action", entry.Action)
	}
}

// LogAction queues an audit entry for the actor on ctx. It never blocks;
// entries are dropped when the buffer is full.
func (s *AuditService) LogAction(ctx context.Context, action, entityID string, details any) {
	if s == nil {
		return
	}
	actor, _ := ActorFrom(ctx)

	var detailText string
	if details != nil {
		detailBytes, _ := json.Marshal(details)
		detailText = string(detailBytes)
	}

	entry := models.AuditLog{
		UserID:    actor.userID(),
		Action:    action,
		EntityID:  entityID,
		Details:   detailText,
		IPAddress: actor.IP,
		Client:    describeClient(actor.UserAgent),
		Timestamp: time.Now().UTC(),
	}

	select {
	case s.channel <- entry:
	default:
		s.logger.Warn("Audit channel full, dropping log", "action", action)
	}
}

// describeClient condenses a User-Agent header into "Browser Version / OS".
func describeClient(raw string) string {
	if raw == "" {
		return ""
	}
	ua := user_agent.New(raw)
	name, version := ua.Browser()
	desc := strings.TrimSpace(name + " " + version)
	if os := ua.OS(); os != "" {
		desc += " / " + os
	}
	if ua.Bot() {
		desc += " (bot)"
	}
	if len(desc) > 120 {
		desc = desc[:120]
	}
	return desc
}
