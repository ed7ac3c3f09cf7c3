package services

import (
	"context"
	"testing"
	"time"

	"tracker/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestAuditService(t *testing.T) {
	db := setupTestDB(t)
	logger := testLogger()
	service := NewAuditService(db, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.Start(ctx)

	t.Run("Log Action", func(t *testing.T) {
		actorCtx := WithActor(context.Background(), Actor{
			UserID:    1,
			Username:  "alice",
			IP:        "127.0.0.1",
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		})
		service.LogAction(actorCtx, "TEST_ACTION", "entity_1", map[string]string{"foo": "bar"})

		var log models.AuditLog
		assert.Eventually(t, func() bool {
			return db.Where("action = ?", "TEST_ACTION").First(&log).Error == nil
		}, time.Second, 10*time.Millisecond)

		assert.Equal(t, "entity_1", log.EntityID)
		assert.Contains(t, log.Details, "foo")
		assert.Equal(t, "127.0.0.1", log.IPAddress)
		assert.Contains(t, log.Client, "Chrome")
		if assert.NotNil(t, log.UserID) {
			assert.Equal(t, uint(1), *log.UserID)
		}
	})

	t.Run("Anonymous Action", func(t *testing.T) {
		service.LogAction(context.Background(), "ANON", "x", nil)

		var log models.AuditLog
		assert.Eventually(t, func() bool {
			return db.Where("action = ?", "ANON").First(&log).Error == nil
		}, time.Second, 10*time.Millisecond)
		assert.Nil(t, log.UserID)
		assert.Empty(t, log.Details)
	})

	t.Run("Channel Full", func(t *testing.T) {
		service := NewAuditService(db, logger)
		// Fill channel
		for i := 0; i < auditBufferSize; i++ {
			service.LogAction(context.Background(), "ACTION", "ID", nil)
		}
		// Should drop
		service.LogAction(context.Background(), "DROP", "ID", nil)
		assert.Len(t, service.channel, auditBufferSize)
	})

	t.Run("Nil Service", func(t *testing.T) {
		var nilService *AuditService
		assert.NotPanics(t, func() {
			nilService.LogAction(context.Background(), "NOOP", "ID", nil)
		})
	})

	t.Run("DB Error", func(t *testing.T) {
		dbErr := setupTestDB(t)
		dbErr.Migrator().DropTable(&models.AuditLog{})
		serviceErr := NewAuditService(dbErr, logger)

		ctxErr, cancelErr := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			serviceErr.Start(ctxErr)
			close(done)
		}()

		serviceErr.LogAction(context.Background(), "ERROR", "ID", nil)
		cancelErr()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("audit worker did not stop")
		}
	})
}

func TestDescribeClient(t *testing.T) {
	assert.Empty(t, describeClient(""))
	desc := describeClient("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	assert.Contains(t, desc, "(bot)")
}
