package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"tracker/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.InitDB("sqlite://:memory:")
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func aliceCtx() context.Context {
	return WithActor(context.Background(), Actor{UserID: 1, Username: "alice", IP: "127.0.0.1"})
}

type testServices struct {
	db         *gorm.DB
	auth       *AuthService
	issues     *IssueService
	labels     *LabelService
	comments   *CommentService
	milestones *MilestoneService
}

func setupServices(t *testing.T) testServices {
	db := setupTestDB(t)
	svc := New(db, testLogger())
	return testServices{
		db:         db,
		auth:       svc.Auth,
		issues:     svc.Issues,
		labels:     svc.Labels,
		comments:   svc.Comments,
		milestones: svc.Milestones,
	}
}

func strPtr(s string) *string {
	return &s
}
