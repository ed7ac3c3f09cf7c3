package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMilestoneService(t *testing.T) {
	svc := setupServices(t)
	ctx := aliceCtx()

	t.Run("Create", func(t *testing.T) {
		m, err := svc.milestones.Create(ctx, CreateMilestoneInput{Title: "v1.0", DueDate: strPtr("2026-12-31")})
		require.NoError(t, err)
		assert.Equal(t, "open", m.Status)
		assert.Equal(t, "2026-12-31", *m.DueDate)
	})

	t.Run("Invalid input", func(t *testing.T) {
		_, err := svc.milestones.Create(ctx, CreateMilestoneInput{})
		assert.Equal(t, KindInvalidInput, KindOf(err))

		_, err = svc.milestones.Create(ctx, CreateMilestoneInput{Title: "x", DueDate: strPtr("31/12/2026")})
		assert.Equal(t, KindInvalidInput, KindOf(err))

		_, err = svc.milestones.Create(ctx, CreateMilestoneInput{Title: "x", Status: "archived"})
		assert.Equal(t, KindInvalidInput, KindOf(err))
	})

	t.Run("Update and filter", func(t *testing.T) {
		m, err := svc.milestones.Create(ctx, CreateMilestoneInput{Title: "v2.0"})
		require.NoError(t, err)
		assert.Nil(t, m.DueDate)

		closed := "closed"
		updated, err := svc.milestones.Update(ctx, m.ID, UpdateMilestoneInput{Status: &closed, DueDate: strPtr("2027-01-15")})
		require.NoError(t, err)
		assert.Equal(t, "closed", updated.Status)
		assert.Equal(t, "2027-01-15", *updated.DueDate)

		cleared, err := svc.milestones.Update(ctx, m.ID, UpdateMilestoneInput{DueDate: strPtr("")})
		require.NoError(t, err)
		assert.Nil(t, cleared.DueDate)

		list, page, err := svc.milestones.List(ctx, MilestoneFilter{Status: "closed"}, NewPageRequest(1, 20))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, m.ID, list[0].ID)
		assert.Equal(t, int64(1), page.Total)

		_, err = svc.milestones.Update(ctx, m.ID, UpdateMilestoneInput{})
		assert.ErrorIs(t, err, ErrNoUpdateFields)

		_, err = svc.milestones.Update(ctx, uuid.NewString(), UpdateMilestoneInput{Status: &closed})
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("Delete detaches issues", func(t *testing.T) {
		m, err := svc.milestones.Create(ctx, CreateMilestoneInput{Title: "v3.0"})
		require.NoError(t, err)
		issue, err := svc.issues.Create(ctx, CreateIssueInput{Title: "x", Creator: "alice", MilestoneID: &m.ID})
		require.NoError(t, err)
		require.NotNil(t, issue.MilestoneID)

		require.NoError(t, svc.milestones.Delete(ctx, m.ID))

		got, err := svc.issues.Get(ctx, issue.ID)
		require.NoError(t, err)
		assert.Nil(t, got.MilestoneID)

		assert.Equal(t, KindNotFound, KindOf(svc.milestones.Delete(ctx, m.ID)))
	})

	t.Run("Invalid filter", func(t *testing.T) {
		_, _, err := svc.milestones.List(ctx, MilestoneFilter{Status: "pending"}, NewPageRequest(1, 20))
		assert.Equal(t, KindInvalidInput, KindOf(err))
	})
}
