package events

import (
	"context"
	"testing"
	"time"

	"github.com/ecomkit/storefront/internal/repository"
	"github.com/ecomkit/storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogSubscriber(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewGormOprLogRepository(db)
	bus := NewBus()
	require.NoError(t, bus.SubscribeAuditLog(repo))

	bus.PublishAdminAction(AdminAction{
		Operator: "admin@example.com",
		IP:       "10.0.0.1",
		Action:   ActionProductCreate,
		Detail:   "Pen",
		At:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	bus.PublishAdminAction(AdminAction{Operator: "admin@example.com", Action: ActionProductDelete, Detail: "Pen"})
	bus.Wait()

	logs, total, err := repo.List(context.Background(), "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	actions := []string{logs[0].OptAction, logs[1].OptAction}
	assert.ElementsMatch(t, []string{ActionProductCreate, ActionProductDelete}, actions)
	for _, l := range logs {
		assert.NotZero(t, l.ID)
		assert.False(t, l.OptTime.IsZero())
	}
}
