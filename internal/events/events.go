// Package events is the in-process bus for side effects that must not hold up
// a request, such as the admin operation log.
package events

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/ecomkit/storefront/internal/domain"
	"github.com/ecomkit/storefront/internal/repository"
	"github.com/ecomkit/storefront/pkg/common"
	"go.uber.org/zap"
)

const TopicAdminAction = "admin:action"

const (
	ActionProductCreate = "product.create"
	ActionProductEdit   = "product.edit"
	ActionProductDelete = "product.delete"
)

// AdminAction is one state-changing request made by an administrator.
type AdminAction struct {
	Operator string
	IP       string
	Action   string
	Detail   string
	At       time.Time
}

type Bus struct {
	bus EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: EventBus.New()}
}

func (b *Bus) PublishAdminAction(a AdminAction) {
	if a.At.IsZero() {
		a.At = time.Now()
	}
	b.bus.Publish(TopicAdminAction, a)
}

// Wait blocks until queued async handlers finish.
func (b *Bus) Wait() {
	b.bus.WaitAsync()
}

// SubscribeAuditLog persists every AdminAction as a SysOprLog row.
func (b *Bus) SubscribeAuditLog(repo repository.OprLogRepository) error {
	return b.bus.SubscribeAsync(TopicAdminAction, func(a AdminAction) {
		entry := &domain.SysOprLog{
			ID:        common.UUIDint64(),
			OprName:   a.Operator,
			OprIp:     a.IP,
			OptAction: a.Action,
			OptDesc:   a.Detail,
			OptTime:   a.At,
		}
		if err := repo.Create(context.Background(), entry); err != nil {
			zap.L().Error("failed to write operation log",
				zap.String("namespace", "audit"),
				zap.String("action", a.Action),
				zap.Error(err))
		}
	}, false)
}
