package repository

import (
	"context"
	"time"

	"github.com/ecomkit/storefront/internal/domain"
	"gorm.io/gorm"
)

// GormCartRepository is the GORM implementation of CartRepository
type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) FindLine(ctx context.Context, userID string, productID int64) (*domain.OrderItem, error) {
	var line domain.OrderItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND order_id IS NULL", userID, productID).
		Order("id ASC").
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *GormCartRepository) CreateLine(ctx context.Context, line *domain.OrderItem) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *GormCartRepository) DeleteLine(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&domain.OrderItem{}, id).Error
}

func (r *GormCartRepository) AdjustQuantity(ctx context.Context, id int64, delta int) error {
	return r.db.WithContext(ctx).
		Model(&domain.OrderItem{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": time.Now(),
		}).Error
}

func (r *GormCartRepository) View(ctx context.Context, userID string) ([]*domain.CartItem, error) {
	var items []*domain.CartItem
	err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select(`oi.id, oi.product_id, oi.quantity, oi.price, oi.created_at, oi.updated_at,
			p.name, p.description, p.images, p.price AS product_price, p.original_price, p.stock`).
		Joins("JOIN products AS p ON p.id = oi.product_id").
		Where("oi.user_id = ? AND oi.order_id IS NULL", userID).
		Where("p.deleted_at IS NULL AND p.active = ?", true).
		Order("oi.created_at ASC, oi.id ASC").
		Scan(&items).Error
	if items == nil {
		items = []*domain.CartItem{}
	}
	return items, err
}
