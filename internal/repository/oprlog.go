package repository

import (
	"context"
	"strings"
	"time"

	"github.com/ecomkit/storefront/internal/domain"
	"gorm.io/gorm"
)

// GormOprLogRepository is the GORM implementation of OprLogRepository
type GormOprLogRepository struct {
	db *gorm.DB
}

func NewGormOprLogRepository(db *gorm.DB) *GormOprLogRepository {
	return &GormOprLogRepository{db: db}
}

func (r *GormOprLogRepository) Create(ctx context.Context, log *domain.SysOprLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *GormOprLogRepository) List(ctx context.Context, keyword string, page, pageSize int) ([]*domain.SysOprLog, int64, error) {
	var logs []*domain.SysOprLog
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.SysOprLog{})
	if keyword = strings.TrimSpace(keyword); keyword != "" {
		like := "%" + strings.ToLower(keyword) + "%"
		query = query.Where("LOWER(opr_name) LIKE ? OR LOWER(opt_action) LIKE ? OR LOWER(opt_desc) LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("opt_time DESC").
		Order("id DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&logs).Error

	return logs, total, err
}

func (r *GormOprLogRepository) DeleteOlderThan(ctx context.Context, t time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Where("opt_time < ?", t).Delete(&domain.SysOprLog{})
	return tx.RowsAffected, tx.Error
}
