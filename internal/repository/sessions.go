package repository

import (
	"context"
	"time"

	"github.com/ecomkit/storefront/internal/domain"
	"gorm.io/gorm"
)

// GormSessionRepository is the GORM implementation of SessionRepository
type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *GormSessionRepository) GetValidByToken(ctx context.Context, token string, now time.Time) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, now).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GormSessionRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	tx := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Session{})
	return tx.RowsAffected, tx.Error
}

func (r *GormSessionRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	tx := r.db.WithContext(ctx).Where("token = ?", token).Delete(&domain.Session{})
	return tx.RowsAffected, tx.Error
}

func (r *GormSessionRepository) DeleteExpiredBefore(ctx context.Context, t time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Where("expires_at < ?", t).Delete(&domain.Session{})
	return tx.RowsAffected, tx.Error
}
