package repository

import (
	"context"
	"strings"
	"time"

	"github.com/ecomkit/storefront/internal/domain"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const liveProduct = "deleted_at IS NULL"

var arrayQuote = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// whitelist of sortable columns
var productSortColumns = map[string]string{
	"price":      "price",
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
	"id":         "id",
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *GormProductRepository) GetLive(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).Where(liveProduct).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) UpdateLive(ctx context.Context, id int64, updates map[string]interface{}) (*domain.Product, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Where(liveProduct).
		Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetLive(ctx, id)
}

func (r *GormProductRepository) SoftDelete(ctx context.Context, id int64, at time.Time) (*domain.Product, error) {
	p, err := r.GetLive(ctx, id)
	if err != nil {
		return nil, err
	}
	tx := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Where(liveProduct).
		Update("deleted_at", at)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	p.DeletedAt = &at
	return p, nil
}

func (r *GormProductRepository) List(ctx context.Context, q ProductQuery) ([]*domain.Product, int64, error) {
	var rows []*domain.Product
	var total int64

	query := r.filter(r.db.WithContext(ctx).Model(&domain.Product{}), q)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortCol, ok := productSortColumns[q.SortBy]
	if !ok {
		sortCol = "updated_at"
	}
	order := " ASC"
	if q.SortDesc {
		order = " DESC"
	}

	err := query.
		Order(sortCol + order).
		Order("id" + order).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&rows).Error
	return rows, total, err
}

func (r *GormProductRepository) CountLive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Where(liveProduct).Count(&count).Error
	return count, err
}

func (r *GormProductRepository) filter(db *gorm.DB, q ProductQuery) *gorm.DB {
	postgres := strings.EqualFold(db.Name(), "postgres")

	db = db.Where(liveProduct)
	if q.Name != "" {
		db = whereContains(db, postgres, "name", q.Name)
	}
	if q.Description != "" {
		db = whereContains(db, postgres, "description", q.Description)
	}
	if len(q.Tags) > 0 {
		if postgres {
			db = db.Where("tags && ?::text[]", pq.StringArray(q.Tags))
		} else {
			// Outside postgres tags hold the quoted array literal {"a","b"}.
			clauses := make([]string, 0, len(q.Tags))
			args := make([]interface{}, 0, len(q.Tags))
			for _, tag := range q.Tags {
				clauses = append(clauses, "(',' || trim(tags, '{}') || ',') LIKE ?")
				args = append(args, `%,"`+arrayQuote.Replace(tag)+`",%`)
			}
			db = db.Where("("+strings.Join(clauses, " OR ")+")", args...)
		}
	}
	if q.MinPrice != nil {
		db = db.Where("price >= ?", *q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("price <= ?", *q.MaxPrice)
	}
	if q.DateFrom != nil {
		db = db.Where("created_at >= ?", *q.DateFrom)
	}
	if q.DateTo != nil {
		db = db.Where("created_at <= ?", *q.DateTo)
	}
	if q.Active != nil {
		db = db.Where("active = ?", *q.Active)
	}
	return db
}

func whereContains(db *gorm.DB, postgres bool, column, needle string) *gorm.DB {
	if postgres {
		return db.Where(column+" ILIKE ?", "%"+needle+"%")
	}
	return db.Where("LOWER("+column+") LIKE ?", "%"+strings.ToLower(needle)+"%")
}
