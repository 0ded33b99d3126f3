// Package repository holds the persistence interfaces used by the services
// and their GORM implementations.
package repository

import (
	"context"
	"time"

	"github.com/ecomkit/storefront/internal/domain"
)

// UserRepository handles user identity records
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *domain.User) error

	// GetByID loads a user without the password hash
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail loads a user including the password hash, for credential checks
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)

	// Updates applies a partial column update
	Updates(ctx context.Context, id string, updates map[string]interface{}) error
}

// SessionRepository handles session rows
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error

	// GetValidByToken returns the session for token if it expires after now
	GetValidByToken(ctx context.Context, token string, now time.Time) (*domain.Session, error)

	// DeleteByUser removes every session of a user
	DeleteByUser(ctx context.Context, userID string) (int64, error)

	// DeleteByToken removes the session matching token
	DeleteByToken(ctx context.Context, token string) (int64, error)

	// DeleteExpiredBefore removes sessions that expired before t
	DeleteExpiredBefore(ctx context.Context, t time.Time) (int64, error)
}

// ProductQuery is a conjunctive product filter. Nil and empty members are ignored.
type ProductQuery struct {
	Name        string
	Description string
	Tags        []string
	MinPrice    *float64
	MaxPrice    *float64
	DateFrom    *time.Time
	DateTo      *time.Time
	Active      *bool
	SortBy      string
	SortDesc    bool
	Offset      int
	Limit       int
}

// ProductRepository handles catalog rows. Every read and write here is
// restricted to rows that are not soft deleted.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error

	// GetLive retrieves a non-deleted product by ID
	GetLive(ctx context.Context, id int64) (*domain.Product, error)

	// UpdateLive applies updates to a non-deleted product and returns the new row
	UpdateLive(ctx context.Context, id int64, updates map[string]interface{}) (*domain.Product, error)

	// SoftDelete stamps deleted_at on a non-deleted product and returns the row
	SoftDelete(ctx context.Context, id int64, at time.Time) (*domain.Product, error)

	// List returns one page of matches plus the total match count
	List(ctx context.Context, q ProductQuery) ([]*domain.Product, int64, error)

	CountLive(ctx context.Context) (int64, error)
}

// CartRepository handles cart lines, which are order items without an order.
type CartRepository interface {
	FindLine(ctx context.Context, userID string, productID int64) (*domain.OrderItem, error)
	CreateLine(ctx context.Context, line *domain.OrderItem) error
	DeleteLine(ctx context.Context, id int64) error

	// AdjustQuantity changes quantity by delta with a relative update
	AdjustQuantity(ctx context.Context, id int64, delta int) error

	// View returns the user's lines whose product is live and active
	View(ctx context.Context, userID string) ([]*domain.CartItem, error)
}

// OprLogRepository handles the admin operation log
type OprLogRepository interface {
	Create(ctx context.Context, log *domain.SysOprLog) error
	List(ctx context.Context, keyword string, page, pageSize int) ([]*domain.SysOprLog, int64, error)

	// DeleteOlderThan removes entries logged before t
	DeleteOlderThan(ctx context.Context, t time.Time) (int64, error)
}
