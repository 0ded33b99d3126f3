// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ecomkit/storefront/internal/domain"
	"github.com/ecomkit/storefront/pkg/common"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB returns a migrated in-memory SQLite database private to t.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_foreign_keys=on", name, common.UUID()[:8])
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

// CreateUser inserts a user with the given role and returns it.
func CreateUser(t testing.TB, db *gorm.DB, email string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:        common.UUID(),
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Type:      role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProduct inserts p, filling a name when empty.
func CreateProduct(t testing.TB, db *gorm.DB, p domain.Product) *domain.Product {
	t.Helper()
	if p.Name == "" {
		p.Name = "Product " + common.UUID()[:8]
	}
	require.NoError(t, db.Create(&p).Error)
	return &p
}

func Float(v float64) *float64 {
	return &v
}
