package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ecomkit/storefront/config"
	"github.com/ecomkit/storefront/internal/domain"
	"github.com/ecomkit/storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestApp(t *testing.T) *Application {
	cfg := *config.DefaultAppConfig
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Auth.AdminEmail = "Root@Example.com"
	cfg.Auth.AdminPassword = "Sup3rSecret"
	a := NewApplication(&cfg)
	a.OverrideDB(testutil.NewTestDB(t))
	return a
}

func TestCheckSuperCreatesAdmin(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	a.checkSuper()
	a.checkSuper()

	var count int64
	require.NoError(t, a.DB().Model(&domain.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	user, err := a.users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Type)
	assert.True(t, a.hasher.Verify(*user.Password, "Sup3rSecret"))
}

func TestCheckSuperRepairsRole(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	testutil.CreateUser(t, a.DB(), "root@example.com", domain.RoleUser)

	a.checkSuper()

	user, err := a.users.GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Type)
	require.True(t, user.HasPassword())
}

func TestCheckSuperRejectsUnhashablePassword(t *testing.T) {
	a := newTestApp(t)
	a.appConfig.Auth.AdminPassword = "Aa1" + strings.Repeat("x", 80)

	a.checkSuper()

	var count int64
	require.NoError(t, a.DB().Model(&domain.User{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestInitDbRestoresAdmin(t *testing.T) {
	a := newTestApp(t)
	a.appConfig.Seed.DemoProducts = true
	a.checkSuper()
	testutil.CreateUser(t, a.DB(), "someone@example.com", domain.RoleUser)

	a.InitDb()

	var users []domain.User
	require.NoError(t, a.DB().Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "root@example.com", users[0].Email)
	assert.Equal(t, domain.RoleAdmin, users[0].Type)

	count, err := a.products.CountLive(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, demoProductCount, count)
}

func TestCheckProductsSeedsOnce(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	a.checkProducts()
	a.SeedDemoProducts()

	n, err := a.products.CountLive(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, demoProductCount, n)
}

func TestSchedClearJobs(t *testing.T) {
	a := newTestApp(t)
	db := a.DB()
	user := testutil.CreateUser(t, db, "old@example.com", domain.RoleUser)

	require.NoError(t, db.Create(&domain.Session{ID: "s-old", UserID: user.ID, Token: "old", ExpiresAt: time.Now().AddDate(0, -3, 0)}).Error)
	require.NoError(t, db.Create(&domain.Session{ID: "s-new", UserID: user.ID, Token: "new", ExpiresAt: time.Now().Add(time.Hour)}).Error)
	require.NoError(t, db.Create(&domain.SysOprLog{ID: 1, OptAction: "product.create", OptTime: time.Now().AddDate(-2, 0, 0)}).Error)
	require.NoError(t, db.Create(&domain.SysOprLog{ID: 2, OptAction: "product.create", OptTime: time.Now()}).Error)

	a.SchedClearExpireSessions()
	a.SchedClearOprLogs()

	var sessions, logs int64
	require.NoError(t, db.Model(&domain.Session{}).Count(&sessions).Error)
	require.NoError(t, db.Model(&domain.SysOprLog{}).Count(&logs).Error)
	assert.EqualValues(t, 1, sessions)
	assert.EqualValues(t, 1, logs)
}

func TestDatabaseLocations(t *testing.T) {
	assert.Equal(t, "postgres://u@h/db", postgresDSN(config.DBConfig{URL: "postgres://u@h/db", Host: "ignored"}))
	assert.Equal(t,
		"host=db port=5432 user=app password=pw dbname=shop sslmode=disable",
		postgresDSN(config.DBConfig{Host: "db", Port: 5432, User: "app", Passwd: "pw", Name: "shop"}))

	assert.Equal(t, "/srv/data/shop.db", sqlitePath(config.DBConfig{Name: "shop"}, "/srv"))
	assert.Equal(t, "/tmp/x.db", sqlitePath(config.DBConfig{Name: "/tmp/x.db"}, "/srv"))
	assert.Equal(t, ":memory:", sqlitePath(config.DBConfig{Name: ":memory:"}, "/srv"))
}
