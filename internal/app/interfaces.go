package app

import (
	"github.com/ecomkit/storefront/config"
	"github.com/ecomkit/storefront/internal/auth"
	"github.com/ecomkit/storefront/internal/cart"
	"github.com/ecomkit/storefront/internal/catalog"
	"github.com/ecomkit/storefront/internal/events"
	"github.com/ecomkit/storefront/internal/repository"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// ServiceProvider provides the business services
type ServiceProvider interface {
	Auth() *auth.Service
	Sessions() *auth.SessionManager
	Catalog() *catalog.Service
	Cart() *cart.Engine
	Events() *events.Bus
	OprLogs() repository.OprLogRepository
}

// AppContext combines all provider interfaces for full application context
// Handlers should depend on this interface rather than *Application
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	ServiceProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
