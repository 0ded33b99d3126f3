package app

import (
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/ecomkit/storefront/config"
	"github.com/ecomkit/storefront/internal/auth"
	"github.com/ecomkit/storefront/internal/cart"
	"github.com/ecomkit/storefront/internal/catalog"
	"github.com/ecomkit/storefront/internal/domain"
	"github.com/ecomkit/storefront/internal/events"
	"github.com/ecomkit/storefront/internal/repository"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron

	users    repository.UserRepository
	products repository.ProductRepository
	oprLogs  repository.OprLogRepository
	sessions *auth.SessionManager
	hasher   auth.Hasher
	auth     *auth.Service
	catalog  *catalog.Service
	cart     *cart.Engine
	bus      *events.Bus
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ ServiceProvider   = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle and rewires the
// services on top of it (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
	a.wireServices()
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	initLogger(cfg)

	// Initialize database connection
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database, cfg.System.Workdir)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	// Ensure database schema is migrated before seeding
	if err := a.MigrateDB(cfg.Database.Debug); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.wireServices()

	a.checkSuper()
	if cfg.Seed.DemoProducts {
		a.checkProducts()
	}

	a.initJob()
}

func initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	if cfg.System.Debug {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	var err error
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

// wireServices builds repositories and services over the current DB handle.
func (a *Application) wireServices() {
	db := a.gormDB
	a.users = repository.NewGormUserRepository(db)
	a.products = repository.NewGormProductRepository(db)
	a.oprLogs = repository.NewGormOprLogRepository(db)

	a.hasher = auth.NewBcryptHasher(a.appConfig.Auth.BcryptCost)
	a.sessions = auth.NewSessionManager(
		repository.NewGormSessionRepository(db),
		a.users,
		auth.WithTTL(a.appConfig.Auth.SessionTTL()),
	)
	a.auth = auth.NewService(a.users, a.sessions, a.hasher)
	a.catalog = catalog.NewService(a.products)
	a.cart = cart.NewEngine(repository.NewGormCartRepository(db), a.products)

	a.bus = events.NewBus()
	if err := a.bus.SubscribeAuditLog(a.oprLogs); err != nil {
		zap.L().Error("failed to subscribe audit log", zap.Error(err))
	}
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEGUB_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	db := a.gormDB
	if track {
		db = db.Debug()
	}
	return db.Migrator().AutoMigrate(domain.Tables...)
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

// InitDb recreates every table, then restores the admin account and, when
// configured, the demo catalog.
func (a *Application) InitDb() {
	a.DropAll()
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
		return
	}
	a.checkSuper()
	if a.appConfig.Seed.DemoProducts {
		a.checkProducts()
	}
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Auth() *auth.Service {
	return a.auth
}

func (a *Application) Sessions() *auth.SessionManager {
	return a.sessions
}

func (a *Application) Catalog() *catalog.Service {
	return a.catalog
}

func (a *Application) Cart() *cart.Engine {
	return a.cart
}

func (a *Application) Events() *events.Bus {
	return a.bus
}

func (a *Application) OprLogs() repository.OprLogRepository {
	return a.oprLogs
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.bus != nil {
		a.bus.Wait()
	}
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = zap.L().Sync()
}
