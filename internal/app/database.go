package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ecomkit/storefront/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// postgresDSN prefers the full URL and falls back to the discrete fields.
func postgresDSN(cfg config.DBConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Passwd, cfg.Name)
}

// sqlitePath resolves a bare database name into the data directory.
func sqlitePath(cfg config.DBConfig, workdir string) string {
	name := cfg.Name
	if name == "" {
		name = "storefront"
	}
	if strings.HasPrefix(name, "file:") || name == ":memory:" || strings.ContainsAny(name, `/\`) {
		return name
	}
	if !strings.HasSuffix(name, ".db") {
		name += ".db"
	}
	return filepath.Join(workdir, "data", name)
}

func getDatabase(cfg config.DBConfig, workdir string) *gorm.DB {
	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	if cfg.Debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Type) {
	case "sqlite", "sqlite3":
		path := sqlitePath(cfg, workdir)
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		dialector = sqlite.Open(path + sep + "_foreign_keys=on")
	case "postgres", "postgresql", "":
		dialector = postgres.Open(postgresDSN(cfg))
	default:
		zap.S().Fatalf("unsupported database type %q", cfg.Type)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		zap.S().Fatalf("database connection failed: %s", err.Error())
	}

	sqlDB, err := db.DB()
	if err != nil {
		zap.S().Fatalf("database handle failed: %s", err.Error())
	}
	maxConn := cfg.MaxConn
	if maxConn <= 0 {
		maxConn = 100
	}
	sqlDB.SetMaxOpenConns(maxConn)
	sqlDB.SetMaxIdleConns(cfg.IdleConn)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db
}
