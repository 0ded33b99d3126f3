package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Env      string `yaml:"env"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	CookieSecure bool   `yaml:"cookie_secure"`
	BodyLimit    string `yaml:"body_limit"`
}

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type"` // postgres or sqlite
	URL      string `yaml:"url"`  // full postgres DSN, wins over the discrete fields
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// LogConfig logging configuration
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// AuthConfig session and credential settings
type AuthConfig struct {
	SessionTTLHours  int    `yaml:"session_ttl_hours"`
	BcryptCost       int    `yaml:"bcrypt_cost"`
	AdminEmail       string `yaml:"admin_email"`
	AdminPassword    string `yaml:"admin_password"`
	SessionPurgeDays int    `yaml:"session_purge_days"`
}

// SessionTTL returns the absolute lifetime of a new session.
func (c AuthConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

type SeedConfig struct {
	DemoProducts bool `yaml:"demo_products"`
}

type AppConfig struct {
	System   SysConfig  `yaml:"system"`
	Web      WebConfig  `yaml:"web"`
	Database DBConfig   `yaml:"database"`
	Logger   LogConfig  `yaml:"logger"`
	Auth     AuthConfig `yaml:"auth"`
	Seed     SeedConfig `yaml:"seed"`
}

// IsDevelopment reports whether error responses may carry stack traces.
func (c *AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.System.Env, EnvDevelopment)
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

// InitDirs creates the working directories
func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0o755)
	_ = os.MkdirAll(c.GetDataDir(), 0o755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "Storefront",
		Location: "UTC",
		Workdir:  "/var/storefront",
		Env:      EnvProduction,
		Debug:    false,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      8080,
		BodyLimit: "2M",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "storefront",
		User:     "postgres",
		Passwd:   "postgres",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/storefront/logs/storefront.log",
	},
	Auth: AuthConfig{
		SessionTTLHours:  7 * 24,
		BcryptCost:       12,
		SessionPurgeDays: 30,
	},
}

// LoadConfig reads the YAML file (if any), then applies .env and
// environment overrides. An empty path yields the defaults.
func LoadConfig(cfile string) (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := *DefaultAppConfig
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", cfile)
		}
	}

	applyEnv(&cfg)
	return &cfg, nil
}

func setEnvValue(name string, val *string) {
	if v := os.Getenv(name); v != "" {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v := os.Getenv(name); v != "" {
		*val = cast.ToBool(v)
	}
}

func setEnvIntValue(name string, val *int) {
	if v := os.Getenv(name); v != "" {
		if i, err := cast.ToIntE(v); err == nil {
			*val = i
		}
	}
}

func applyEnv(cfg *AppConfig) {
	setEnvValue("STOREFRONT_ENV", &cfg.System.Env)
	setEnvValue("STOREFRONT_WORKDIR", &cfg.System.Workdir)
	setEnvValue("STOREFRONT_LOCATION", &cfg.System.Location)
	setEnvBoolValue("STOREFRONT_DEBUG", &cfg.System.Debug)

	setEnvValue("STOREFRONT_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("PORT", &cfg.Web.Port)
	setEnvIntValue("STOREFRONT_WEB_PORT", &cfg.Web.Port)
	setEnvBoolValue("STOREFRONT_COOKIE_SECURE", &cfg.Web.CookieSecure)

	setEnvValue("STOREFRONT_DB_TYPE", &cfg.Database.Type)
	setEnvValue("DATABASE_URL", &cfg.Database.URL)
	setEnvValue("STOREFRONT_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("STOREFRONT_DB_PORT", &cfg.Database.Port)
	setEnvValue("STOREFRONT_DB_NAME", &cfg.Database.Name)
	setEnvValue("STOREFRONT_DB_USER", &cfg.Database.User)
	setEnvValue("STOREFRONT_DB_PWD", &cfg.Database.Passwd)
	setEnvBoolValue("STOREFRONT_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("STOREFRONT_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("STOREFRONT_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)

	setEnvValue("STOREFRONT_ADMIN_EMAIL", &cfg.Auth.AdminEmail)
	setEnvValue("STOREFRONT_ADMIN_PASSWORD", &cfg.Auth.AdminPassword)
	setEnvIntValue("STOREFRONT_SESSION_TTL_HOURS", &cfg.Auth.SessionTTLHours)
	setEnvIntValue("STOREFRONT_BCRYPT_COST", &cfg.Auth.BcryptCost)

	setEnvBoolValue("STOREFRONT_SEED_DEMO_PRODUCTS", &cfg.Seed.DemoProducts)
}
