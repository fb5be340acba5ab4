package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SHOPADMIN"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	SessionStoreMemory = "memory"
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"

	DBDriverSQLite   = "sqlite"
	DBDriverPostgres = "postgres"
)

// Config is the client-side configuration consumed by the CLI and any embedding application.
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig
}

// ServerConfig extends Config with the reference backend's settings.
type ServerConfig struct {
	Config
	DB       DBConfig
	JWT      JWTConfig
	Password PasswordConfig
	MockAPI  MockAPIConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := loadSections(map[string]any{
		"APP":     &cfg.App,
		"API":     &cfg.API,
		"SESSION": &cfg.Session,
		"REDIS":   &cfg.Redis,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadServer() (*ServerConfig, error) {
	base, err := Load()
	if err != nil {
		return nil, err
	}
	cfg := ServerConfig{Config: *base}
	if err := loadSections(map[string]any{
		"DB":       &cfg.DB,
		"JWT":      &cfg.JWT,
		"PASSWORD": &cfg.Password,
		"MOCKAPI":  &cfg.MockAPI,
	}); err != nil {
		return nil, err
	}
	switch cfg.DB.Driver {
	case DBDriverSQLite, DBDriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}
	return &cfg, nil
}

func loadSections(sections map[string]any) error {
	for name, target := range sections {
		if err := envconfig.Process(EnvPrefix+"_"+name, target); err != nil {
			return fmt.Errorf("parsing %s config: %w", strings.ToLower(name), err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreFile:
	case SessionStoreRedis:
		if c.Redis.URL == "" && c.Redis.Address == "" {
			return fmt.Errorf("session store %q requires %s_REDIS_URL or %s_REDIS_ADDR", SessionStoreRedis, EnvPrefix, EnvPrefix)
		}
	default:
		return fmt.Errorf("unsupported session store %q", c.Session.Store)
	}
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("%s_API_BASE_URL is required", EnvPrefix)
	}
	return nil
}

type AppConfig struct {
	Env          string `envconfig:"ENV" default:"dev"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig describes how the client reaches the shop backend.
type APIConfig struct {
	BaseURL string `envconfig:"BASE_URL" default:"http://localhost:8080/api"`
	// BearerPrefix is prepended verbatim to the token, trailing space included.
	BearerPrefix string        `envconfig:"BEARER_PREFIX" default:"Bearer "`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"0s"`
}

type SessionConfig struct {
	Store string        `envconfig:"STORE" default:"file"`
	Dir   string        `envconfig:"DIR"`
	Key   string        `envconfig:"KEY" default:"shopadmin.token"`
	TTL   time.Duration `envconfig:"TTL" default:"0s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"URL"`
	Address      string        `envconfig:"ADDR"`
	Password     string        `envconfig:"PASSWORD"`
	DB           int           `envconfig:"DB" default:"0"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"5s"`
}

type DBConfig struct {
	Driver          string        `envconfig:"DRIVER" default:"sqlite"`
	DSN             string        `envconfig:"DSN" default:"file:shopadmin.db?_foreign_keys=on"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CONN_MAX_IDLE_TIME" default:"10m"`
	AutoMigrate     bool          `envconfig:"AUTO_MIGRATE" default:"true"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SECRET" default:"dev-only-secret-change-me"`
	Issuer            string `envconfig:"ISSUER" default:"shopadmin"`
	ExpirationMinutes int    `envconfig:"EXPIRATION_MINUTES" default:"480"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ARGON_KEY_LEN" default:"32"`
}

type MockAPIConfig struct {
	Port              string        `envconfig:"PORT" default:"8080"`
	BasePath          string        `envconfig:"BASE_PATH" default:"/api"`
	AllowedOrigins    []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	LoginRateLimit    int           `envconfig:"LOGIN_RATE_LIMIT" default:"20"`
	LoginRateWindow   time.Duration `envconfig:"LOGIN_RATE_WINDOW" default:"1m"`
	ResetCodeTTL      time.Duration `envconfig:"RESET_CODE_TTL" default:"15m"`
	UploadDir         string        `envconfig:"UPLOAD_DIR" default:"uploads"`
	SeedAdminEmail    string        `envconfig:"SEED_ADMIN_EMAIL" default:"admin@shop.local"`
	SeedAdminPassword string        `envconfig:"SEED_ADMIN_PASSWORD"`
	// MaintenanceInterval of zero disables the background jobs.
	MaintenanceInterval time.Duration `envconfig:"MAINTENANCE_INTERVAL" default:"1h"`
	ResetCodeRetention  time.Duration `envconfig:"RESET_CODE_RETENTION" default:"24h"`
}
