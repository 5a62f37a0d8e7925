package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "fleetdesk"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "FLEETDESK_APP_ENV"
	EnvDBDSN  = "FLEETDESK_DB_DSN"
	EnvDBHost = "FLEETDESK_DB_HOST"
	EnvDBUser = "FLEETDESK_DB_USER"
	EnvDBName = "FLEETDESK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Transfer     TransferConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FLEETDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"FLEETDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FLEETDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FLEETDESK_LOG_WARN_STACK" default:"false"`

	// CORSOrigins supplements the localhost defaults in deployed environments.
	CORSOrigins []string `envconfig:"FLEETDESK_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FLEETDESK_DB_DSN"`
	Driver string `envconfig:"FLEETDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FLEETDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"FLEETDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FLEETDESK_DB_USER"`
	LegacyPassword string `envconfig:"FLEETDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"FLEETDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"FLEETDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FLEETDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FLEETDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FLEETDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FLEETDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FLEETDESK_REDIS_URL"`
	Address      string        `envconfig:"FLEETDESK_REDIS_ADDR"`
	Password     string        `envconfig:"FLEETDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"FLEETDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FLEETDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FLEETDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FLEETDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FLEETDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FLEETDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"FLEETDESK_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"FLEETDESK_JWT_ISSUER" required:"true"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FLEETDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FLEETDESK_AUTO_MIGRATE" default:"false"`
}

type TransferConfig struct {
	// SourceTag stamps export envelopes and guards imports against
	// snapshots produced by other products.
	SourceTag string `envconfig:"FLEETDESK_TRANSFER_SOURCE_TAG" default:"fleetdesk"`
	Version   string `envconfig:"FLEETDESK_TRANSFER_VERSION" default:"1.0"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
