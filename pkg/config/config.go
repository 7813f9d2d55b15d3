package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Query        QueryConfig
	Alerts       AlertsConfig
	Cache        CacheConfig
	Ingest       IngestConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"INSIGHTS_APP_ENV" required:"true"`
	Port         string `envconfig:"INSIGHTS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"INSIGHTS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"INSIGHTS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"INSIGHTS_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"INSIGHTS_DB_DSN"`
	Driver string `envconfig:"INSIGHTS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"INSIGHTS_DB_HOST"`
	LegacyPort     int    `envconfig:"INSIGHTS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"INSIGHTS_DB_USER"`
	LegacyPassword string `envconfig:"INSIGHTS_DB_PASSWORD"`
	LegacyName     string `envconfig:"INSIGHTS_DB_NAME"`
	LegacySSLMode  string `envconfig:"INSIGHTS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"INSIGHTS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"INSIGHTS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"INSIGHTS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"INSIGHTS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"INSIGHTS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"INSIGHTS_REDIS_ADDR"`
	Password     string        `envconfig:"INSIGHTS_REDIS_PASSWORD"`
	DB           int           `envconfig:"INSIGHTS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"INSIGHTS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"INSIGHTS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"INSIGHTS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"INSIGHTS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"INSIGHTS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"INSIGHTS_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"INSIGHTS_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"INSIGHTS_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"INSIGHTS_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	EventsTopic        string `envconfig:"INSIGHTS_PUBSUB_EVENTS_TOPIC" required:"true"`
	EventsSubscription string `envconfig:"INSIGHTS_PUBSUB_EVENTS_SUBSCRIPTION" required:"true"`
}

type BigQueryConfig struct {
	Dataset     string `envconfig:"INSIGHTS_BIGQUERY_DATASET" default:"storefront"`
	EventsTable string `envconfig:"INSIGHTS_BIGQUERY_EVENTS_TABLE" default:"events"`
}

// QueryConfig bounds and tunes the dashboard query engine.
type QueryConfig struct {
	RowCeiling            int    `envconfig:"INSIGHTS_QUERY_ROW_CEILING" default:"500000"`
	PageSize              int    `envconfig:"INSIGHTS_QUERY_PAGE_SIZE" default:"10000"`
	DefaultTimezone       string `envconfig:"INSIGHTS_QUERY_DEFAULT_TZ" default:"UTC"`
	CountNonRevenueOrders bool   `envconfig:"INSIGHTS_QUERY_COUNT_NON_REVENUE_ORDERS" default:"true"`
}

// AlertsConfig carries the default severity boundaries; callers may override
// them per query.
type AlertsConfig struct {
	CriticalRatio float64 `envconfig:"INSIGHTS_ALERTS_CRITICAL_RATIO" default:"0.25"`
	WarningRatio  float64 `envconfig:"INSIGHTS_ALERTS_WARNING_RATIO" default:"1.0"`
}

type CacheConfig struct {
	Enabled bool          `envconfig:"INSIGHTS_CACHE_ENABLED" default:"false"`
	TTL     time.Duration `envconfig:"INSIGHTS_CACHE_TTL" default:"60s"`
}

type IngestConfig struct {
	IdempotencyTTL time.Duration `envconfig:"INSIGHTS_INGEST_IDEMPOTENCY_TTL" default:"720h"`
}

type RateLimitConfig struct {
	Window time.Duration `envconfig:"INSIGHTS_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int64         `envconfig:"INSIGHTS_RATE_LIMIT_LIMIT" default:"120"`
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
