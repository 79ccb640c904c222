package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Sales        SalesConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Sales.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SIMPOS_APP_ENV" required:"true"`
	Port         string `envconfig:"SIMPOS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SIMPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SIMPOS_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"SIMPOS_LOG_FORMAT" default:"json"`
	// CORSOrigins lists the back-office frontends allowed to call the API.
	CORSOrigins []string `envconfig:"SIMPOS_APP_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SIMPOS_DB_DSN"`
	Driver string `envconfig:"SIMPOS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SIMPOS_DB_HOST"`
	LegacyPort     int    `envconfig:"SIMPOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SIMPOS_DB_USER"`
	LegacyPassword string `envconfig:"SIMPOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"SIMPOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"SIMPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SIMPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SIMPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SIMPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SIMPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the sqlite dialector was requested.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"SIMPOS_REDIS_URL"`
	Address      string        `envconfig:"SIMPOS_REDIS_ADDR"`
	Password     string        `envconfig:"SIMPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"SIMPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SIMPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SIMPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SIMPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SIMPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SIMPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

// SalesConfig carries the till settings the sale ledger needs.
type SalesConfig struct {
	VATRate decimal.Decimal `envconfig:"SIMPOS_SALES_VAT_RATE" default:"21"`
	// CreditRestocks controls whether a store-credit settlement returns the
	// linked ICCID to stock like a refund does.
	CreditRestocks bool `envconfig:"SIMPOS_SALES_CREDIT_RESTOCKS" default:"true"`
}

func (s SalesConfig) validate() error {
	if s.VATRate.IsNegative() || s.VATRate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%s must be between 0 and 100", EnvSalesVATRate)
	}
	return nil
}

// RateLimitConfig throttles sale mutations per cashier. A zero window or
// limit disables throttling.
type RateLimitConfig struct {
	Window    time.Duration `envconfig:"SIMPOS_RATE_LIMIT_WINDOW" default:"1m"`
	Mutations int           `envconfig:"SIMPOS_RATE_LIMIT_MUTATIONS" default:"60"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SIMPOS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
