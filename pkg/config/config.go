package config

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "tickete"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names shared with tests and deploy manifests.
const (
	EnvAppEnv      = "TICKETE_APP_ENV"
	EnvPort        = "TICKETE_APP_PORT"
	EnvDBDSN       = "TICKETE_DB_DSN"
	EnvDBHost      = "TICKETE_DB_HOST"
	EnvDBUser      = "TICKETE_DB_USER"
	EnvDBName      = "TICKETE_DB_NAME"
	EnvRedisURL    = "TICKETE_REDIS_URL"
	EnvProviderKey = "TICKETE_PROVIDER_API_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Provider ProviderConfig
	Sync     SyncConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Provider.parseProducts(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TICKETE_APP_ENV" required:"true"`
	Port         string `envconfig:"TICKETE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TICKETE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TICKETE_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"TICKETE_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TICKETE_DB_DSN"`
	Driver string `envconfig:"TICKETE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TICKETE_DB_HOST"`
	LegacyPort     int    `envconfig:"TICKETE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TICKETE_DB_USER"`
	LegacyPassword string `envconfig:"TICKETE_DB_PASSWORD"`
	LegacyName     string `envconfig:"TICKETE_DB_NAME"`
	LegacySSLMode  string `envconfig:"TICKETE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TICKETE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TICKETE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TICKETE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TICKETE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TICKETE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TICKETE_REDIS_ADDR"`
	Password     string        `envconfig:"TICKETE_REDIS_PASSWORD"`
	DB           int           `envconfig:"TICKETE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TICKETE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TICKETE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TICKETE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TICKETE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TICKETE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ProviderConfig wires the upstream availability API.
//
// Products encodes the allowlist plus each product's sync weekdays as
// "id:weekday,weekday;id:weekday" with weekdays numbered 0 (Sunday) to 6.
// The default matches the reference catalog: product 14 syncs Mon/Tue/Wed,
// product 15 syncs Sundays only.
type ProviderConfig struct {
	BaseURL  string        `envconfig:"TICKETE_PROVIDER_BASE_URL" default:"https://leap-api.tickete.co/api/v1/inventory"`
	APIKey   string        `envconfig:"TICKETE_PROVIDER_API_KEY" required:"true"`
	Timeout  time.Duration `envconfig:"TICKETE_PROVIDER_TIMEOUT" default:"30s"`
	Products string        `envconfig:"TICKETE_PROVIDER_PRODUCTS" default:"14:1,2,3;15:0"`

	rules []ProductRule
}

// ProductRule pairs a product id with the weekdays it may be synced on.
type ProductRule struct {
	ProductID int
	Weekdays  []time.Weekday
}

// SyncableOn reports whether the product is eligible for sync on the
// given weekday. A rule with no weekdays syncs every day.
func (r ProductRule) SyncableOn(day time.Weekday) bool {
	if len(r.Weekdays) == 0 {
		return true
	}
	for _, d := range r.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Rules returns the parsed product allowlist in product id order.
func (p ProviderConfig) Rules() []ProductRule {
	rules := make([]ProductRule, len(p.rules))
	copy(rules, p.rules)
	return rules
}

// ProductIDs returns the configured product allowlist.
func (p ProviderConfig) ProductIDs() []int {
	ids := make([]int, 0, len(p.rules))
	for _, rule := range p.rules {
		ids = append(ids, rule.ProductID)
	}
	return ids
}

func (p *ProviderConfig) parseProducts() error {
	raw := strings.TrimSpace(p.Products)
	if raw == "" {
		return fmt.Errorf("%s must list at least one product", "TICKETE_PROVIDER_PRODUCTS")
	}

	var rules []ProductRule
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		idPart, daysPart, _ := strings.Cut(entry, ":")
		id, err := strconv.Atoi(strings.TrimSpace(idPart))
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid product id %q in %s", idPart, "TICKETE_PROVIDER_PRODUCTS")
		}
		rule := ProductRule{ProductID: id}
		if daysPart != "" {
			for _, dayStr := range strings.Split(daysPart, ",") {
				day, err := strconv.Atoi(strings.TrimSpace(dayStr))
				if err != nil || day < 0 || day > 6 {
					return fmt.Errorf("invalid weekday %q for product %d", dayStr, id)
				}
				rule.Weekdays = append(rule.Weekdays, time.Weekday(day))
			}
		}
		rules = append(rules, rule)
	}
	if len(rules) == 0 {
		return fmt.Errorf("%s must list at least one product", "TICKETE_PROVIDER_PRODUCTS")
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ProductID < rules[j].ProductID })
	p.rules = rules
	return nil
}

// SyncConfig controls the recurring horizon cadences.
type SyncConfig struct {
	TodayInterval time.Duration `envconfig:"TICKETE_SYNC_TODAY_INTERVAL" default:"10m"`
	WeekInterval  time.Duration `envconfig:"TICKETE_SYNC_WEEK_INTERVAL" default:"4h"`
	MonthInterval time.Duration `envconfig:"TICKETE_SYNC_MONTH_INTERVAL" default:"24h"`
	InitialSync   bool          `envconfig:"TICKETE_SYNC_INITIAL" default:"true"`
	LockTTL       time.Duration `envconfig:"TICKETE_SYNC_LOCK_TTL" default:"1h"`
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
