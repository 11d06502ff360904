package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Staff         StaffConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"COFFEEPOS_APP_ENV" required:"true"`
	Port         string   `envconfig:"COFFEEPOS_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"COFFEEPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"COFFEEPOS_LOG_WARN_STACK" default:"false"`
	Timezone     string   `envconfig:"COFFEEPOS_APP_TIMEZONE" default:"UTC"`
	Currency     string   `envconfig:"COFFEEPOS_APP_CURRENCY" default:"сом"`
	CORSOrigins  []string `envconfig:"COFFEEPOS_CORS_ALLOWED_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves the business timezone that decides which calendar day an
// order or report belongs to.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvTimezone, name, err)
	}
	return loc, nil
}

// MustLocation is Location for callers running after Load succeeded.
func (a AppConfig) MustLocation() *time.Location {
	loc, err := a.Location()
	if err != nil {
		return time.UTC
	}
	return loc
}

type DBConfig struct {
	DSN    string `envconfig:"COFFEEPOS_DB_DSN"`
	Driver string `envconfig:"COFFEEPOS_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"COFFEEPOS_DB_HOST"`
	Port     int    `envconfig:"COFFEEPOS_DB_PORT" default:"5432"`
	User     string `envconfig:"COFFEEPOS_DB_USER"`
	Password string `envconfig:"COFFEEPOS_DB_PASSWORD"`
	Name     string `envconfig:"COFFEEPOS_DB_NAME"`
	SSLMode  string `envconfig:"COFFEEPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COFFEEPOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COFFEEPOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COFFEEPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COFFEEPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	CommandTimeout  time.Duration `envconfig:"COFFEEPOS_DB_COMMAND_TIMEOUT" default:"60s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COFFEEPOS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"COFFEEPOS_REDIS_ADDR"`
	Password     string        `envconfig:"COFFEEPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"COFFEEPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COFFEEPOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COFFEEPOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COFFEEPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COFFEEPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COFFEEPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
	AssemblyTTL  time.Duration `envconfig:"COFFEEPOS_REDIS_ASSEMBLY_TTL" default:"12h"`
}

type JWTConfig struct {
	Secret            string `envconfig:"COFFEEPOS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"COFFEEPOS_JWT_ISSUER" default:"coffeepos"`
	ExpirationMinutes int    `envconfig:"COFFEEPOS_JWT_EXPIRATION_MINUTES" default:"720"`
}

// AccessTokenTTL returns how long an issued token and its session stay valid.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"COFFEEPOS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"COFFEEPOS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"COFFEEPOS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"COFFEEPOS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"COFFEEPOS_ARGON_KEY_LEN" default:"32"`
}

// StaffConfig holds the shared role passwords handed out to the shop staff.
type StaffConfig struct {
	AdminPassword   string `envconfig:"COFFEEPOS_ADMIN_PASS" required:"true"`
	BaristaPassword string `envconfig:"COFFEEPOS_BARISTA_PASS" required:"true"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"COFFEEPOS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"COFFEEPOS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"10"`
	LoginStaffLimit int           `envconfig:"COFFEEPOS_AUTH_RATE_LIMIT_LOGIN_STAFF_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COFFEEPOS_AUTO_MIGRATE" default:"false"`
	SeedMenu    bool `envconfig:"COFFEEPOS_FEATURE_SEED_MENU" default:"false"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"COFFEEPOS_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"COFFEEPOS_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrdersTopic  string `envconfig:"COFFEEPOS_PUBSUB_ORDERS_TOPIC" default:"cp-order-events"`
	ReportsTopic string `envconfig:"COFFEEPOS_PUBSUB_REPORTS_TOPIC" default:"cp-report-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"COFFEEPOS_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"COFFEEPOS_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"COFFEEPOS_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"COFFEEPOS_OUTBOX_RETENTION_DAYS" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"COFFEEPOS_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"COFFEEPOS_CRON_LOCK_TTL" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
