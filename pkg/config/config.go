package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is applied to every envconfig lookup.
	EnvPrefix = "dinesync"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "DINESYNC_DB_DSN"
	EnvDBHost = "DINESYNC_DB_HOST"
	EnvDBUser = "DINESYNC_DB_USER"
	EnvDBName = "DINESYNC_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	HTTP          HTTPConfig
	Realtime      RealtimeConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DINESYNC_APP_ENV" required:"true"`
	Port         string `envconfig:"DINESYNC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DINESYNC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DINESYNC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DINESYNC_DB_DSN"`
	Driver string `envconfig:"DINESYNC_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"DINESYNC_DB_HOST"`
	Port     int    `envconfig:"DINESYNC_DB_PORT" default:"5432"`
	User     string `envconfig:"DINESYNC_DB_USER"`
	Password string `envconfig:"DINESYNC_DB_PASSWORD"`
	Name     string `envconfig:"DINESYNC_DB_NAME"`
	SSLMode  string `envconfig:"DINESYNC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DINESYNC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DINESYNC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DINESYNC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DINESYNC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DINESYNC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DINESYNC_REDIS_ADDR"`
	Password     string        `envconfig:"DINESYNC_REDIS_PASSWORD"`
	DB           int           `envconfig:"DINESYNC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DINESYNC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DINESYNC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DINESYNC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DINESYNC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DINESYNC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DINESYNC_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DINESYNC_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"DINESYNC_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"DINESYNC_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DINESYNC_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DINESYNC_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DINESYNC_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DINESYNC_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DINESYNC_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DINESYNC_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DINESYNC_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DINESYNC_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DINESYNC_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DINESYNC_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DINESYNC_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"DINESYNC_AUTO_MIGRATE" default:"false"`
}

type HTTPConfig struct {
	CORSOrigins []string `envconfig:"DINESYNC_CORS_ORIGINS" default:"http://localhost:3000"`
}

// RealtimeConfig tunes the order change relay and its consumers.
type RealtimeConfig struct {
	Channel           string        `envconfig:"DINESYNC_REALTIME_CHANNEL" default:"ds:events:orders"`
	HeartbeatInterval time.Duration `envconfig:"DINESYNC_REALTIME_HEARTBEAT" default:"30s"`
	ReconnectBase     time.Duration `envconfig:"DINESYNC_REALTIME_RECONNECT_BASE" default:"1s"`
	ReconnectCap      time.Duration `envconfig:"DINESYNC_REALTIME_RECONNECT_CAP" default:"30s"`
	MaxReconnects     int           `envconfig:"DINESYNC_REALTIME_MAX_RECONNECTS" default:"8"`
	PollInterval      time.Duration `envconfig:"DINESYNC_REALTIME_POLL_INTERVAL" default:"15s"`
	NewOrderNoticeTTL time.Duration `envconfig:"DINESYNC_REALTIME_NOTICE_TTL" default:"5s"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"DINESYNC_CRON_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"DINESYNC_CRON_LOCK_TTL" default:"10m"`
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
	for _, env := range requiredDBEnvVars {
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
