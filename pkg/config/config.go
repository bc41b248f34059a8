package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	Admin  AdminConfig
	Shop   ShopConfig
	Square SquareConfig
	GCP    GCPConfig
	PubSub PubSubConfig
	Cron   CronConfig
	Outbox OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ROASTERY_APP_ENV" required:"true"`
	Port         string `envconfig:"ROASTERY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ROASTERY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ROASTERY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"ROASTERY_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"ROASTERY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ROASTERY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ROASTERY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ROASTERY_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"ROASTERY_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ROASTERY_REDIS_URL"`
	Address      string        `envconfig:"ROASTERY_REDIS_ADDR"`
	Password     string        `envconfig:"ROASTERY_REDIS_PASSWORD"`
	DB           int           `envconfig:"ROASTERY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ROASTERY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ROASTERY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ROASTERY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ROASTERY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ROASTERY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// AdminConfig secures the back-office endpoints used by shop staff.
type AdminConfig struct {
	JWTSecret         string `envconfig:"ROASTERY_ADMIN_JWT_SECRET" required:"true"`
	JWTIssuer         string `envconfig:"ROASTERY_ADMIN_JWT_ISSUER" default:"roastery"`
	ExpirationMinutes int    `envconfig:"ROASTERY_ADMIN_JWT_EXPIRATION_MINUTES" default:"720"`
}

// TokenTTL returns the admin token lifetime.
func (a AdminConfig) TokenTTL() time.Duration {
	if a.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(a.ExpirationMinutes) * time.Minute
}

// ShopConfig carries the commerce policy knobs. Keeping the loyalty discount
// table here means re-enabling loyalty discounts is a config change, not a
// code change.
type ShopConfig struct {
	Currency string `envconfig:"ROASTERY_SHOP_CURRENCY" default:"UAH"`

	FreeDeliveryThreshold   int `envconfig:"ROASTERY_SHOP_FREE_DELIVERY_THRESHOLD" default:"1500"`
	DeliveryCostNovaPoshta  int `envconfig:"ROASTERY_SHOP_DELIVERY_COST_NOVA_POSHTA" default:"65"`
	DeliveryCostUkrposhta   int `envconfig:"ROASTERY_SHOP_DELIVERY_COST_UKRPOSHTA" default:"50"`
	DeliveryCostCourier     int `envconfig:"ROASTERY_SHOP_DELIVERY_COST_COURIER" default:"100"`
	ReferralBonusAmount     int `envconfig:"ROASTERY_SHOP_REFERRAL_BONUS" default:"100"`
	ReplenishmentAfterDays  int `envconfig:"ROASTERY_SHOP_REPLENISHMENT_AFTER_DAYS" default:"18"`
	LoyaltyDiscountsEnabled bool `envconfig:"ROASTERY_SHOP_LOYALTY_DISCOUNTS_ENABLED" default:"false"`
}

type SquareConfig struct {
	AccessToken string `envconfig:"ROASTERY_SQUARE_ACCESS_TOKEN"`
	Env         string `envconfig:"ROASTERY_SQUARE_ENV" default:"sandbox"`
	LocationID  string `envconfig:"ROASTERY_SQUARE_LOCATION_ID"`
	RedirectURL string `envconfig:"ROASTERY_SQUARE_REDIRECT_URL"`
}

func (s SquareConfig) Environment() string {
	return strings.ToLower(strings.TrimSpace(s.Env))
}

type GCPConfig struct {
	ProjectID string `envconfig:"ROASTERY_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"ROASTERY_PUBSUB_ORDERS_TOPIC" default:"roastery-orders"`
	NotificationsTopic string `envconfig:"ROASTERY_PUBSUB_NOTIFICATIONS_TOPIC" default:"roastery-notifications"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"ROASTERY_CRON_INTERVAL" default:"24h"`
	LockKey  string        `envconfig:"ROASTERY_CRON_LOCK_KEY" default:"roastery:cron:lock"`
	LockTTL  time.Duration `envconfig:"ROASTERY_CRON_LOCK_TTL" default:"25h"`
}

type OutboxConfig struct {
	BatchSize    int           `envconfig:"ROASTERY_OUTBOX_BATCH_SIZE" default:"50"`
	PollInterval time.Duration `envconfig:"ROASTERY_OUTBOX_POLL_INTERVAL" default:"500ms"`
	MaxAttempts  int           `envconfig:"ROASTERY_OUTBOX_MAX_ATTEMPTS" default:"10"`
}
