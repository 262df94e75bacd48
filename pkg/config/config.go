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
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	AuthRate AuthRateLimitConfig
	Pricing  PricingConfig
	Payments PaymentsConfig
	SMTP     SMTPConfig
	Shop     ShopConfig
	Features FeatureFlagsConfig
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
	Env          string `envconfig:"SMKPRO_APP_ENV" required:"true"`
	Port         string `envconfig:"SMKPRO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SMKPRO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SMKPRO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SMKPRO_DB_DSN"`
	Driver string `envconfig:"SMKPRO_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SMKPRO_DB_HOST"`
	Port     int    `envconfig:"SMKPRO_DB_PORT" default:"5432"`
	User     string `envconfig:"SMKPRO_DB_USER"`
	Password string `envconfig:"SMKPRO_DB_PASSWORD"`
	Name     string `envconfig:"SMKPRO_DB_NAME"`
	SSLMode  string `envconfig:"SMKPRO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SMKPRO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SMKPRO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SMKPRO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SMKPRO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SMKPRO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SMKPRO_REDIS_ADDR"`
	Password     string        `envconfig:"SMKPRO_REDIS_PASSWORD"`
	DB           int           `envconfig:"SMKPRO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SMKPRO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SMKPRO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SMKPRO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SMKPRO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SMKPRO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SMKPRO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SMKPRO_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SMKPRO_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"SMKPRO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"SMKPRO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"SMKPRO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"SMKPRO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// PricingConfig carries the shipping-rate table and the display tax rate.
// Shipping is the only adjustment charged on orders; the tax percentage is
// an informational estimate shown with cart totals and never persisted.
type PricingConfig struct {
	TaxPercent    string `envconfig:"SMKPRO_PRICING_TAX_PERCENT" default:"2"`
	DiscountState string `envconfig:"SMKPRO_PRICING_DISCOUNT_STATE" default:"tamil nadu"`
	DiscountRate  string `envconfig:"SMKPRO_PRICING_DISCOUNT_RATE" default:"60.00"`
	StandardRate  string `envconfig:"SMKPRO_PRICING_STANDARD_RATE" default:"100.00"`
}

// TaxRate returns the display tax percentage as a decimal fraction.
func (p PricingConfig) TaxRate() decimal.Decimal {
	rate, err := decimal.NewFromString(p.TaxPercent)
	if err != nil {
		return decimal.Zero
	}
	return rate.Div(decimal.NewFromInt(100))
}

// ShippingRate returns the per-weight-unit shipping rate for a state.
func (p PricingConfig) ShippingRate(state string) decimal.Decimal {
	normalized := strings.ToLower(strings.TrimSpace(state))
	raw := p.StandardRate
	if normalized == strings.ToLower(strings.TrimSpace(p.DiscountState)) {
		raw = p.DiscountRate
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

type PaymentsConfig struct {
	UPIID   string `envconfig:"SMKPRO_UPI_ID"`
	UPIName string `envconfig:"SMKPRO_UPI_NAME"`
}

type SMTPConfig struct {
	Host     string `envconfig:"SMKPRO_SMTP_HOST"`
	Port     int    `envconfig:"SMKPRO_SMTP_PORT" default:"587"`
	Username string `envconfig:"SMKPRO_SMTP_USERNAME"`
	Password string `envconfig:"SMKPRO_SMTP_PASSWORD"`
	From     string `envconfig:"SMKPRO_SMTP_FROM"`
}

type ShopConfig struct {
	OwnerEmail string `envconfig:"SMKPRO_SHOP_OWNER_EMAIL"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SMKPRO_AUTO_MIGRATE" default:"false"`
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
