package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr            string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type Database struct {
	Host            string        `yaml:"PG_HOST" env:"PG_HOST" env-default:"localhost"`
	Port            string        `yaml:"PG_PORT" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"PG_USER" env:"PG_USER" env-required:"true"`
	Password        string        `yaml:"PG_PASSWORD" env:"PG_PASSWORD" env-required:"true"`
	Name            string        `yaml:"PG_DBNAME" env:"PG_DBNAME" env-required:"true"`
	SSLMode         string        `yaml:"PG_SSLMODE" env:"PG_SSLMODE" env-default:"require"`
	MaxOpenConns    int           `yaml:"MAX_OPEN_CONNS" env:"PG_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"MAX_IDLE_CONNS" env:"PG_MAX_IDLE_CONNS" env-default:"25"`
	ConnMaxLifetime time.Duration `yaml:"CONN_MAX_LIFETIME" env:"PG_CONN_MAX_LIFETIME" env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"CONN_MAX_IDLE_TIME" env:"PG_CONN_MAX_IDLE_TIME" env-default:"1m"`
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER" env-required:"true"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD" env-required:"true"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

type CacheConfig struct {
	DefaultTTL time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"5m"`
}

type CartConfig struct {
	SnapshotVersion int           `yaml:"snapshot_version" env:"CART_SNAPSHOT_VERSION" env-default:"1"`
	SnapshotMaxAge  time.Duration `yaml:"snapshot_max_age" env:"CART_SNAPSHOT_MAX_AGE" env-default:"168h"`
	SweepInterval   time.Duration `yaml:"sweep_interval" env:"CART_SWEEP_INTERVAL" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"CART_IDLE_TIMEOUT" env-default:"30m"`
	PersistTimeout  time.Duration `yaml:"persist_timeout" env:"CART_PERSIST_TIMEOUT" env-default:"2s"`
	ReservationTTL  time.Duration `yaml:"reservation_ttl" env:"CART_RESERVATION_TTL" env-default:"15m"`
}

type PricingConfig struct {
	Tolerance          int64 `yaml:"tolerance" env:"PRICING_TOLERANCE" env-default:"100"`
	MaxDiscountPercent int64 `yaml:"max_discount_percent" env:"PRICING_MAX_DISCOUNT_PERCENT" env-default:"100"`
}

type ShippingConfig struct {
	BaseURL        string        `yaml:"BRING_BASE_URL" env:"BRING_BASE_URL" env-default:"https://api.bring.com/shippingguide/api/v2"`
	APIUID         string        `yaml:"BRING_API_UID" env:"BRING_API_UID" env-default:""`
	APIKey         string        `yaml:"BRING_API_KEY" env:"BRING_API_KEY" env-default:""`
	CustomerNumber string        `yaml:"BRING_CUSTOMER_NUMBER" env:"BRING_CUSTOMER_NUMBER" env-default:""`
	FromPostalCode string        `yaml:"FROM_POSTAL_CODE" env:"SHIPPING_FROM_POSTAL_CODE" env-default:"0150"`
	Products       []string      `yaml:"PRODUCTS" env:"SHIPPING_PRODUCTS" env-default:"SERVICEPAKKE,PA_DOREN,BPAKKE_DOR-DOR"`
	Timeout        time.Duration `yaml:"TIMEOUT" env:"SHIPPING_TIMEOUT" env-default:"8s"`
	CacheTTL       time.Duration `yaml:"CACHE_TTL" env:"SHIPPING_CACHE_TTL" env-default:"10m"`
}

type Stripe struct {
	APIKey   string `yaml:"STRIPE_API_KEY" env:"STRIPE_API_KEY" env-default:""`
	Currency string `yaml:"STRIPE_CURRENCY" env:"STRIPE_CURRENCY" env-default:"nok"`
}

type SendGrid struct {
	APIKey    string `yaml:"API_KEY" env:"SENDGRID_API_KEY" env-default:""`
	FromEmail string `yaml:"FROM_EMAIL" env:"SENDGRID_FROM_EMAIL" env-default:"ordre@example.com"`
	FromName  string `yaml:"FROM_NAME" env:"SENDGRID_FROM_NAME" env-default:"Galleri"`
}

type Security struct {
	JWTKey          string        `yaml:"JWT_KEY" env:"JWT_KEY" env-required:"true"`
	SessionTokenTTL time.Duration `yaml:"SESSION_TOKEN_TTL" env:"SESSION_TOKEN_TTL" env-default:"168h"`
}

type RateLimit struct {
	MaxAttempts int           `yaml:"MAX_ATTEMPTS" env:"DISCOUNT_RATE_MAX_ATTEMPTS" env-default:"10"`
	WindowSize  time.Duration `yaml:"WINDOW_SIZE" env:"DISCOUNT_RATE_WINDOW" env-default:"1m"`
}

type Kafka struct {
	Brokers          []string `yaml:"BROKERS" env:"KAFKA_BROKERS"`
	OrderPlacedTopic string   `yaml:"ORDER_PLACED_TOPIC" env:"KAFKA_ORDER_PLACED_TOPIC" env-default:"order.placed"`
}

type Otel struct {
	ServiceName      string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"art-storefront"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_ENDPOINT" env-default:""`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1.0"`
}

type Config struct {
	Env          string `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   `yaml:"http_server"`
	Database     Database       `yaml:"database"`
	RedisConnect RedisConnect   `yaml:"redis"`
	Cache        CacheConfig    `yaml:"cache"`
	Cart         CartConfig     `yaml:"cart"`
	Pricing      PricingConfig  `yaml:"pricing"`
	Shipping     ShippingConfig `yaml:"shipping"`
	Stripe       Stripe         `yaml:"stripe"`
	SendGrid     SendGrid       `yaml:"sendgrid"`
	Security     Security       `yaml:"security"`
	RateLimit    RateLimit      `yaml:"rate_limit"`
	Kafka        Kafka          `yaml:"kafka"`
	Otel         Otel           `yaml:"otel"`
}

func MustLoad() *Config {

	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "gets the config flag value")

		flag.Parse()

		configPath = *flags

		if configPath == "" {
			configPath = "config/local.yaml"
		}

	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatalf("can not read config file: %s", err.Error())
	}

	return cfg

}

func LoadConfigFromPath(configPath string) (*Config, error) {

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return &cfg, nil
}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

func (r *RedisConnect) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s:%s", r.Username, r.Password, r.Host, r.Port)
}

func (r *RedisConnect) Addr() string {
	return r.Host + ":" + r.Port
}
