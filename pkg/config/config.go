package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                    string         `mapstructure:"PORT"`
	Env                     string         `mapstructure:"ENV"`
	LogLevel                string         `mapstructure:"LOG_LEVEL"`
	FirebaseCredentialsPath string         `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	MetricsPort             string         `mapstructure:"METRICS_PORT"`
	CORSAllowedOrigins      string         `mapstructure:"CORS_ALLOWED_ORIGINS"`
	Database                DatabaseConfig `mapstructure:",squash"`
	Redis                   RedisConfig    `mapstructure:",squash"`
	JWT                     JWTConfig      `mapstructure:",squash"`
	Storage                 StorageConfig  `mapstructure:",squash"`
	AuthRateLimit           float64        `mapstructure:"AUTH_RATE_LIMIT"`
	AuthRateBurst           int            `mapstructure:"AUTH_RATE_BURST"`
	NotificationRetention   time.Duration  `mapstructure:"NOTIFICATION_RETENTION"`
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"DB_DRIVER"`
	URL             string `mapstructure:"DATABASE_URL"`
	PostgresConnStr string `mapstructure:"POSTGRES_CONN_STR"`
	MongoURI        string `mapstructure:"MONGO_URI"`
	MongoDatabase   string `mapstructure:"MONGO_DATABASE"`
}

// DSN returns DATABASE_URL, or the legacy POSTGRES_CONN_STR when unset.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return d.PostgresConnStr
}

type RedisConfig struct {
	Addr     string `mapstructure:"REDIS_ADDR"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"JWT_SECRET"`
	Expiration time.Duration `mapstructure:"JWT_EXPIRATION"`
	Issuer     string        `mapstructure:"JWT_ISSUER"`
}

type StorageConfig struct {
	Driver            string `mapstructure:"STORAGE_DRIVER"`
	LocalDir          string `mapstructure:"STORAGE_LOCAL_DIR"`
	PublicURL         string `mapstructure:"STORAGE_PUBLIC_URL"`
	S3Endpoint        string `mapstructure:"S3_ENDPOINT"`
	S3Region          string `mapstructure:"S3_REGION"`
	S3Bucket          string `mapstructure:"S3_BUCKET"`
	S3AccessKeyID     string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `mapstructure:"S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle    bool   `mapstructure:"S3_USE_PATH_STYLE"`
}

var defaults = map[string]any{
	"PORT":                      "8080",
	"ENV":                       "development",
	"LOG_LEVEL":                 "info",
	"FIREBASE_CREDENTIALS_PATH": "",
	"METRICS_PORT":              "9090",
	"CORS_ALLOWED_ORIGINS":      "http://localhost:3000",
	"DB_DRIVER":                 "postgres",
	"DATABASE_URL":              "",
	"POSTGRES_CONN_STR":         "",
	"MONGO_URI":                 "",
	"MONGO_DATABASE":            "wingit",
	"REDIS_ADDR":                "",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"JWT_SECRET":                "",
	"JWT_EXPIRATION":            "72h",
	"JWT_ISSUER":                "wingit",
	"STORAGE_DRIVER":            "local",
	"STORAGE_LOCAL_DIR":         "./uploads",
	"STORAGE_PUBLIC_URL":        "/uploads",
	"S3_ENDPOINT":               "",
	"S3_REGION":                 "us-east-1",
	"S3_BUCKET":                 "",
	"S3_ACCESS_KEY_ID":          "",
	"S3_SECRET_ACCESS_KEY":      "",
	"S3_USE_PATH_STYLE":         false,
	"AUTH_RATE_LIMIT":           5,
	"AUTH_RATE_BURST":           10,
	"NOTIFICATION_RETENTION":    "720h",
}

// devJWTSecret is only accepted when ENV=development.
const devJWTSecret = "supersecretjwtkey"

// Load reads the environment (and a .env file when present) into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.JWT.Secret == "" && cfg.IsDevelopment() {
		cfg.JWT.Secret = devJWTSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET must be set outside development")
	}
	if c.JWT.Expiration <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive, got %s", c.JWT.Expiration)
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	return nil
}
