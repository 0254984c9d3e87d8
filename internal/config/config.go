package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

// Config is built once at startup and handed to constructors by pointer.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`

	Storage    string `mapstructure:"STORAGE"`
	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	RunMigrations bool `mapstructure:"RUN_MIGRATIONS"`

	AuthSecret    string        `mapstructure:"AUTH_SECRET"`
	AuthExpires   time.Duration `mapstructure:"AUTH_EXPIRES"`
	AuthNotBefore time.Duration `mapstructure:"AUTH_NOT_BEFORE"`
	BcryptCost    int           `mapstructure:"BCRYPT_COST"`

	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

var keys = []string{
	"SERVER_PORT",
	"STORAGE", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"RUN_MIGRATIONS",
	"AUTH_SECRET", "AUTH_EXPIRES", "AUTH_NOT_BEFORE", "BCRYPT_COST",
	"CORS_ALLOWED_ORIGINS",
	"LOG_LEVEL", "LOG_FORMAT",
}

// Load reads a .env file from the working directory if there is one, then
// resolves every key from the environment with defaults applied.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("STORAGE", StoragePostgres)
	v.SetDefault("DB_DRIVER", DriverPQ)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "bank_wallet")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("AUTH_EXPIRES", "1h")
	v.SetDefault("AUTH_NOT_BEFORE", "1s")
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	// Unmarshal only sees keys viper already knows about.
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.CORSAllowedOrigins = splitList(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first setting that would make the service unusable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AuthSecret) == "" {
		return fmt.Errorf("AUTH_SECRET is required")
	}
	if c.AuthExpires <= 0 {
		return fmt.Errorf("AUTH_EXPIRES must be positive, got %s", c.AuthExpires)
	}
	if c.AuthNotBefore < 0 {
		return fmt.Errorf("AUTH_NOT_BEFORE must not be negative, got %s", c.AuthNotBefore)
	}
	if c.AuthNotBefore >= c.AuthExpires {
		return fmt.Errorf("AUTH_NOT_BEFORE (%s) must be shorter than AUTH_EXPIRES (%s)", c.AuthNotBefore, c.AuthExpires)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q", c.Storage)
	}
	switch c.DBDriver {
	case DriverPQ, DriverPGX:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// GetDBConnectionString builds a key/value DSN understood by both lib/pq and pgx.
func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// splitList accepts both a comma separated value and a list that viper already split.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
