package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "secret")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, DriverPQ, cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.AuthExpires)
	assert.Equal(t, time.Second, cfg.AuthNotBefore)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("AUTH_SECRET", "secret")
	t.Setenv("AUTH_EXPIRES", "15m")
	t.Setenv("AUTH_NOT_BEFORE", "2s")
	t.Setenv("STORAGE", "memory")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.AuthExpires)
	assert.Equal(t, 2*time.Second, cfg.AuthNotBefore)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, DriverPGX, cfg.DBDriver)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.False(t, cfg.RunMigrations)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")

	_, err := load(viper.New())
	assert.ErrorContains(t, err, "AUTH_SECRET")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage:       StorageMemory,
			DBDriver:      DriverPQ,
			AuthSecret:    "secret",
			AuthExpires:   time.Hour,
			AuthNotBefore: time.Second,
			BcryptCost:    10,
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.AuthExpires = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.AuthNotBefore = 2 * time.Hour
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Storage = "mongo"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.DBDriver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.BcryptCost = 64
	assert.Error(t, cfg.Validate())
}

func TestGetDBConnectionString(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", cfg.GetDBConnectionString())
}
