package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, 5, cfg.DB.ConnectRetries)
	assert.Equal(t, 3*time.Second, cfg.DB.ConnectRetryDelay)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.Equal(t, "0.0.0.0:3001", cfg.HTTP.Addr())
	assert.False(t, cfg.Admin.Enabled())
}

func TestFromViper_Sobrescrituras(t *testing.T) {
	v := viper.New()
	v.Set("DB_CONNECT_RETRIES", "2")
	v.Set("DB_CONNECT_RETRY_DELAY", "500ms")
	v.Set("RATE_LIMIT_WINDOW", "60")
	v.Set("HTTP_PORT", "9090")
	v.Set("ADMIN_EMAIL", "admin@crm.local")
	v.Set("ADMIN_PASSWORD", "secreto123")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.DB.ConnectRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.DB.ConnectRetryDelay)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Admin.Enabled())
}

func TestFromViper_ProductionExigeSecreto(t *testing.T) {
	v := viper.New()
	v.Set("APP_ENV", "production")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSNCodificaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "crm", Password: "p@ss/word", DBName: "crm", SSLMode: "disable"}
	assert.Equal(t, "postgres://crm:p%40ss%2Fword@db:5432/crm?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())

	c.DatabaseURL = "postgres://otra"
	assert.Equal(t, "postgres://otra", c.ConnectionString())
}
