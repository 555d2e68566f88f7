package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// setRequiredEnv satisfies must() and clears the optional knobs so the
// ambient environment cannot leak into a test.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "cashbook")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "cashbook")
	for _, k := range []string{
		"DB_MAX_OPEN", "DB_MAX_IDLE", "DB_CONN_LIFE_MIN",
		"REDIS_ADDR", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_TLS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg := Load()
	assert.Equal(t, 25, cfg.DBMaxOpen)
	assert.Equal(t, 25, cfg.DBMaxIdle)
	assert.Equal(t, 30, cfg.DBConnLife)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.False(t, cfg.RedisTLS)
}

func TestLoadPoolAndRedisOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_MAX_OPEN", "50")
	t.Setenv("DB_MAX_IDLE", "10")
	t.Setenv("DB_CONN_LIFE_MIN", "5")
	t.Setenv("REDIS_ADDR", "shadowed:1")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_PASSWORD", "s3cret")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_TLS", "TRUE")

	cfg := Load()
	assert.Equal(t, 50, cfg.DBMaxOpen)
	assert.Equal(t, 10, cfg.DBMaxIdle)
	assert.Equal(t, 5, cfg.DBConnLife)
	assert.Equal(t, "redis.internal:6380", cfg.RedisAddr, "host/port pair wins over REDIS_ADDR")
	assert.Equal(t, "s3cret", cfg.RedisPassword)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.RedisTLS)
}

func TestLoadUnparsableIntFallsBack(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_MAX_OPEN", "lots")

	assert.Equal(t, 25, Load().DBMaxOpen)
}

func TestRedisOptions(t *testing.T) {
	opts := redisOptions(Config{RedisAddr: "localhost:6379", RedisPassword: "pw", RedisDB: 2})
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Nil(t, opts.TLSConfig)

	assert.NotNil(t, redisOptions(Config{RedisAddr: "localhost:6379", RedisTLS: true}).TLSConfig)
}
