package mysql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{Host: "db", MaxOpenConns: 50}.WithDefaults()

	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, 50, cfg.MaxOpenConns)
	assert.Equal(t, 2, cfg.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.RetryInterval)
}

func TestConfig_DSN(t *testing.T) {
	cfg := Config{Host: "localhost", Port: 3307, User: "bank", Password: "secret", DBName: "ledger"}

	assert.Equal(t, "bank:secret@tcp(localhost:3307)/ledger?charset=utf8mb4&parseTime=True&loc=Local", cfg.DSN())
}
