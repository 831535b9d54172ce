package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SIMULATED_LATENCY_MS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, 300*time.Millisecond, cfg.Service.Latency)
	assert.False(t, cfg.Service.EnforceCapacity)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("SIMULATED_LATENCY_MS", "0")
	t.Setenv("ENFORCE_EVENT_CAPACITY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Store.SQLitePath)
	assert.Zero(t, cfg.Service.Latency)
	assert.True(t, cfg.Service.EnforceCapacity)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "etcd"}},
		{"redis without addr", map[string]string{"STORE_DRIVER": "redis", "REDIS_ADDR": ""}},
		{"s3 without bucket", map[string]string{"STORE_DRIVER": "s3", "AWS_S3_STORE_BUCKET": ""}},
		{"queue without redis", map[string]string{"STORE_DRIVER": "memory", "NOTIFY_VIA_QUEUE": "true", "REDIS_ADDR": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "hb", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/hb?sslmode=disable", c.DSN())
	c.URL = "postgres://override"
	assert.Equal(t, "postgres://override", c.DSN())
}
