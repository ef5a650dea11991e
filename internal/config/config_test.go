package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		setEnv       bool
		envValue     string
		expected     string
	}{
		{
			name:         "env variable set",
			key:          "TEST_KEY",
			defaultValue: "default",
			setEnv:       true,
			envValue:     "custom",
			expected:     "custom",
		},
		{
			name:         "env variable not set",
			key:          "TEST_KEY_NOT_SET",
			defaultValue: "default",
			setEnv:       false,
			expected:     "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}

			result := getEnv(tt.key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseHandles(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{
			name:     "single handle",
			raw:      "alice",
			expected: []string{"alice"},
		},
		{
			name:     "multiple handles with spacing",
			raw:      "alice, bob ,carol",
			expected: []string{"alice", "bob", "carol"},
		},
		{
			name:     "leading at signs stripped",
			raw:      "@alice,@bob",
			expected: []string{"alice", "bob"},
		},
		{
			name:     "empty entries dropped",
			raw:      "alice,,  ,bob",
			expected: []string{"alice", "bob"},
		},
		{
			name:     "empty input",
			raw:      "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseHandles(tt.raw))
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
		},
	}

	dsn := cfg.DSN()
	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("OPERATOR_HANDLES", "")
	t.Setenv("DB_PASSWORD", "")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "BOT_TOKEN")
}

func TestLoad_MissingOperatorHandles(t *testing.T) {
	t.Setenv("BOT_TOKEN", "test_token")
	t.Setenv("OPERATOR_HANDLES", "")
	t.Setenv("DB_PASSWORD", "test_db_password")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "OPERATOR_HANDLES")
}

func TestLoad_MissingDBPassword(t *testing.T) {
	t.Setenv("BOT_TOKEN", "test_token")
	t.Setenv("OPERATOR_HANDLES", "alice")
	t.Setenv("DB_PASSWORD", "")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}

func TestLoad_WithDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "test_token")
	t.Setenv("OPERATOR_HANDLES", "@alice, bob")
	t.Setenv("DB_PASSWORD", "test_db_password")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("DB_USER", "")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.NotNil(t, cfg)
	assert.Equal(t, "test_token", cfg.BotToken)
	assert.Equal(t, []string{"alice", "bob"}, cfg.OperatorHandles)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, "relaybot", cfg.Database.Name)
	assert.Equal(t, "relaybot", cfg.Database.User)
}
