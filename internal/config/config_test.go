package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:               "5000",
		Env:                "development",
		SessionSecret:      "dev-secret",
		DBDriver:           "sqlite",
		DBPath:             "test.db",
		FeedScope:          FeedScopeGlobal,
		FeedLimit:          20,
		NotificationsLimit: 50,
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"missing port":       func(c *Config) { c.Port = "" },
		"missing secret":     func(c *Config) { c.SessionSecret = "" },
		"unknown driver":     func(c *Config) { c.DBDriver = "mysql" },
		"unknown feed scope": func(c *Config) { c.FeedScope = "friends" },
		"negative post cap":  func(c *Config) { c.MaxPostChars = -1 },
		"zero feed limit":    func(c *Config) { c.FeedLimit = 0 },
		"zero notif limit":   func(c *Config) { c.NotificationsLimit = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateOwnScope(t *testing.T) {
	cfg := validConfig()
	cfg.FeedScope = FeedScopeOwn
	assert.NoError(t, cfg.Validate())
}

func TestValidateProductionHardening(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.SessionSecret = "xtagram-dev-secret-change-in-production"
	assert.Error(t, cfg.Validate())

	cfg.SessionSecret = "short"
	assert.Error(t, cfg.Validate())

	cfg.SessionSecret = "a-sufficiently-long-production-secret-value"
	assert.NoError(t, cfg.Validate())

	cfg.DBDriver = "postgres"
	cfg.DBPassword = "password"
	assert.Error(t, cfg.Validate())

	cfg.DBPassword = "3x4mpl3-str0ng-p4ssw0rd"
	assert.NoError(t, cfg.Validate())
}
