package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := []byte(`
environment: production
logging:
  level: debug
roles:
  staff: ["role-staff"]
  protected: ["role-slt", "role-alt"]
escalation:
  window: 12h
  base_timeout: 2m
  max_timeout: 60m
tickets:
  categories:
    support:
      destination: ticket-archive
    appeals:
      destination: appeal-archive
      claim_role: role-appeals
health:
  port: 9090
`)

	err := os.WriteFile(configPath, configContent, 0644)
	require.NoError(t, err)

	t.Run("LoadValidConfig", func(t *testing.T) {
		cfg, err := Load(configPath)
		require.NoError(t, err)
		assert.NotNil(t, cfg)

		assert.Equal(t, "production", cfg.Environment)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, []string{"role-slt", "role-alt"}, cfg.Roles.Protected)
		assert.Equal(t, 12*time.Hour, cfg.Escalation.Window)
		assert.Equal(t, 2*time.Minute, cfg.Escalation.BaseTimeout)
		assert.Equal(t, 9090, cfg.Health.Port)
		assert.Equal(t, "role-appeals", cfg.Tickets.Categories["appeals"].ClaimRole)
	})

	t.Run("Defaults", func(t *testing.T) {
		emptyPath := filepath.Join(tmpDir, "empty.yaml")
		require.NoError(t, os.WriteFile(emptyPath, []byte("environment: development\n"), 0644))

		cfg, err := Load(emptyPath)
		require.NoError(t, err)

		assert.Equal(t, 24*time.Hour, cfg.Escalation.Window)
		assert.Equal(t, 5*time.Minute, cfg.Escalation.BaseTimeout)
		assert.Equal(t, 120*time.Minute, cfg.Escalation.MaxTimeout)
		assert.Equal(t, 8080, cfg.Health.Port)
		assert.Contains(t, cfg.Tickets.Categories, "support")
	})

	t.Run("EnvironmentOverride", func(t *testing.T) {
		os.Setenv("WARDEN_LOGGING_LEVEL", "error")
		defer os.Unsetenv("WARDEN_LOGGING_LEVEL")

		cfg, err := Load(configPath)
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.Logging.Level)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Escalation: EscalationConfig{
				Window:      24 * time.Hour,
				BaseTimeout: 5 * time.Minute,
				MaxTimeout:  120 * time.Minute,
			},
			Tickets: TicketConfig{
				Categories: map[string]TicketCategory{
					"support": {Destination: "ticket-archive"},
				},
			},
			Health: HealthConfig{Port: 8080},
		}
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("NonPositiveWindow", func(t *testing.T) {
		cfg := valid()
		cfg.Escalation.Window = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("MaxBelowBase", func(t *testing.T) {
		cfg := valid()
		cfg.Escalation.MaxTimeout = time.Minute
		assert.Error(t, cfg.Validate())
	})

	t.Run("NoCategories", func(t *testing.T) {
		cfg := valid()
		cfg.Tickets.Categories = nil
		assert.Error(t, cfg.Validate())
	})

	t.Run("CategoryWithoutDestination", func(t *testing.T) {
		cfg := valid()
		cfg.Tickets.Categories["broken"] = TicketCategory{}
		assert.Error(t, cfg.Validate())
	})

	t.Run("InvalidPort", func(t *testing.T) {
		cfg := valid()
		cfg.Health.Port = -1
		assert.Error(t, cfg.Validate())
	})
}
