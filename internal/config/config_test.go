package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotContains(t, cfg.Database.Path, "~")
}

func TestInitReadsFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	content := `
server:
  addr: ":9090"
database:
  path: "` + filepath.Join(dir, "ledger.db") + `"
auth:
  enabled: true
  jwt_secret: "from-file"
  token_ttl: 2h
`
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0o600))
	t.Setenv("SPLITLEDGER_AUTH_JWT_SECRET", "from-env")
	t.Setenv("SPLITLEDGER_LOGGING_FORMAT", "json")
	t.Setenv("SPLITLEDGER_SERVER_URL", "http://ledger.local:8080/")
	t.Setenv("SPLITLEDGER_SERVER_TOKEN", "tok")

	v := viper.New()
	require.NoError(t, Init(v, cfgFile))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, filepath.Join(dir, "ledger.db"), cfg.Database.Path)
	assert.True(t, cfg.Auth.Enabled)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "http://ledger.local:8080", cfg.Server.URL)
	assert.Equal(t, "tok", cfg.Server.Token)
}

func TestInitMissingExplicitFile(t *testing.T) {
	v := viper.New()
	err := Init(v, filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: DriverSQLite, Path: "/tmp/ledger.db"},
			Auth:     AuthConfig{TokenTTL: time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"memory driver", func(c *Config) { c.Database = DatabaseConfig{Driver: DriverMemory} }, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }, true},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, true},
		{"auth without secret", func(c *Config) { c.Auth.Enabled = true }, true},
		{"auth with secret", func(c *Config) { c.Auth.Enabled, c.Auth.JWTSecret = true, "s" }, false},
		{"auth with zero ttl", func(c *Config) {
			c.Auth = AuthConfig{Enabled: true, JWTSecret: "s"}
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("LEDGER_DIR", "/srv/ledger")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "data", "x.db"), ExpandPath("~/data/x.db"))
	assert.Equal(t, "/srv/ledger/x.db", ExpandPath("$LEDGER_DIR/x.db"))
	assert.Equal(t, ":memory:", ExpandPath(":memory:"))
}
