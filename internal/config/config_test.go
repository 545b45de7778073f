package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

// chdir switches the working directory for the duration of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func setCredentials(t *testing.T) {
	t.Setenv("NYLAS_BACKEND_NYLAS_CLIENT_ID", "client-id")
	t.Setenv("NYLAS_BACKEND_NYLAS_CLIENT_SECRET", "client-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setCredentials(t)
	chdir(t, t.TempDir())

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowOrigins)
	assert.False(t, cfg.Server.StrictUnauthorized)
	assert.Equal(t, "http://localhost:3000", cfg.Nylas.ClientURI)
	assert.Equal(t, "https://api.nylas.com", cfg.Nylas.APIURL)
	assert.Equal(t, []string{"email.modify", "email.send"}, cfg.Nylas.DefaultScopes)
	assert.Equal(t, 30*time.Second, cfg.Nylas.Timeout)
	assert.True(t, cfg.Webhook.TunnelEnabled)
	assert.Equal(t, []string{"account.connected"}, cfg.Webhook.Triggers)
	assert.Equal(t, "client-id", cfg.Nylas.ClientID)
}

func TestLoad_MissingCredentials(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("NYLAS_BACKEND_NYLAS_CLIENT_ID", "")
	t.Setenv("NYLAS_BACKEND_NYLAS_CLIENT_SECRET", "")

	_, err := Load(newFlags(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nylas.client_id is required")
}

func TestLoad_ConfigFileAndFlags(t *testing.T) {
	setCredentials(t)
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "backend.yaml")
	content := []byte(`
server:
  port: 8181
  strict_unauthorized: true
nylas:
  client_uri: http://frontend.test
  rate_limit: 5
webhook:
  tunnel_enabled: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(newFlags(t, "--config", path, "--port", "9100", "--no-tunnel"))
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "flag overrides file")
	assert.True(t, cfg.Server.StrictUnauthorized)
	assert.Equal(t, "http://frontend.test", cfg.Nylas.ClientURI)
	assert.InDelta(t, 5.0, cfg.Nylas.RateLimit, 0.0001)
	assert.False(t, cfg.Webhook.TunnelEnabled)
}

func TestLoad_ExplicitConfigFileMissing(t *testing.T) {
	setCredentials(t)
	chdir(t, t.TempDir())

	_, err := Load(newFlags(t, "--config", "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("NYLAS_BACKEND_NYLAS_CLIENT_SECRET", "from-env")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("NYLAS_BACKEND_NYLAS_CLIENT_ID=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("NYLAS_BACKEND_NYLAS_CLIENT_ID") })

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Nylas.ClientID)
	assert.Equal(t, "from-env", cfg.Nylas.ClientSecret)
}

func TestRedacted(t *testing.T) {
	cfg := Config{Nylas: NylasConfig{ClientID: "id", ClientSecret: "secret"}}
	red := cfg.Redacted()
	assert.Equal(t, "<redacted>", red.Nylas.ClientSecret)
	assert.Equal(t, "secret", cfg.Nylas.ClientSecret)
}
