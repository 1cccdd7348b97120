package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_DefaultsWithEnvSecret(t *testing.T) {
	req := require.New(t)
	chdirTemp(t)
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("STUDYHUB_JWT_SECRET", "s3cret")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(8080, cfg.Port)
	req.Equal("s3cret", cfg.JWT.Secret)
	req.Equal("sqlite", cfg.Database.Driver)
	req.Equal("local", cfg.Broadcast.Backend)
	req.Equal(10*time.Second, cfg.WS.AuthTimeout)
	req.Equal(5*time.Second, cfg.Hub.PersistTimeout)
	req.Equal(7*24*time.Hour, cfg.Invitations.TTL)
	req.Equal("kick", cfg.Hub.Backpressure)
	req.Equal(time.Minute, cfg.Reminders.Interval)
	req.Equal(5*time.Minute, cfg.Reminders.TaskLead)
	req.Equal(15*time.Minute, cfg.Reminders.EventLead)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	req := require.New(t)
	dir := chdirTemp(t)
	req.NoError(os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	yaml := []byte("port: 9090\njwt:\n  secret: from-file\nbroadcast:\n  backend: nats\nws:\n  send_buffer: 8\nhub:\n  backpressure: drop\n")
	req.NoError(os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), yaml, 0o644))
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("STUDYHUB_PORT", "7070")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(7070, cfg.Port)
	req.Equal("from-file", cfg.JWT.Secret)
	req.Equal("nats", cfg.Broadcast.Backend)
	req.Equal(8, cfg.WS.SendBuffer)
	req.Equal("drop", cfg.Hub.Backpressure)
}

func TestLoad_RequiresSecret(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("STUDYHUB_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := Config{
		JWT:       JWTConfig{Secret: "x"},
		Database:  DatabaseConfig{Driver: "sqlite"},
		Broadcast: BroadcastConfig{Backend: "kafka"},
		Hub:       HubConfig{Backpressure: "kick"},
		WS:        WSConfig{SendBuffer: 1},
	}
	require.ErrorContains(t, cfg.Validate(), "kafka")
}

func TestValidate_Backpressure(t *testing.T) {
	req := require.New(t)
	cfg := Config{
		JWT:       JWTConfig{Secret: "x"},
		Database:  DatabaseConfig{Driver: "sqlite"},
		Broadcast: BroadcastConfig{Backend: "local"},
		Hub:       HubConfig{Backpressure: "drop"},
		WS:        WSConfig{SendBuffer: 1},
	}
	req.NoError(cfg.Validate())

	cfg.Hub.Backpressure = "ignore"
	req.ErrorContains(cfg.Validate(), "ignore")
}
