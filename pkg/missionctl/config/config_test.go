package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:7180/ws", cfg.Gateway.URL)
	assert.Equal(t, "default", cfg.Workspace.ID)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "all", cfg.Feed.Filter)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
gateway:
  url: ws://orchestrator:9000/ws
workspace:
  id: prod-west
logging:
  level: debug
  format: json
feed:
  filter: tasks
  agent: builder
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://orchestrator:9000/ws", cfg.Gateway.URL)
	assert.Equal(t, "prod-west", cfg.Workspace.ID)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "tasks", cfg.Feed.Filter)
	assert.Equal(t, "builder", cfg.Feed.Agent)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoad_EnvOverlay(t *testing.T) {
	t.Setenv("MISSIONCTL_GATEWAY_URL", "ws://env-wins:1234/ws")
	t.Setenv("MISSIONCTL_WORKSPACE", "env-ws")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ws://env-wins:1234/ws", cfg.Gateway.URL)
	assert.Equal(t, "env-ws", cfg.Workspace.ID)
}
