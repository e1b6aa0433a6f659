package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(DataDir(), "pdfprints.db"), cfg.Database.Path)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "pdfprints:events", cfg.Redis.Channel)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 50, cfg.Display.PageSize)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `database:
  driver: sqlite
  path: /tmp/prints.db
display:
  page_size: 25
redis:
  addr: localhost:6379
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	t.Setenv("PDFPRINTS_SERVER_ADDRESS", ":9090")
	t.Setenv("PDFPRINTS_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/prints.db", cfg.Database.Path)
	assert.Equal(t, 25, cfg.Display.PageSize)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"PDFPRINTS_DATABASE_DRIVER": "mysql"}},
		{name: "postgres without url", env: map[string]string{"PDFPRINTS_DATABASE_DRIVER": "postgres"}},
		{name: "zero page size", env: map[string]string{"PDFPRINTS_DISPLAY_PAGE_SIZE": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(NewViper(), "")
			assert.Error(t, err)
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := LoadConfig(NewViper(), "")
	require.NoError(t, err)
	cfg.Display.PageSize = 20
	cfg.Redis.Addr = "redis:6379"
	require.NoError(t, SaveConfig(path, cfg))

	loaded, err := LoadConfig(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, 20, loaded.Display.PageSize)
	assert.Equal(t, "redis:6379", loaded.Redis.Addr)
	assert.Equal(t, cfg.Database.Path, loaded.Database.Path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "page_size: 20")
	assert.NotContains(t, string(raw), "theme")
}
