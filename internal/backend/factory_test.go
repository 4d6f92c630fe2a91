package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaad/internal/config"
	"zaad/internal/core"
)

func TestCreateBackend_Memory(t *testing.T) {
	dir := t.TempDir()
	seed := `[{"id":"c1","name":"Acme","published":true}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "companies.json"), []byte(seed), 0644))

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:          MemoryBackend,
		DataDirectory: dir,
		Location:      time.UTC,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Cleanup)

	entities, err := res.Store.ListEntities(context.Background(), core.KindCompany, false)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "Acme", entities[0].Name)
}

func TestCreateBackend_SQLite(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "zaad.db"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Cleanup)
	defer res.Cleanup()

	assert.NoError(t, res.Store.Ping(context.Background()))
}

func TestCreateBackend_Invalid(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: "sheets"})
	assert.ErrorContains(t, err, "invalid backend type")

	_, err = NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend})
	assert.ErrorContains(t, err, "SQLite database path is required")
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:   "sqlite",
		SQLiteDBPath:  "/tmp/zaad.db",
		DataDirectory: "seed",
		Timezone:      "UTC",
	})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "/tmp/zaad.db", cfg.SQLiteDBPath)
	assert.Equal(t, "seed", cfg.DataDirectory)
	assert.Equal(t, time.UTC, cfg.Location)

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	assert.Error(t, err)

	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
}
