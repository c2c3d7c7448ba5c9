package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/eruditedesk/ticketsearch/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const fullConfig = `
model:
  path: http://localhost:11434
  model_name: rubert-tiny2
database:
  relational_db:
    url: postgres://svc:pw@db:5432/tickets
  vector_db:
    main:
      url: http://localhost:6333
      collection_name: tickets
      date_from: "2025-01-01"
    indexing:
      m_value: 32
      ef_construct: 256
      full_scan_threshold: 20000
      max_indexing_threads: 4
      on_disk: true
logging:
  level: DEBUG
service:
  threshold: 0.55
  listen: ":9000"
`

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:11434", cfg.Model.Path)
	assert.Equal(t, "rubert-tiny2", cfg.Model.ModelName)
	assert.Equal(t, "postgres://svc:pw@db:5432/tickets", cfg.Database.Relational.URL)
	assert.Equal(t, "http://localhost:6333", cfg.Database.Vector.Main.URL)
	assert.Equal(t, "tickets", cfg.Database.Vector.Main.CollectionName)
	assert.Equal(t, 32, cfg.Database.Vector.Indexing.MValue)
	assert.Equal(t, 256, cfg.Database.Vector.Indexing.EfConstruct)
	assert.Equal(t, 20000, cfg.Database.Vector.Indexing.FullScanThreshold)
	assert.Equal(t, 4, cfg.Database.Vector.Indexing.MaxIndexingThreads)
	assert.True(t, cfg.Database.Vector.Indexing.OnDisk)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, 0.55, cfg.Service.Threshold)
	assert.Equal(t, ":9000", cfg.Service.Listen)
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
database:
  relational_db:
    url: postgres://svc:pw@db:5432/tickets
  vector_db:
    main:
      url: http://localhost:6333
`))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, ":8000", cfg.Service.Listen)
	assert.Equal(t, DefaultDateFrom, cfg.Database.Vector.Main.DateFrom)
	assert.Equal(t, "support_tickets", cfg.Database.Vector.Main.CollectionName)
	assert.Equal(t, 16, cfg.Database.Vector.Indexing.MValue)
	assert.Equal(t, 100, cfg.Database.Vector.Indexing.EfConstruct)
	assert.Equal(t, 10000, cfg.Database.Vector.Indexing.FullScanThreshold)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigMissing, apperrors.CodeOf(err))
}

func TestLoadMissingRequiredKeys(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  vector_db:
    main:
      url: http://localhost:6333
`))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigMissing, apperrors.CodeOf(err))

	_, err = Load(writeConfig(t, `
database:
  relational_db:
    url: postgres://svc:pw@db:5432/tickets
`))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigMissing, apperrors.CodeOf(err))
}

func TestLoadBadSeedDate(t *testing.T) {
	_, err := Load(writeConfig(t, `
database:
  relational_db:
    url: postgres://svc:pw@db:5432/tickets
  vector_db:
    main:
      url: http://localhost:6333
      date_from: "14.11.2025"
`))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigMissing, apperrors.CodeOf(err))
}

func TestSeedDate(t *testing.T) {
	cfg, err := Load(writeConfig(t, fullConfig))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local), cfg.SeedDate())
}
