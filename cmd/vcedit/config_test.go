package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vcedit.yaml")
	doc := `
map: maps/gwm.json
type: text
projectProperty: PRJ
logs:
  file: /var/log/vcedit.log
  maxSizeMB: 10
  compress: true
audit:
  path: audit/changes.cbor
report:
  pdf: out/report.pdf
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := loadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "maps", "gwm.json"), cfg.Map)
	assert.Equal(t, "text", cfg.Type)
	assert.Equal(t, "PRJ", cfg.ProjectProperty)
	assert.Equal(t, "/var/log/vcedit.log", cfg.Logs.File)
	assert.Equal(t, 10, cfg.Logs.MaxSizeMB)
	assert.Equal(t, 30, cfg.Logs.MaxAgeDays)
	assert.True(t, cfg.Logs.Compress)
	assert.Equal(t, filepath.Join(dir, "audit", "changes.cbor"), cfg.Audit.Path)
	assert.Equal(t, "cbor", cfg.Audit.Format)
	assert.Equal(t, filepath.Join(dir, "out", "report.pdf"), cfg.Report.PDF)
	assert.Empty(t, cfg.Report.JSON)
}

func TestLoadSettingsEmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vcedit.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	cfg, err := loadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, defaultSettings(), cfg)
	assert.Equal(t, "map.json", cfg.Map)
	assert.Equal(t, "binary", cfg.Type)
	assert.Equal(t, "AAA", cfg.ProjectProperty)
}

func TestLoadSettingsRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vcedit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mapp: typo.json\n"), 0o644))
	_, err := loadSettings(path)
	require.Error(t, err)
}

func TestResolveSettingsExplicitMissing(t *testing.T) {
	_, _, err := resolveSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
