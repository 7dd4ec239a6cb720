package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	doc := `semanticThreshold: 0.5
allowOrphans: false
maxVariantsPerSample: 4
strategies: [1, 3, 7]
preserveCriticalPath: true
workers: 8
storePath: corpus.kuzu
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "planweave.yml"), []byte(doc), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Threshold())
	assert.False(t, cfg.Orphans())
	assert.Equal(t, 4, cfg.MaxVariants())
	assert.Equal(t, []int{1, 3, 7}, cfg.Strategies)
	assert.True(t, cfg.PreserveCriticalPath)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "corpus.kuzu", cfg.StorePath)
}

func TestLoad_YamlExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "planweave.yaml"), []byte("workers: 2\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "planweave.yml"), []byte("workers: [oops\n"), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestDefaults(t *testing.T) {
	var cfg ProjectConfig
	assert.Equal(t, 0.3, cfg.Threshold())
	assert.True(t, cfg.Orphans())
	assert.Equal(t, 10, cfg.MaxVariants())
}
