package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"gridfs-manager/core/config"
	"gridfs-manager/core/gridfs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "mongo", cfg.GridFS.Engine)
	assert.Equal(t, 261120, cfg.GridFS.ChunkSizeBytes)
	assert.Equal(t, 4, cfg.GridFS.FetchConcurrency)
	assert.Empty(t, cfg.GridFS.BucketNames)
	assert.Empty(t, cfg.GridFS.Indexes)
	assert.Equal(t, "gridfs", cfg.Storage.Bucket)
	assert.Equal(t, 16, cfg.Storage.PartSizeMB)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: "9000"
gridfs:
  engine: memory
  bucket_names: [avatars, client-files]
  indexes:
    - bucket_name: client-files
      properties: [clientId, position]
      filename: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.GridFS.Engine)
	assert.Equal(t, []string{"avatars", "client-files"}, cfg.GridFS.BucketNames)
	assert.Equal(t, []gridfs.IndexSpec{
		{BucketName: "client-files", Properties: []string{"clientId", "position"}, Filename: true},
	}, cfg.GridFS.Indexes)
	assert.NoError(t, cfg.GridFS.Validate())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: \"9000\"\n"), 0o644))

	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("GRIDFS_BUCKET_NAMES", "a,b")

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, []string{"a", "b"}, cfg.GridFS.BucketNames)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("gridfs: [unclosed"), 0o644))

	_, err := config.LoadConfig(dir)
	assert.Error(t, err)
}
