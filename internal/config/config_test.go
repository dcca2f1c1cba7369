package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, int64(0), cfg.Walk.Capacity)
	assert.Equal(t, "zstd", cfg.Archive.Compression)
	assert.Equal(t, "go-json", cfg.Archive.Codec)
	assert.Equal(t, "local", cfg.Upload.Target)
	assert.Equal(t, "none", cfg.Upload.Ledger.Type)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
walk:
  capacity: 64
  prefix: /data
  skip_hidden: true
  ignore:
    - "*.tmp"
    - build/
archive:
  compression: lz4
upload:
  target: s3
  s3:
    bucket: backups
    prefix: nightly
  ledger:
    type: badger
    badger:
      db_path: /var/lib/pathfiles
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, int64(64), cfg.Walk.Capacity)
	assert.Equal(t, "/data", cfg.Walk.Prefix)
	assert.True(t, cfg.Walk.SkipHidden)
	assert.Equal(t, []string{"*.tmp", "build/"}, cfg.Walk.Ignore)
	assert.Equal(t, "lz4", cfg.Archive.Compression)
	assert.Equal(t, "s3", cfg.Upload.Target)
	assert.Equal(t, "backups", cfg.Upload.S3.Bucket)
	assert.Equal(t, "badger", cfg.Upload.Ledger.Type)
	require.NoError(t, ValidateUpload(&cfg.Upload))
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
walk:
  capacity: 64
`)
	t.Setenv("PATHFILES_WALK_CAPACITY", "128")
	t.Setenv("PATHFILES_UPLOAD_LOCAL_DIR", "/tmp/out")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(128), cfg.Walk.Capacity)
	assert.Equal(t, "/tmp/out", cfg.Upload.Local.Dir)
}

func TestLoadFlagOverride(t *testing.T) {
	path := writeConfig(t, `
walk:
  capacity: 64
  prefix: /data
`)
	t.Setenv("PATHFILES_WALK_CAPACITY", "128")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int64("capacity", 0, "")
	flags.String("prefix", "", "")
	require.NoError(t, flags.Parse([]string{"--capacity=32"}))

	cfg, err := Load(path,
		FlagBinding{Key: "walk.capacity", Flag: flags.Lookup("capacity")},
		FlagBinding{Key: "walk.prefix", Flag: flags.Lookup("prefix")},
		FlagBinding{Key: "walk.workers", Flag: flags.Lookup("missing")},
	)
	require.NoError(t, err)

	assert.Equal(t, int64(32), cfg.Walk.Capacity)
	// Unchanged flags do not shadow the file.
	assert.Equal(t, "/data", cfg.Walk.Prefix)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "walk: [unclosed")

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"negative capacity", "walk:\n  capacity: -1\n", "Capacity"},
		{"bad compression", "archive:\n  compression: gzip\n", "Compression"},
		{"bad level", "archive:\n  level: 40\n", "Level"},
		{"bad target", "upload:\n  target: ftp\n", "Target"},
		{"bad ledger", "upload:\n  ledger:\n    type: redis\n", "Type"},
		{"bad log format", "logging:\n  format: xml\n", "Format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidateUpload(t *testing.T) {
	tests := []struct {
		name    string
		cfg     UploadConfig
		wantErr bool
	}{
		{"local ok", UploadConfig{Target: "local", Local: LocalConfig{Dir: "/out"}, Ledger: LedgerConfig{Type: "none"}}, false},
		{"local missing dir", UploadConfig{Target: "local", Ledger: LedgerConfig{Type: "none"}}, true},
		{"s3 missing bucket", UploadConfig{Target: "s3", Ledger: LedgerConfig{Type: "none"}}, true},
		{"minio missing endpoint", UploadConfig{Target: "minio", MinIO: MinIOConfig{Bucket: "b"}, Ledger: LedgerConfig{Type: "none"}}, true},
		{"minio ok", UploadConfig{Target: "minio", MinIO: MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}, Ledger: LedgerConfig{Type: "memory"}}, false},
		{"badger missing path", UploadConfig{Target: "local", Local: LocalConfig{Dir: "/out"}, Ledger: LedgerConfig{Type: "badger"}}, true},
		{"dynamodb missing table", UploadConfig{Target: "local", Local: LocalConfig{Dir: "/out"}, Ledger: LedgerConfig{Type: "dynamodb"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUpload(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetDefaultConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	assert.Equal(t, filepath.Join(dir, "pathfiles", "config.yaml"), GetDefaultConfigPath())
}
