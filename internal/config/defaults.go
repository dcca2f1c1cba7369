package config

import (
	"strings"

	"github.com/spf13/viper"
)

// keys lists every configuration key so that environment variables
// resolve even when no config file mentions them.
var keys = []string{
	"logging.level",
	"logging.format",
	"walk.capacity",
	"walk.prefix",
	"walk.chunk_size",
	"walk.read_limit",
	"walk.workers",
	"walk.skip_hidden",
	"walk.no_follow_symlinks",
	"walk.gitignore",
	"walk.ignore",
	"archive.compression",
	"archive.level",
	"archive.codec",
	"upload.target",
	"upload.local.dir",
	"upload.s3.bucket",
	"upload.s3.prefix",
	"upload.s3.region",
	"upload.s3.endpoint",
	"upload.s3.part_size",
	"upload.s3.concurrency",
	"upload.s3.disable_checksum",
	"upload.minio.endpoint",
	"upload.minio.access_key",
	"upload.minio.secret_key",
	"upload.minio.bucket",
	"upload.minio.prefix",
	"upload.minio.secure",
	"upload.ledger.type",
	"upload.ledger.badger.db_path",
	"upload.ledger.dynamodb.table",
	"upload.ledger.dynamodb.region",
}

func registerKeys(v *viper.Viper) {
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			panic(err)
		}
	}
}

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Zero values are replaced with defaults; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyArchiveDefaults(&cfg.Archive)
	applyUploadDefaults(&cfg.Upload)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
}

func applyArchiveDefaults(cfg *ArchiveConfig) {
	if cfg.Compression == "" {
		cfg.Compression = "zstd"
	}
	if cfg.Codec == "" {
		cfg.Codec = "go-json"
	}
}

func applyUploadDefaults(cfg *UploadConfig) {
	if cfg.Target == "" {
		cfg.Target = "local"
	}
	if cfg.Ledger.Type == "" {
		cfg.Ledger.Type = "none"
	}
	if cfg.Ledger.DynamoDB.Region == "" {
		cfg.Ledger.DynamoDB.Region = cfg.S3.Region
	}
}
