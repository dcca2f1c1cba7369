// Package config loads the pathfiles command configuration from a YAML
// file, PATHFILES_* environment variables and command-line flags.
//
// Precedence, highest first: flags set on the command line, environment,
// config file, defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the complete command configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`

	Walk WalkConfig `mapstructure:"walk"`

	Archive ArchiveConfig `mapstructure:"archive"`

	Upload UploadConfig `mapstructure:"upload"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR"`

	Format string `mapstructure:"format" validate:"required,oneof=text json"`
}

// WalkConfig controls traversal and streaming.
type WalkConfig struct {
	// Capacity is the descriptor budget. 0 derives it from the process limit.
	Capacity int64 `mapstructure:"capacity" validate:"gte=0"`

	Prefix string `mapstructure:"prefix"`

	ChunkSize int `mapstructure:"chunk_size" validate:"gte=0"`

	// ReadLimit throttles reads in bytes per second. 0 disables it.
	ReadLimit int64 `mapstructure:"read_limit" validate:"gte=0"`

	// Workers bounds concurrent per-file work. 0 means one goroutine per file.
	Workers int `mapstructure:"workers" validate:"gte=0"`

	SkipHidden bool `mapstructure:"skip_hidden"`

	NoFollowSymlinks bool `mapstructure:"no_follow_symlinks"`

	GitIgnore string `mapstructure:"gitignore"`

	Ignore []string `mapstructure:"ignore"`
}

// ArchiveConfig controls the archive command.
type ArchiveConfig struct {
	Compression string `mapstructure:"compression" validate:"oneof=none lz4 zstd"`

	Level int `mapstructure:"level" validate:"gte=0,lte=22"`

	Codec string `mapstructure:"codec" validate:"oneof=json go-json"`
}

// UploadConfig controls the upload command.
type UploadConfig struct {
	Target string `mapstructure:"target" validate:"oneof=local s3 minio"`

	Local LocalConfig `mapstructure:"local"`

	S3 S3Config `mapstructure:"s3"`

	MinIO MinIOConfig `mapstructure:"minio"`

	Ledger LedgerConfig `mapstructure:"ledger"`
}

// LocalConfig configures the directory target.
type LocalConfig struct {
	Dir string `mapstructure:"dir"`
}

// S3Config configures the S3 target.
type S3Config struct {
	Bucket string `mapstructure:"bucket"`

	Prefix string `mapstructure:"prefix"`

	Region string `mapstructure:"region"`

	// Endpoint overrides the S3 endpoint (LocalStack, custom gateways).
	Endpoint string `mapstructure:"endpoint" validate:"omitempty,url"`

	PartSize int64 `mapstructure:"part_size" validate:"omitempty,gte=5242880"`

	Concurrency int `mapstructure:"concurrency" validate:"gte=0"`

	DisableChecksum bool `mapstructure:"disable_checksum"`
}

// MinIOConfig configures the MinIO target.
type MinIOConfig struct {
	Endpoint string `mapstructure:"endpoint"`

	AccessKey string `mapstructure:"access_key"`

	SecretKey string `mapstructure:"secret_key"`

	Bucket string `mapstructure:"bucket"`

	Prefix string `mapstructure:"prefix"`

	Secure bool `mapstructure:"secure"`
}

// LedgerConfig configures upload resume state.
type LedgerConfig struct {
	Type string `mapstructure:"type" validate:"oneof=none memory badger dynamodb"`

	Badger BadgerConfig `mapstructure:"badger"`

	DynamoDB DynamoDBConfig `mapstructure:"dynamodb"`
}

// BadgerConfig configures the badger ledger.
type BadgerConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// DynamoDBConfig configures the DynamoDB ledger.
type DynamoDBConfig struct {
	Table string `mapstructure:"table"`

	Region string `mapstructure:"region"`
}

// FlagBinding maps a command-line flag onto a configuration key.
type FlagBinding struct {
	Key  string
	Flag *pflag.Flag
}

// Load reads configuration from configPath (or the default location when
// empty), the environment and the given flags, then applies defaults and
// validates the result.
func Load(configPath string, flags ...FlagBinding) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	for _, b := range flags {
		if b.Flag == nil {
			continue
		}
		if err := v.BindPFlag(b.Key, b.Flag); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", b.Flag.Name, err)
		}
	}

	if err := readConfigFile(v, configPath); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("PATHFILES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	registerKeys(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

func readConfigFile(v *viper.Viper, configPath string) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && configPath == "" {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "pathfiles")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "pathfiles")
}

// GetDefaultConfigPath returns the path searched when no config file is given.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
