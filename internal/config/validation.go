package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags.
//
// Target-specific requirements are checked separately by ValidateUpload,
// since only the upload command needs them.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateUpload checks that the selected upload target and ledger are
// fully configured.
func ValidateUpload(cfg *UploadConfig) error {
	switch cfg.Target {
	case "local":
		if cfg.Local.Dir == "" {
			return errors.New("upload.local.dir: required for target local")
		}
	case "s3":
		if cfg.S3.Bucket == "" {
			return errors.New("upload.s3.bucket: required for target s3")
		}
	case "minio":
		if cfg.MinIO.Endpoint == "" || cfg.MinIO.Bucket == "" {
			return errors.New("upload.minio: endpoint and bucket are required for target minio")
		}
	}

	switch cfg.Ledger.Type {
	case "badger":
		if cfg.Ledger.Badger.DBPath == "" {
			return errors.New("upload.ledger.badger.db_path: required for ledger badger")
		}
	case "dynamodb":
		if cfg.Ledger.DynamoDB.Table == "" {
			return errors.New("upload.ledger.dynamodb.table: required for ledger dynamodb")
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
