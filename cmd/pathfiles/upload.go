package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"

	"github.com/hupe1980/pathfiles"
	"github.com/hupe1980/pathfiles/blobstore"
	"github.com/hupe1980/pathfiles/blobstore/minio"
	"github.com/hupe1980/pathfiles/blobstore/s3"
	"github.com/hupe1980/pathfiles/internal/config"
	"github.com/hupe1980/pathfiles/ledger"
	"github.com/hupe1980/pathfiles/ledger/badger"
	"github.com/hupe1980/pathfiles/ledger/dynamo"
	"github.com/hupe1980/pathfiles/upload"
)

func newUploadCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload ROOT",
		Short: "Upload every regular file under ROOT to a directory, S3 or MinIO",
		Long: `upload streams every file under ROOT into the configured target. With a
ledger configured, files already uploaded with the same size are skipped,
so an interrupted upload resumes where it stopped.`,
		Args: cobra.ExactArgs(1),
		Example: `  pathfiles upload /srv/data --target local --dir /backup
  pathfiles upload /srv/data --target s3 --bucket backups --key-prefix nightly --ledger badger --ledger-path ~/.pathfiles/ledger`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			uc := a.cfg.Upload

			if err := config.ValidateUpload(&uc); err != nil {
				return err
			}

			store, err := newStore(ctx, uc)
			if err != nil {
				return err
			}

			l, err := newLedger(ctx, uc)
			if err != nil {
				return err
			}
			if l != nil {
				defer l.Close()
			}

			t, err := a.walker().Enumerate(ctx, args[0])
			if err != nil {
				return err
			}

			bar := newProgress(cmd.ErrOrStderr(), "uploading")

			u := &upload.Uploader{
				Store:   store,
				Ledger:  l,
				Workers: a.cfg.Walk.Workers,
				Logger:  a.logger,
				OnFile: func(*pathfiles.File, bool, error) {
					_ = bar.Add(1)
				},
			}

			res, err := u.Run(ctx, t)
			_ = bar.Finish()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "uploaded %d files (%s) to %s, %d unchanged, %d failed, %d skipped\n",
				res.Processed.GetCardinality()-res.Unchanged.GetCardinality(),
				humanize.IBytes(uint64(res.Bytes)), targetScope(uc),
				res.Unchanged.GetCardinality(), res.Failed.GetCardinality(), len(t.Skipped()))

			if err := res.Err(); err != nil {
				return err
			}
			return finish(t)
		},
	}

	f := cmd.Flags()
	f.String("target", "", "upload target (local, s3, minio)")
	f.String("dir", "", "target directory for --target local")
	f.String("bucket", "", "bucket for --target s3 or minio")
	f.String("key-prefix", "", "key prefix inside the bucket")
	f.String("ledger", "", "resume ledger (none, memory, badger, dynamodb)")
	f.String("ledger-path", "", "database directory for --ledger badger")
	f.String("ledger-table", "", "table name for --ledger dynamodb")

	return cmd
}

// targetScope identifies the upload target. It partitions shared ledger
// entries so that one table can serve several targets.
func targetScope(cfg config.UploadConfig) string {
	switch cfg.Target {
	case "s3":
		return "s3://" + cfg.S3.Bucket + "/" + cfg.S3.Prefix
	case "minio":
		return "minio://" + cfg.MinIO.Endpoint + "/" + cfg.MinIO.Bucket + "/" + cfg.MinIO.Prefix
	default:
		return "file://" + cfg.Local.Dir
	}
}

func newStore(ctx context.Context, cfg config.UploadConfig) (blobstore.Store, error) {
	switch cfg.Target {
	case "local":
		return blobstore.NewLocalStore(cfg.Local.Dir), nil
	case "s3":
		awsCfg, err := loadAWSConfig(ctx, cfg.S3.Region)
		if err != nil {
			return nil, err
		}

		client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
			if cfg.S3.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.S3.Endpoint)
				o.UsePathStyle = true
			}
		})

		upCfg := s3.DefaultUploadConfig()
		if cfg.S3.PartSize > 0 {
			upCfg.PartSize = cfg.S3.PartSize
		}
		if cfg.S3.Concurrency > 0 {
			upCfg.Concurrency = cfg.S3.Concurrency
		}
		upCfg.EnableChecksum = !cfg.S3.DisableChecksum

		return s3.NewStoreWithConfig(client, cfg.S3.Bucket, cfg.S3.Prefix, upCfg), nil
	case "minio":
		creds := credentials.NewEnvMinio()
		if cfg.MinIO.AccessKey != "" {
			creds = credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, "")
		}

		client, err := miniogo.New(cfg.MinIO.Endpoint, &miniogo.Options{
			Creds:  creds,
			Secure: cfg.MinIO.Secure,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}

		return minio.NewStore(client, cfg.MinIO.Bucket, cfg.MinIO.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown upload target %q", cfg.Target)
	}
}

func newLedger(ctx context.Context, cfg config.UploadConfig) (ledger.Ledger, error) {
	switch cfg.Ledger.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return ledger.NewMemory(), nil
	case "badger":
		l, err := badger.Open(ctx, badger.Config{DBPath: cfg.Ledger.Badger.DBPath})
		if err != nil {
			return nil, err
		}
		return l, nil
	case "dynamodb":
		awsCfg, err := loadAWSConfig(ctx, cfg.Ledger.DynamoDB.Region)
		if err != nil {
			return nil, err
		}
		return dynamo.New(dynamodb.NewFromConfig(awsCfg), cfg.Ledger.DynamoDB.Table, targetScope(cfg)), nil
	default:
		return nil, fmt.Errorf("unknown ledger type %q", cfg.Ledger.Type)
	}
}

func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return awsCfg, nil
}
