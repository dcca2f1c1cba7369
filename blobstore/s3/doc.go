// Package s3 implements blobstore.Store on Amazon S3.
//
// Uploads stream through the SDK's multipart upload manager, so files of
// any size are sent without buffering them whole. Every object is written
// with the CRC32C checksum algorithm; S3 verifies the checksum of each part
// on receipt.
//
// Construct a client with the default credential chain:
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "bucket", "backups/")
package s3
