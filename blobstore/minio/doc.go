// Package minio implements blobstore.Store on MinIO and other
// S3-compatible object stores.
//
// # Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
//		Secure: false,
//	})
//	store := minioblob.NewStore(client, "backups", "host-a/")
//
// Puts with a known size are sent in a single request below the client's
// part size; unknown sizes (-1) stream as multipart uploads.
package minio
