// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client to provide a simplified interface for the
// operations the stocktake manager needs: reading vendor import objects
// (theoretical export, barcode mapping table) and writing finished DAT export
// artifacts. The abstraction supports both AWS S3 and self-hosted MinIO.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easy to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "stocktake")
package storage
