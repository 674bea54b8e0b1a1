// Package storage uploads post images to the configured blob backend.
package storage

import (
	"context"
	"mime/multipart"
)

// BlobStore writes an uploaded file under path and returns the blob URL
// that is later signed with an access credential. Delete removes the blob
// written under path.
type BlobStore interface {
	UploadFile(ctx context.Context, file *multipart.FileHeader, path string) (string, error)
	Delete(ctx context.Context, path string) error
}

var (
	_ BlobStore = (*LocalStorage)(nil)
	_ BlobStore = (*S3Client)(nil)
	_ BlobStore = (*GCSClient)(nil)
)
