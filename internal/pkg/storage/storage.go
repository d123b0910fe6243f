package storage

import (
	"context"
	"io"
	"time"
)

// Storage abstracts the media object store.
type Storage interface {
	// Upload stores a file server-side and returns its URL.
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Download returns the file contents.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetPresignedUploadURL returns a URL for direct client upload.
	GetPresignedUploadURL(ctx context.Context, key string, contentType string, expiresIn time.Duration) (string, error)

	// GetPresignedDownloadURL returns a temporary download URL.
	GetPresignedDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)

	// Delete removes a file.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the file exists.
	Exists(ctx context.Context, key string) (bool, error)

	// GetFileInfo returns file metadata.
	GetFileInfo(ctx context.Context, key string) (*FileInfo, error)

	// GetStorageType returns the backend type.
	GetStorageType() string
}

// FileInfo is object metadata.
type FileInfo struct {
	Key          string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
}

// StorageType identifies a backend.
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeOSS   StorageType = "oss"
)
