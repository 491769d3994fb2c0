// Package blobstore provides an abstraction for artifact storage operations.
//
// It defines a Store interface that can be implemented by various
// backends (e.g., local filesystem, MinIO). The interface is designed
// to be injected into components that persist or serve file artifacts.
package blobstore

import (
	"context"
	"io"
	"time"

	"github.com/code19m/errx"
)

// Store defines the interface for artifact storage operations.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put writes the artifact at the specified path, replacing any
	// existing artifact atomically. The implementation detects size
	// and content type from the reader.
	Put(ctx context.Context, path string, reader io.Reader) (*ObjectInfo, error)

	// Get retrieves an artifact and its metadata from the specified path.
	// The caller is responsible for closing Object.Content.
	Get(ctx context.Context, path string) (*Object, error)

	// Delete removes the artifact at the specified path.
	// Deleting a missing artifact fails with CodeBlobNotFound.
	Delete(ctx context.Context, path string) error

	// Exists checks if an artifact exists at the specified path.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the paths of all stored artifacts under the given
	// prefix. An empty prefix lists the whole store.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Object represents a stored artifact with its content and metadata.
type Object struct {
	Content io.ReadCloser
	Info    ObjectInfo
}

// ObjectInfo contains metadata about a stored artifact.
type ObjectInfo struct {
	Path         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// IsNotFound reports whether err indicates a missing artifact.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errx.IsCodeIn(err, CodeBlobNotFound)
}
