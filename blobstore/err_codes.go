package blobstore

// Error codes for blobstore operations.
const (
	// CodeBlobNotFound is returned when no artifact exists at the specified path.
	CodeBlobNotFound = "BLOB_NOT_FOUND"

	// CodeInvalidPath is returned when a path escapes the store root
	// or is otherwise malformed.
	CodeInvalidPath = "INVALID_BLOB_PATH"
)
