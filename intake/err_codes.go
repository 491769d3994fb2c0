package intake

// Error codes of the intake pipeline. Codes for missing and duplicate
// records live in the record package next to the constraint that
// enforces them.
const (
	// CodeInvalidFileType rejects content types outside the accepted
	// geo and image sets.
	CodeInvalidFileType = "INVALID_FILE_TYPE"

	// CodeEmptyFile rejects uploads with no content.
	CodeEmptyFile = "EMPTY_FILE"

	// CodeInvalidFileName rejects names that are empty, have no
	// extension, or would escape the derived storage path.
	CodeInvalidFileName = "INVALID_FILE_NAME"

	// CodeFileTypeMismatch rejects updates whose content classifies
	// into a different kind than the stored record.
	CodeFileTypeMismatch = "FILE_TYPE_MISMATCH"

	// CodeFileArtifactMissing signals a record whose artifact is gone:
	// an integrity fault, not a plain not-found.
	CodeFileArtifactMissing = "FILE_ARTIFACT_MISSING"

	// CodeStorageIOFailure signals a failed storage backend operation.
	CodeStorageIOFailure = "STORAGE_IO_FAILURE"
)
