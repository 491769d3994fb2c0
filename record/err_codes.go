package record

// Error codes for file record operations.
const (
	// CodeFileNotFound is returned when no record matches the requested key.
	CodeFileNotFound = "FILE_NOT_FOUND"

	// CodeDuplicateFile is returned when a write collides with an
	// existing (institution, kind, name) record.
	CodeDuplicateFile = "DUPLICATE_FILE"
)

// UniqueFileConstraint is the database constraint backing the duplicate
// guard. Migrations must keep this name in sync.
const UniqueFileConstraint = "uq_file_records_institution_kind_name"
