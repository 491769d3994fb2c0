package institution

// Error codes for institution operations.
const (
	// CodeInstitutionNotFound is returned when no institution matches the given id.
	CodeInstitutionNotFound = "INSTITUTION_NOT_FOUND"

	// CodeInstitutionExists is returned when an institution with the
	// same name already exists.
	CodeInstitutionExists = "INSTITUTION_ALREADY_EXISTS"

	// CodeContributorEmailTaken is returned when another institution
	// already registered the contributor email.
	CodeContributorEmailTaken = "CONTRIBUTOR_EMAIL_TAKEN"

	// CodeInstitutionNotEmpty is returned when deleting an institution
	// that still owns file records.
	CodeInstitutionNotEmpty = "INSTITUTION_NOT_EMPTY"
)

// Database constraints backing the codes above. Migrations must keep
// these names in sync.
const (
	UniqueNameConstraint  = "uq_institutions_name"
	UniqueEmailConstraint = "uq_institutions_contributor_email"
	FileRecordsFKRef      = "fk_file_records_institution"
)
