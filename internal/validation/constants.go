package validation

const (
	// Password requirements
	MinPasswordLength = 8
	MaxPasswordLength = 72

	// String lengths
	MaxNameLength        = 100
	MaxReasonLength      = 500
	MaxDescriptionLength = 2000

	// Bulk operations
	MaxBulkIDs = 100
)
