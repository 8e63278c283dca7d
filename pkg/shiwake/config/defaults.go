package config

// Default configuration values.
const (
	// DefaultConflictPolicy decides what happens when a destination path is
	// already occupied.
	DefaultConflictPolicy = "rename"

	// DefaultOperation applies to files sent to the default destination.
	DefaultOperation = "copy"

	// DefaultPreview makes every run a dry run unless --apply is given.
	DefaultPreview = true

	// DefaultWorkers is the number of concurrent per-file workers.
	DefaultWorkers = 4

	// DefaultRetentionDays is how long history entries are kept.
	DefaultRetentionDays = 30
)
