package models

import (
	"time"
)

// ComparisonReport represents the result of reconciling two folders
type ComparisonReport struct {
	OperationID   string
	SourcePath    string
	DestPath      string
	ExcludeExtras bool

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Counts of immediate files in each folder
	SourceFiles int
	DestFiles   int

	// Excluded lists source files dropped by the filter
	Excluded []FileEntry

	// Missing lists source files with no same-named file in the destination
	Missing []FileEntry
}

// MissingNames returns the bare names of the missing files
func (r *ComparisonReport) MissingNames() []string {
	names := make([]string, len(r.Missing))
	for i, entry := range r.Missing {
		names[i] = entry.Name
	}
	return names
}

// MissingPaths returns the full source paths of the missing files
func (r *ComparisonReport) MissingPaths() []string {
	paths := make([]string, len(r.Missing))
	for i, entry := range r.Missing {
		paths[i] = entry.Path
	}
	return paths
}

// MissingBytes returns the total size of the missing files
func (r *ComparisonReport) MissingBytes() int64 {
	var total int64
	for _, entry := range r.Missing {
		total += entry.Size
	}
	return total
}

// Status returns the overall outcome of the comparison
func (r *ComparisonReport) Status() Status {
	if len(r.Missing) > 0 {
		return StatusMissing
	}
	return StatusSuccess
}

// PurgeResult describes what a purge removed
type PurgeResult struct {
	PurgeID string
	Path    string
	Verdict DriveVerdict

	StartTime time.Time
	EndTime   time.Time

	// Deleted lists the files removed, in deletion order
	Deleted      []FileEntry
	BytesDeleted int64

	// DirectoryRemoved is true when the folder itself was deleted
	DirectoryRemoved bool
	// Subdirectories is the number of child folders that kept the folder in place
	Subdirectories int
}

// Status represents the overall result of a command
type Status string

const (
	// StatusSuccess indicates everything is present or was deleted
	StatusSuccess Status = "success"
	// StatusMissing indicates some source files are absent from the destination
	StatusMissing Status = "missing"
	// StatusFailed indicates the operation failed
	StatusFailed Status = "failed"
	// StatusCancelled indicates the user declined a confirmation
	StatusCancelled Status = "cancelled"
)

// ExitCode returns the appropriate exit code for the status
func (s Status) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusMissing:
		return 1
	case StatusFailed:
		return 2
	case StatusCancelled:
		return 3
	default:
		return 2
	}
}
