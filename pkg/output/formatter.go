package output

import (
	"fmt"
	"io"

	"github.com/sdejongh/sdverify/pkg/journal"
	"github.com/sdejongh/sdverify/pkg/models"
	"github.com/sdejongh/sdverify/pkg/volume"
)

// FolderCount is the number of immediate files in one selected folder
type FolderCount struct {
	Side  models.Side
	Path  string
	Files int
	Bytes int64
	Err   error
}

// Formatter defines the interface for command output
// Implementations include human-readable and JSON formatters
type Formatter interface {
	// Counts prints per-folder file counts
	Counts(w io.Writer, counts []FolderCount) error

	// Comparison prints the result of a reconciliation
	Comparison(w io.Writer, report *models.ComparisonReport) error

	// Purge prints what a purge removed, with the error that stopped it if any
	Purge(w io.Writer, result *models.PurgeResult, err error) error

	// Volumes prints the known volumes
	Volumes(w io.Writer, volumes []volume.Volume) error

	// History prints journaled purges
	History(w io.Writer, records []journal.PurgeRecord) error

	// PurgedFiles prints journaled file deletions
	PurgedFiles(w io.Writer, records []journal.FileRecord) error

	// Error prints a command error
	Error(w io.Writer, err error) error

	// Name returns the formatter name
	Name() string
}

// NewFormatter returns the formatter registered under name
func NewFormatter(name string, color bool) (Formatter, error) {
	switch name {
	case "human", "":
		return NewHumanFormatter(color), nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, &models.ValidationError{
			Field:   "output",
			Message: fmt.Sprintf("unknown format %q, must be 'human' or 'json'", name),
		}
	}
}
