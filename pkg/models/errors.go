package models

import (
	"fmt"
	"strings"
)

// SelectionError reports every folder that has not been selected
type SelectionError struct {
	Sides []Side
}

// Messages returns one line per unselected folder
func (e *SelectionError) Messages() []string {
	msgs := make([]string, 0, len(e.Sides))
	for _, side := range e.Sides {
		msgs = append(msgs, fmt.Sprintf("No %s folder was selected.", side.Label()))
	}
	return msgs
}

func (e *SelectionError) Error() string {
	return strings.Join(e.Messages(), "\n")
}

// Has reports whether the given side is missing
func (e *SelectionError) Has(side Side) bool {
	for _, s := range e.Sides {
		if s == side {
			return true
		}
	}
	return false
}

// CheckSelection returns a SelectionError listing every empty path, or nil
func CheckSelection(sourcePath, destPath string) error {
	var missing []Side
	if strings.TrimSpace(sourcePath) == "" {
		missing = append(missing, SideSource)
	}
	if strings.TrimSpace(destPath) == "" {
		missing = append(missing, SideDestination)
	}
	if len(missing) == 0 {
		return nil
	}
	return &SelectionError{Sides: missing}
}

// DirectoryAccessError is returned when a folder is missing, unreadable or not a directory
type DirectoryAccessError struct {
	Side Side
	Path string
	Err  error
}

func (e *DirectoryAccessError) Error() string {
	if e.Side == "" {
		return fmt.Sprintf("cannot access folder %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("cannot access %s folder %s: %v", e.Side, e.Path, e.Err)
}

func (e *DirectoryAccessError) Unwrap() error {
	return e.Err
}

// DeletionError is returned when a purge stops on a file it could not remove.
// Files deleted before the failure stay deleted.
type DeletionError struct {
	Path    string
	Deleted int
	Err     error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("failed to delete %s after removing %d files: %v", e.Path, e.Deleted, e.Err)
}

func (e *DeletionError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
