package models

import (
	"time"
)

// FileEntry represents a regular file found directly inside a folder
type FileEntry struct {
	// Name is the bare file name, used for comparison
	Name string

	// Path is the absolute path on the filesystem, used for deletion
	Path string

	// Size in bytes
	Size int64

	// ModTime is the last modification time
	ModTime time.Time
}

// Side identifies which of the two selected folders a value refers to
type Side string

const (
	// SideSource is the removable-media folder being verified
	SideSource Side = "source"
	// SideDestination is the backup folder used as baseline
	SideDestination Side = "destination"
)

// Label returns the user-facing name of the side
func (s Side) Label() string {
	switch s {
	case SideSource:
		return "SD card (source)"
	case SideDestination:
		return "hard drive (destination)"
	default:
		return string(s)
	}
}
