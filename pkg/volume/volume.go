// Package volume enumerates mounted volumes and tells removable media
// apart from fixed disks.
package volume

import (
	"path/filepath"
	"runtime"
	"strings"
)

// Volume is a mounted filesystem root
type Volume struct {
	// Root is the mount point or drive root, e.g. "/media/user/SD" or "E:\"
	Root string
	// Device is the backing device when known, e.g. "/dev/mmcblk0p1"
	Device string
	// FSType is the filesystem type when known
	FSType string
	// Removable is true for removable media such as SD cards and USB sticks
	Removable bool
}

// Enumerator lists the volumes known to the system
type Enumerator interface {
	ListVolumes() ([]Volume, error)
}

// Static is an Enumerator over a fixed list, used in tests and dry runs
type Static []Volume

// ListVolumes returns the fixed list
func (s Static) ListVolumes() ([]Volume, error) {
	return append([]Volume(nil), s...), nil
}

// EnumeratorFunc adapts a function to the Enumerator interface
type EnumeratorFunc func() ([]Volume, error)

// ListVolumes calls f
func (f EnumeratorFunc) ListVolumes() ([]Volume, error) {
	return f()
}

// Resolve returns the volume whose root is the longest prefix of path.
// When two volumes share a root the later one wins, as a later mount hides
// an earlier one on the same mount point. path must be absolute and clean.
// The bool is false when no volume matches.
func Resolve(volumes []Volume, path string) (Volume, bool) {
	var best Volume
	found := false

	for _, v := range volumes {
		if v.Root == "" || !contains(v.Root, path) {
			continue
		}
		if !found || len(cleanRoot(v.Root)) >= len(cleanRoot(best.Root)) {
			best = v
			found = true
		}
	}

	return best, found
}

// contains reports whether path is root itself or lies below it
func contains(root, path string) bool {
	root = cleanRoot(root)
	path = filepath.Clean(path)

	if runtime.GOOS == "windows" {
		root = strings.ToLower(root)
		path = strings.ToLower(path)
	}

	if path == root {
		return true
	}
	if strings.HasSuffix(root, string(filepath.Separator)) {
		return strings.HasPrefix(path, root)
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// cleanRoot cleans a root while keeping the trailing separator of "/" and "E:\"
func cleanRoot(root string) string {
	cleaned := filepath.Clean(root)
	if vol := filepath.VolumeName(cleaned); vol != "" && cleaned == vol {
		return vol + string(filepath.Separator)
	}
	return cleaned
}
