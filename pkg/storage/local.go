package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sdejongh/sdverify/pkg/models"
)

// Local is a filesystem-based storage backend
type Local struct {
	deleter Deleter
}

// NewLocal creates a new local filesystem backend
func NewLocal() *Local {
	return &Local{deleter: OSDeleter{}}
}

// NewLocalWithDeleter creates a local backend that removes files through d
func NewLocalWithDeleter(d Deleter) *Local {
	if d == nil {
		d = OSDeleter{}
	}
	return &Local{deleter: d}
}

// ListFiles returns the regular files directly inside path, sorted by name.
// Symlinks are followed; links to directories and dangling links are skipped.
func (l *Local) ListFiles(path string) ([]models.FileEntry, error) {
	absPath, entries, err := readDir(path)
	if err != nil {
		return nil, err
	}

	files := make([]models.FileEntry, 0, len(entries))
	for _, entry := range entries {
		fullPath := filepath.Join(absPath, entry.Name())

		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			if os.IsNotExist(err) {
				continue
			}
			return nil, &models.DirectoryAccessError{Path: absPath, Err: err}
		}

		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Stat(fullPath)
			if err != nil {
				continue
			}
			info = target
		}

		if !info.Mode().IsRegular() {
			continue
		}

		files = append(files, models.FileEntry{
			Name:    entry.Name(),
			Path:    fullPath,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// CountFiles returns the number of regular files directly inside path
func (l *Local) CountFiles(path string) (int, error) {
	files, err := l.ListFiles(path)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}

// Subdirectories returns the number of folders directly inside path.
// A symlink whose target is a folder counts as one; dangling links do not.
func (l *Local) Subdirectories(path string) (int, error) {
	absPath, entries, err := readDir(path)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		switch {
		case entry.IsDir():
			count++
		case entry.Type()&os.ModeSymlink != 0:
			if info, err := os.Stat(filepath.Join(absPath, entry.Name())); err == nil && info.IsDir() {
				count++
			}
		}
	}
	return count, nil
}

// RemoveFile deletes a single file
func (l *Local) RemoveFile(path string) error {
	if err := l.deleter.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// RemoveDir deletes a folder and anything left inside it
func (l *Local) RemoveDir(path string) error {
	if err := l.deleter.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	return nil
}

// readDir resolves path and reads its entries, reporting any failure
// as a DirectoryAccessError
func readDir(path string) (string, []os.DirEntry, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", nil, &models.DirectoryAccessError{Path: path, Err: fmt.Errorf("failed to resolve path: %w", err)}
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", nil, &models.DirectoryAccessError{Path: absPath, Err: err}
	}

	if !info.IsDir() {
		return "", nil, &models.DirectoryAccessError{Path: absPath, Err: fmt.Errorf("path is not a directory")}
	}

	entries, err := os.ReadDir(absPath)
	if err != nil {
		return "", nil, &models.DirectoryAccessError{Path: absPath, Err: err}
	}

	return absPath, entries, nil
}
