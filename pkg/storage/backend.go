package storage

import (
	"os"

	"github.com/sdejongh/sdverify/pkg/models"
)

// Backend defines the folder operations the verifier needs.
// Only the immediate children of a folder are ever considered.
type Backend interface {
	// ListFiles returns the regular files directly inside path
	ListFiles(path string) ([]models.FileEntry, error)

	// CountFiles returns the number of regular files directly inside path
	CountFiles(path string) (int, error)

	// Subdirectories returns the number of folders directly inside path
	Subdirectories(path string) (int, error)

	// RemoveFile deletes a single file
	RemoveFile(path string) error

	// RemoveDir deletes a folder and anything left inside it
	RemoveDir(path string) error
}

// Deleter abstracts filesystem delete operations
// so tests can inject failures without real permission tricks
type Deleter interface {
	Remove(path string) error
	RemoveAll(path string) error
}

// OSDeleter implements Deleter using real os package calls
type OSDeleter struct{}

func (OSDeleter) Remove(path string) error {
	return os.Remove(path)
}

func (OSDeleter) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
