// Package guard verifies that a folder lives on removable media and
// deletes its top-level files once both confirmations were given.
package guard

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sdejongh/sdverify/pkg/logging"
	"github.com/sdejongh/sdverify/pkg/models"
	"github.com/sdejongh/sdverify/pkg/storage"
	"github.com/sdejongh/sdverify/pkg/volume"
)

var (
	// ErrDeleteNotConfirmed is returned when the caller did not confirm the deletion
	ErrDeleteNotConfirmed = errors.New("deletion was not confirmed")
	// ErrDriveNotVerified is returned when the folder is not on verified
	// removable media and no override was given
	ErrDriveNotVerified = errors.New("folder is not on verified removable media")
)

// Recorder is notified after every purge attempt that touched the disk.
// result is never nil; err is the purge error, if any.
type Recorder interface {
	RecordPurge(ctx context.Context, result *models.PurgeResult, err error) error
}

// ProgressFunc is called after each file is deleted
type ProgressFunc func(done, total int, entry models.FileEntry)

// Guard gates and performs purges. It is safe for concurrent use; purges
// of the same folder are serialized.
type Guard struct {
	backend   storage.Backend
	volumes   volume.Enumerator
	logger    logging.Logger
	recorders []Recorder
	progress  ProgressFunc

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Guard
type Option func(*Guard)

// WithRecorder adds a recorder, e.g. the purge journal or metrics
func WithRecorder(r Recorder) Option {
	return func(g *Guard) {
		if r != nil {
			g.recorders = append(g.recorders, r)
		}
	}
}

// WithProgress sets the per-file progress callback
func WithProgress(fn ProgressFunc) Option {
	return func(g *Guard) {
		g.progress = fn
	}
}

// WithLogger sets the logger
func WithLogger(l logging.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Guard. A nil enumerator means the running system's volumes.
func New(backend storage.Backend, volumes volume.Enumerator, opts ...Option) *Guard {
	if backend == nil {
		backend = storage.NewLocal()
	}
	if volumes == nil {
		volumes = volume.System()
	}

	g := &Guard{
		backend: backend,
		volumes: volumes,
		logger:  logging.NewNullLogger(),
		locks:   make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Verify classifies the volume holding path. It never fails: an unknown
// volume, a fixed disk or an enumeration error all yield VerdictUnverified
// so that a human has to decide.
func (g *Guard) Verify(ctx context.Context, path string) models.DriveVerdict {
	absPath, err := filepath.Abs(path)
	if err != nil || strings.TrimSpace(path) == "" {
		g.logger.Warn(ctx, "cannot resolve folder for drive check", logging.Fields{"path": path})
		return models.VerdictUnverified
	}

	volumes, err := g.volumes.ListVolumes()
	if err != nil {
		g.logger.Error(ctx, "failed to list volumes", err, logging.Fields{"path": absPath})
		return models.VerdictUnverified
	}

	v, ok := volume.Resolve(volumes, absPath)
	if !ok {
		g.logger.Info(ctx, "folder is not on a known volume", logging.Fields{"path": absPath})
		return models.VerdictUnverified
	}

	fields := logging.Fields{
		"path":      absPath,
		"volume":    v.Root,
		"device":    v.Device,
		"removable": v.Removable,
	}
	if !v.Removable {
		g.logger.Info(ctx, "folder is not on removable media", fields)
		return models.VerdictUnverified
	}

	g.logger.Debug(ctx, "folder is on removable media", fields)
	return models.VerdictRemovable
}

// Purge deletes every regular file directly inside path, then deletes path
// itself when no subdirectory is left. It refuses to touch anything unless
// confirmDelete is true and the verdict allows a purge.
//
// The first file that cannot be removed stops the purge with a
// DeletionError; files removed before it stay removed and are listed in
// the returned result.
func (g *Guard) Purge(ctx context.Context, path string, verdict models.DriveVerdict, confirmDelete bool) (*models.PurgeResult, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &models.SelectionError{Sides: []models.Side{models.SideSource}}
	}
	if !confirmDelete {
		return nil, ErrDeleteNotConfirmed
	}
	if !verdict.AllowsPurge() {
		return nil, fmt.Errorf("%w: verdict %s", ErrDriveNotVerified, verdict)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &models.DirectoryAccessError{Side: models.SideSource, Path: path, Err: err}
	}

	lock := g.lockFor(absPath)
	lock.Lock()
	defer lock.Unlock()

	files, err := g.backend.ListFiles(absPath)
	if err != nil {
		var accessErr *models.DirectoryAccessError
		if errors.As(err, &accessErr) {
			accessErr.Side = models.SideSource
		}
		return nil, err
	}

	result := &models.PurgeResult{
		PurgeID:   uuid.New().String(),
		Path:      absPath,
		Verdict:   verdict,
		StartTime: time.Now(),
		Deleted:   make([]models.FileEntry, 0, len(files)),
	}
	logger := g.logger.WithFields(logging.Fields{"purge": result.PurgeID, "path": absPath})
	logger.Info(ctx, "starting purge", logging.Fields{"files": len(files), "verdict": string(verdict)})

	err = g.purge(ctx, logger, result, files)
	result.EndTime = time.Now()
	g.record(ctx, logger, result, err)

	if err != nil {
		return result, err
	}
	return result, nil
}

func (g *Guard) purge(ctx context.Context, logger logging.Logger, result *models.PurgeResult, files []models.FileEntry) error {
	for i, entry := range files {
		if err := g.backend.RemoveFile(entry.Path); err != nil {
			logger.Error(ctx, "failed to delete file", err, logging.Fields{"file": entry.Name, "deleted": len(result.Deleted)})
			return &models.DeletionError{Path: entry.Path, Deleted: len(result.Deleted), Err: err}
		}

		result.Deleted = append(result.Deleted, entry)
		result.BytesDeleted += entry.Size
		logger.Debug(ctx, "deleted file", logging.Fields{"file": entry.Name, "size": entry.Size})

		if g.progress != nil {
			g.progress(i+1, len(files), entry)
		}
	}

	subdirs, err := g.backend.Subdirectories(result.Path)
	if err != nil {
		var accessErr *models.DirectoryAccessError
		if errors.As(err, &accessErr) {
			accessErr.Side = models.SideSource
		}
		return err
	}
	result.Subdirectories = subdirs

	if subdirs > 0 {
		logger.Info(ctx, "keeping folder with subdirectories", logging.Fields{"subdirectories": subdirs, "deleted": len(result.Deleted)})
		return nil
	}

	if err := g.backend.RemoveDir(result.Path); err != nil {
		logger.Error(ctx, "failed to delete folder", err, nil)
		return &models.DeletionError{Path: result.Path, Deleted: len(result.Deleted), Err: err}
	}
	result.DirectoryRemoved = true

	logger.Info(ctx, "purge complete", logging.Fields{"deleted": len(result.Deleted), "bytes": result.BytesDeleted})
	return nil
}

// record hands the outcome to every recorder. Recorder failures are
// logged, never returned.
func (g *Guard) record(ctx context.Context, logger logging.Logger, result *models.PurgeResult, purgeErr error) {
	for _, r := range g.recorders {
		if err := r.RecordPurge(ctx, result, purgeErr); err != nil {
			logger.Warn(ctx, "failed to record purge", logging.Fields{"error": err.Error()})
		}
	}
}

func (g *Guard) lockFor(path string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	lock, ok := g.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[path] = lock
	}
	return lock
}
