package compare

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sdejongh/sdverify/pkg/logging"
	"github.com/sdejongh/sdverify/pkg/models"
	"github.com/sdejongh/sdverify/pkg/storage"
)

// Reconciler finds source files that are absent from a backup folder.
// It holds no state between calls.
type Reconciler struct {
	backend storage.Backend
	filter  *Filter
	logger  logging.Logger
}

// NewReconciler creates a reconciler. The filter is applied only when a
// caller asks for exclusion; a nil filter means the default GoPro set.
func NewReconciler(backend storage.Backend, filter *Filter, logger logging.Logger) *Reconciler {
	if backend == nil {
		backend = storage.NewLocal()
	}
	if filter == nil {
		filter = DefaultFilter()
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Reconciler{backend: backend, filter: filter, logger: logger}
}

// FindMissing lists both folders and returns the source files whose name,
// compared case-insensitively, does not appear in the destination.
// Empty paths yield a SelectionError naming every unselected side; listing
// failures yield a DirectoryAccessError naming the side that failed.
func (r *Reconciler) FindMissing(ctx context.Context, sourcePath, destPath string, excludeFilter bool) (*models.ComparisonReport, error) {
	op := &models.CompareOperation{
		ID:            uuid.New().String(),
		SourcePath:    sourcePath,
		DestPath:      destPath,
		ExcludeExtras: excludeFilter,
		CreatedAt:     time.Now(),
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}

	logger := r.logger.WithFields(logging.Fields{"operation": op.ID})
	logger.Debug(ctx, "starting comparison", logging.Fields{
		"source":         sourcePath,
		"destination":    destPath,
		"exclude_extras": excludeFilter,
	})

	report := &models.ComparisonReport{
		OperationID:   op.ID,
		SourcePath:    sourcePath,
		DestPath:      destPath,
		ExcludeExtras: excludeFilter,
		StartTime:     op.CreatedAt,
	}

	sourceFiles, err := r.list(sourcePath, models.SideSource)
	if err != nil {
		logger.Error(ctx, "failed to list source folder", err, nil)
		return nil, err
	}

	destFiles, err := r.list(destPath, models.SideDestination)
	if err != nil {
		logger.Error(ctx, "failed to list destination folder", err, nil)
		return nil, err
	}

	report.SourceFiles = len(sourceFiles)
	report.DestFiles = len(destFiles)

	if excludeFilter {
		sourceFiles, report.Excluded = Partition(sourceFiles, r.filter.Predicate())
	}

	report.Missing = Difference(sourceFiles, destFiles)
	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)

	logger.Info(ctx, "comparison complete", logging.Fields{
		"source_files": report.SourceFiles,
		"dest_files":   report.DestFiles,
		"excluded":     len(report.Excluded),
		"missing":      len(report.Missing),
	})

	return report, nil
}

// list wraps listing errors with the side that failed
func (r *Reconciler) list(path string, side models.Side) ([]models.FileEntry, error) {
	files, err := r.backend.ListFiles(path)
	if err != nil {
		var accessErr *models.DirectoryAccessError
		if errors.As(err, &accessErr) {
			tagged := *accessErr
			tagged.Side = side
			return nil, &tagged
		}
		return nil, &models.DirectoryAccessError{Side: side, Path: path, Err: err}
	}
	return files, nil
}

// Partition splits entries into those kept and those the predicate excludes
func Partition(entries []models.FileEntry, exclude Predicate) (kept, excluded []models.FileEntry) {
	kept = make([]models.FileEntry, 0, len(entries))
	for _, entry := range entries {
		if exclude != nil && exclude(entry.Name) {
			excluded = append(excluded, entry)
			continue
		}
		kept = append(kept, entry)
	}
	return kept, excluded
}

// Difference returns the source entries whose name is not present in dest.
// Names are compared case-insensitively; source order is preserved.
func Difference(source, dest []models.FileEntry) []models.FileEntry {
	present := make(map[string]struct{}, len(dest))
	for _, entry := range dest {
		present[nameKey(entry.Name)] = struct{}{}
	}

	missing := make([]models.FileEntry, 0)
	for _, entry := range source {
		if _, ok := present[nameKey(entry.Name)]; ok {
			continue
		}
		missing = append(missing, entry)
	}
	return missing
}
