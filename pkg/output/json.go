package output

import (
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/sdejongh/sdverify/pkg/journal"
	"github.com/sdejongh/sdverify/pkg/models"
	"github.com/sdejongh/sdverify/pkg/volume"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct{}

// JSONFileData represents one file in JSON output
type JSONFileData struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	ModTime string `json:"mod_time"`
}

// JSONCountData represents a folder count
type JSONCountData struct {
	Side  string `json:"side"`
	Path  string `json:"path"`
	Files int    `json:"files"`
	Bytes int64  `json:"bytes"`
	Error string `json:"error,omitempty"`
}

// JSONComparisonData represents a reconciliation result
type JSONComparisonData struct {
	OperationID   string         `json:"operation_id"`
	Status        string         `json:"status"`
	SourcePath    string         `json:"source_path"`
	DestPath      string         `json:"dest_path"`
	ExcludeExtras bool           `json:"exclude_extras"`
	Duration      string         `json:"duration"`
	DurationMs    int64          `json:"duration_ms"`
	SourceFiles   int            `json:"source_files"`
	DestFiles     int            `json:"dest_files"`
	ExcludedCount int            `json:"excluded_count"`
	MissingCount  int            `json:"missing_count"`
	MissingBytes  int64          `json:"missing_bytes"`
	Missing       []JSONFileData `json:"missing"`
}

// JSONPurgeData represents a purge result
type JSONPurgeData struct {
	PurgeID          string         `json:"purge_id,omitempty"`
	Status           string         `json:"status"`
	Path             string         `json:"path,omitempty"`
	Verdict          string         `json:"verdict,omitempty"`
	FilesDeleted     int            `json:"files_deleted"`
	BytesDeleted     int64          `json:"bytes_deleted"`
	DirectoryRemoved bool           `json:"directory_removed"`
	Subdirectories   int            `json:"subdirectories"`
	Deleted          []JSONFileData `json:"deleted"`
	Error            string         `json:"error,omitempty"`
}

// JSONVolumeData represents a mounted volume
type JSONVolumeData struct {
	Root      string `json:"root"`
	Device    string `json:"device,omitempty"`
	FSType    string `json:"fs_type,omitempty"`
	Removable bool   `json:"removable"`
}

// JSONHistoryData represents a journaled purge
type JSONHistoryData struct {
	ID               string `json:"id"`
	Path             string `json:"path"`
	Verdict          string `json:"verdict"`
	StartedAt        string `json:"started_at"`
	FinishedAt       string `json:"finished_at"`
	FilesDeleted     int    `json:"files_deleted"`
	BytesDeleted     int64  `json:"bytes_deleted"`
	DirectoryRemoved bool   `json:"directory_removed"`
	Error            string `json:"error,omitempty"`
}

// JSONPurgedFileData represents a journaled file deletion
type JSONPurgedFileData struct {
	PurgeID   string `json:"purge_id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	ModTime   string `json:"mod_time"`
	DeletedAt string `json:"deleted_at"`
}

// JSONErrorData represents a command error
type JSONErrorData struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages,omitempty"`
	Side     string   `json:"side,omitempty"`
	Path     string   `json:"path,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Counts prints per-folder file counts
func (f *JSONFormatter) Counts(w io.Writer, counts []FolderCount) error {
	data := make([]JSONCountData, 0, len(counts))
	for _, c := range counts {
		item := JSONCountData{Side: string(c.Side), Path: c.Path, Files: c.Files, Bytes: c.Bytes}
		if c.Err != nil {
			item.Error = c.Err.Error()
		}
		data = append(data, item)
	}
	return encode(w, data)
}

// Comparison prints the result of a reconciliation
func (f *JSONFormatter) Comparison(w io.Writer, report *models.ComparisonReport) error {
	return encode(w, comparisonData(report))
}

// Purge prints what a purge removed
func (f *JSONFormatter) Purge(w io.Writer, result *models.PurgeResult, err error) error {
	data := JSONPurgeData{Status: string(models.StatusSuccess), Deleted: []JSONFileData{}}
	if result != nil {
		data.PurgeID = result.PurgeID
		data.Path = result.Path
		data.Verdict = string(result.Verdict)
		data.FilesDeleted = len(result.Deleted)
		data.BytesDeleted = result.BytesDeleted
		data.DirectoryRemoved = result.DirectoryRemoved
		data.Subdirectories = result.Subdirectories
		data.Deleted = fileData(result.Deleted)
	}
	if err != nil {
		data.Status = string(models.StatusFailed)
		data.Error = err.Error()
	}
	return encode(w, data)
}

// Volumes prints the known volumes
func (f *JSONFormatter) Volumes(w io.Writer, volumes []volume.Volume) error {
	data := make([]JSONVolumeData, 0, len(volumes))
	for _, v := range volumes {
		data = append(data, JSONVolumeData{Root: v.Root, Device: v.Device, FSType: v.FSType, Removable: v.Removable})
	}
	return encode(w, data)
}

// History prints journaled purges
func (f *JSONFormatter) History(w io.Writer, records []journal.PurgeRecord) error {
	data := make([]JSONHistoryData, 0, len(records))
	for _, r := range records {
		data = append(data, JSONHistoryData{
			ID:               r.ID,
			Path:             r.Path,
			Verdict:          string(r.Verdict),
			StartedAt:        r.StartedAt.Format(time.RFC3339),
			FinishedAt:       r.FinishedAt.Format(time.RFC3339),
			FilesDeleted:     r.FilesDeleted,
			BytesDeleted:     r.BytesDeleted,
			DirectoryRemoved: r.DirectoryRemoved,
			Error:            r.Error,
		})
	}
	return encode(w, data)
}

// PurgedFiles prints journaled file deletions
func (f *JSONFormatter) PurgedFiles(w io.Writer, records []journal.FileRecord) error {
	data := make([]JSONPurgedFileData, 0, len(records))
	for _, r := range records {
		data = append(data, JSONPurgedFileData{
			PurgeID:   r.PurgeID,
			Name:      r.Name,
			Path:      r.Path,
			Size:      r.Size,
			ModTime:   r.ModTime.Format(time.RFC3339),
			DeletedAt: r.DeletedAt.Format(time.RFC3339),
		})
	}
	return encode(w, data)
}

// Error prints a command error
func (f *JSONFormatter) Error(w io.Writer, err error) error {
	data := JSONErrorData{Error: err.Error()}

	var selErr *models.SelectionError
	var accessErr *models.DirectoryAccessError
	switch {
	case errors.As(err, &selErr):
		data.Messages = selErr.Messages()
	case errors.As(err, &accessErr):
		data.Side = string(accessErr.Side)
		data.Path = accessErr.Path
	}

	return encode(w, data)
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}

func comparisonData(report *models.ComparisonReport) JSONComparisonData {
	return JSONComparisonData{
		OperationID:   report.OperationID,
		Status:        string(report.Status()),
		SourcePath:    report.SourcePath,
		DestPath:      report.DestPath,
		ExcludeExtras: report.ExcludeExtras,
		Duration:      report.Duration.Round(time.Millisecond).String(),
		DurationMs:    report.Duration.Milliseconds(),
		SourceFiles:   report.SourceFiles,
		DestFiles:     report.DestFiles,
		ExcludedCount: len(report.Excluded),
		MissingCount:  len(report.Missing),
		MissingBytes:  report.MissingBytes(),
		Missing:       fileData(report.Missing),
	}
}

func fileData(entries []models.FileEntry) []JSONFileData {
	data := make([]JSONFileData, 0, len(entries))
	for _, e := range entries {
		data = append(data, JSONFileData{
			Name:    e.Name,
			Path:    e.Path,
			Size:    e.Size,
			ModTime: e.ModTime.Format(time.RFC3339),
		})
	}
	return data
}

func encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
