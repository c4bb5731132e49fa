// Package journal keeps a SQLite ledger of purges so that deleted card
// contents can be traced after the fact.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sdejongh/sdverify/pkg/models"
)

// Journal manages the SQLite database of purge history
type Journal struct {
	db *sql.DB
}

// PurgeRecord is one purge attempt as stored in the journal
type PurgeRecord struct {
	ID               string
	Path             string
	Verdict          models.DriveVerdict
	StartedAt        time.Time
	FinishedAt       time.Time
	FilesDeleted     int
	BytesDeleted     int64
	DirectoryRemoved bool
	Error            string
}

// FileRecord is one file removed by a purge
type FileRecord struct {
	PurgeID   string
	Name      string
	Path      string
	Size      int64
	ModTime   time.Time
	DeletedAt time.Time
}

// Open opens (creating if needed) the journal database at dbPath
func Open(dbPath string) (*Journal, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory %s: %w", dir, err)
		}
	}

	// _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// Force file creation so permission problems surface here
	if _, err := db.Exec("SELECT 1"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal (check permissions on %s): %w", dbPath, err)
	}

	j := &Journal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}

	return j, nil
}

func (j *Journal) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS purges (
		id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		verdict TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		files_deleted INTEGER NOT NULL,
		bytes_deleted INTEGER NOT NULL,
		directory_removed INTEGER NOT NULL,
		error_message TEXT
	);

	CREATE TABLE IF NOT EXISTS purged_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		purge_id TEXT NOT NULL REFERENCES purges(id),
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		size INTEGER NOT NULL,
		mod_time DATETIME,
		deleted_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_purges_started_at ON purges(started_at);
	CREATE INDEX IF NOT EXISTS idx_purged_files_purge_id ON purged_files(purge_id);
	CREATE INDEX IF NOT EXISTS idx_purged_files_name ON purged_files(name);
	`

	_, err := j.db.Exec(schema)
	return err
}

// RecordPurge stores a purge and the files it removed in one transaction
func (j *Journal) RecordPurge(ctx context.Context, result *models.PurgeResult, purgeErr error) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin journal transaction: %w", err)
	}
	defer tx.Rollback()

	var errMsg sql.NullString
	if purgeErr != nil {
		errMsg = sql.NullString{String: purgeErr.Error(), Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
	INSERT INTO purges (
		id, path, verdict, started_at, finished_at,
		files_deleted, bytes_deleted, directory_removed, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.PurgeID,
		result.Path,
		string(result.Verdict),
		result.StartTime.UTC(),
		result.EndTime.UTC(),
		len(result.Deleted),
		result.BytesDeleted,
		result.DirectoryRemoved,
		errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to record purge: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO purged_files (purge_id, name, path, size, mod_time, deleted_at)
	VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare file insert: %w", err)
	}
	defer stmt.Close()

	for _, entry := range result.Deleted {
		if _, err := stmt.ExecContext(ctx, result.PurgeID, entry.Name, entry.Path, entry.Size, entry.ModTime.UTC(), result.EndTime.UTC()); err != nil {
			return fmt.Errorf("failed to record deleted file %s: %w", entry.Name, err)
		}
	}

	return tx.Commit()
}

// RecentPurges returns the latest purges, newest first
func (j *Journal) RecentPurges(ctx context.Context, limit int) ([]PurgeRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.QueryContext(ctx, `
	SELECT id, path, verdict, started_at, finished_at,
		files_deleted, bytes_deleted, directory_removed, COALESCE(error_message, '')
	FROM purges
	ORDER BY started_at DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query purges: %w", err)
	}
	defer rows.Close()

	var records []PurgeRecord
	for rows.Next() {
		var r PurgeRecord
		var verdict string
		if err := rows.Scan(&r.ID, &r.Path, &verdict, &r.StartedAt, &r.FinishedAt,
			&r.FilesDeleted, &r.BytesDeleted, &r.DirectoryRemoved, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan purge: %w", err)
		}
		r.Verdict = models.DriveVerdict(verdict)
		records = append(records, r)
	}

	return records, rows.Err()
}

// Files returns the files removed by one purge, in deletion order
func (j *Journal) Files(ctx context.Context, purgeID string) ([]FileRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
	SELECT purge_id, name, path, size, mod_time, deleted_at
	FROM purged_files
	WHERE purge_id = ?
	ORDER BY id`, purgeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purged files: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		var modTime sql.NullTime
		if err := rows.Scan(&f.PurgeID, &f.Name, &f.Path, &f.Size, &modTime, &f.DeletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purged file: %w", err)
		}
		f.ModTime = modTime.Time
		files = append(files, f)
	}

	return files, rows.Err()
}

// FindFile returns every journaled deletion of a file with the given name
func (j *Journal) FindFile(ctx context.Context, name string) ([]FileRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
	SELECT purge_id, name, path, size, mod_time, deleted_at
	FROM purged_files
	WHERE name = ? COLLATE NOCASE
	ORDER BY deleted_at DESC`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query purged files: %w", err)
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		var modTime sql.NullTime
		if err := rows.Scan(&f.PurgeID, &f.Name, &f.Path, &f.Size, &modTime, &f.DeletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan purged file: %w", err)
		}
		f.ModTime = modTime.Time
		files = append(files, f)
	}

	return files, rows.Err()
}

// Close closes the database connection
func (j *Journal) Close() error {
	return j.db.Close()
}
