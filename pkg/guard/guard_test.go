package guard

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sdejongh/sdverify/pkg/models"
	"github.com/sdejongh/sdverify/pkg/storage"
	"github.com/sdejongh/sdverify/pkg/volume"
)

func createFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create %s: %v", dir, err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("content of "+name), 0644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// recorderFunc adapts a function to Recorder
type recorderFunc func(ctx context.Context, result *models.PurgeResult, err error) error

func (f recorderFunc) RecordPurge(ctx context.Context, result *models.PurgeResult, err error) error {
	return f(ctx, result, err)
}

// ============== Verify Tests ==============

func TestVerify(t *testing.T) {
	card := t.TempDir()
	ctx := context.Background()

	tests := []struct {
		name    string
		volumes volume.Enumerator
		want    models.DriveVerdict
	}{
		{
			name:    "RemovableVolume",
			volumes: volume.Static{{Root: card, Device: "/dev/mmcblk0p1", Removable: true}},
			want:    models.VerdictRemovable,
		},
		{
			name:    "FixedVolume",
			volumes: volume.Static{{Root: card, Device: "/dev/sda1"}},
			want:    models.VerdictUnverified,
		},
		{
			name:    "UnknownVolume",
			volumes: volume.Static{{Root: filepath.Join(card, "elsewhere"), Removable: true}},
			want:    models.VerdictUnverified,
		},
		{
			name:    "NoVolumes",
			volumes: volume.Static{},
			want:    models.VerdictUnverified,
		},
		{
			name: "EnumerationFails",
			volumes: volume.EnumeratorFunc(func() ([]volume.Volume, error) {
				return nil, errors.New("mount table unavailable")
			}),
			want: models.VerdictUnverified,
		},
		{
			name: "LongestRootWins",
			volumes: volume.Static{
				{Root: filepath.Dir(card), Removable: true},
				{Root: card, Removable: false},
			},
			want: models.VerdictUnverified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(storage.NewLocal(), tt.volumes)
			if got := g.Verify(ctx, filepath.Join(card, "DCIM")); got != tt.want {
				t.Errorf("Verify() = %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("EmptyPath", func(t *testing.T) {
		g := New(storage.NewLocal(), volume.Static{{Root: card, Removable: true}})
		if got := g.Verify(ctx, ""); got != models.VerdictUnverified {
			t.Errorf("Verify(\"\") = %s, want unverified", got)
		}
	})
}

// ============== Purge Tests ==============

func TestPurge_RemovesFolderWithoutSubdirectories(t *testing.T) {
	card := filepath.Join(t.TempDir(), "100GOPRO")
	createFiles(t, card, "a.txt", "b.txt")

	g := New(storage.NewLocal(), volume.Static{})
	result, err := g.Purge(context.Background(), card, models.VerdictRemovable, true)
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}

	if exists(card) {
		t.Error("folder should be deleted when it has no subdirectories")
	}
	if !result.DirectoryRemoved {
		t.Error("DirectoryRemoved = false, want true")
	}
	if len(result.Deleted) != 2 {
		t.Errorf("Deleted = %d files, want 2", len(result.Deleted))
	}
	if result.BytesDeleted != int64(len("content of a.txt")+len("content of b.txt")) {
		t.Errorf("BytesDeleted = %d", result.BytesDeleted)
	}
	if result.PurgeID == "" {
		t.Error("PurgeID should be set")
	}
}

func TestPurge_KeepsFolderWithSubdirectories(t *testing.T) {
	card := filepath.Join(t.TempDir(), "card")
	createFiles(t, card, "a.txt", "b.txt")
	createFiles(t, filepath.Join(card, "sub"), "keep.txt")

	g := New(storage.NewLocal(), volume.Static{})
	result, err := g.Purge(context.Background(), card, models.VerdictOverridden, true)
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}

	for _, name := range []string{"a.txt", "b.txt"} {
		if exists(filepath.Join(card, name)) {
			t.Errorf("%s should be deleted", name)
		}
	}
	if !exists(filepath.Join(card, "sub", "keep.txt")) {
		t.Error("subdirectory contents must be untouched")
	}
	if !exists(card) {
		t.Error("folder must remain while it has subdirectories")
	}
	if result.DirectoryRemoved {
		t.Error("DirectoryRemoved = true, want false")
	}
	if result.Subdirectories != 1 {
		t.Errorf("Subdirectories = %d, want 1", result.Subdirectories)
	}
}

func TestPurge_RequiresBothConfirmations(t *testing.T) {
	card := filepath.Join(t.TempDir(), "card")
	createFiles(t, card, "a.txt")

	fake := &storage.FakeDeleter{}
	g := New(storage.NewLocalWithDeleter(fake), volume.Static{})
	ctx := context.Background()

	tests := []struct {
		name    string
		verdict models.DriveVerdict
		confirm bool
		wantErr error
	}{
		{"DeleteNotConfirmed", models.VerdictRemovable, false, ErrDeleteNotConfirmed},
		{"DriveNotVerified", models.VerdictUnverified, true, ErrDriveNotVerified},
		{"NeitherGate", models.VerdictUnverified, false, ErrDeleteNotConfirmed},
		{"OverrideDeclined", models.VerdictUnverified.Override(false), true, ErrDriveNotVerified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := g.Purge(ctx, card, tt.verdict, tt.confirm)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Purge() error = %v, want %v", err, tt.wantErr)
			}
			if result != nil {
				t.Error("no result should be returned when a gate fails")
			}
		})
	}

	if len(fake.Calls) != 0 {
		t.Errorf("nothing should be deleted, got calls %v", fake.Calls)
	}
	if !exists(filepath.Join(card, "a.txt")) {
		t.Error("a.txt must survive refused purges")
	}
}

func TestPurge_StopsAtFirstFailure(t *testing.T) {
	card := filepath.Join(t.TempDir(), "card")
	createFiles(t, card, "a.mp4", "b.mp4", "c.mp4")

	fake := &storage.FakeDeleter{
		FailOn: map[string]error{"b.mp4": fs.ErrPermission},
		Next:   storage.OSDeleter{},
	}
	g := New(storage.NewLocalWithDeleter(fake), volume.Static{})

	result, err := g.Purge(context.Background(), card, models.VerdictRemovable, true)

	var delErr *models.DeletionError
	if !errors.As(err, &delErr) {
		t.Fatalf("Purge() error = %v, want *DeletionError", err)
	}
	if filepath.Base(delErr.Path) != "b.mp4" {
		t.Errorf("DeletionError.Path = %s, want b.mp4", delErr.Path)
	}
	if delErr.Deleted != 1 {
		t.Errorf("DeletionError.Deleted = %d, want 1", delErr.Deleted)
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("DeletionError should wrap the underlying cause")
	}

	if result == nil || len(result.Deleted) != 1 || result.Deleted[0].Name != "a.mp4" {
		t.Fatalf("partial result = %+v, want a.mp4 deleted", result)
	}
	if exists(filepath.Join(card, "a.mp4")) {
		t.Error("a.mp4 was deleted before the failure and must stay deleted")
	}
	if !exists(filepath.Join(card, "c.mp4")) {
		t.Error("c.mp4 comes after the failure and must not be touched")
	}
	if !exists(card) {
		t.Error("folder must not be removed after a failed purge")
	}
}

func TestPurge_FolderRemovalFailure(t *testing.T) {
	parent := t.TempDir()
	card := filepath.Join(parent, "card")
	createFiles(t, card, "a.mp4")

	fake := &storage.FakeDeleter{
		FailOn: map[string]error{"card": fs.ErrPermission},
		Next:   storage.OSDeleter{},
	}
	g := New(storage.NewLocalWithDeleter(fake), volume.Static{})

	result, err := g.Purge(context.Background(), card, models.VerdictRemovable, true)
	var delErr *models.DeletionError
	if !errors.As(err, &delErr) || delErr.Path != card {
		t.Fatalf("Purge() error = %v, want DeletionError for the folder", err)
	}
	if result.DirectoryRemoved {
		t.Error("DirectoryRemoved should be false")
	}
}

func TestPurge_AccessErrors(t *testing.T) {
	g := New(storage.NewLocal(), volume.Static{})
	ctx := context.Background()

	t.Run("MissingFolder", func(t *testing.T) {
		_, err := g.Purge(ctx, filepath.Join(t.TempDir(), "gone"), models.VerdictRemovable, true)
		var accessErr *models.DirectoryAccessError
		if !errors.As(err, &accessErr) {
			t.Fatalf("Purge() error = %v, want *DirectoryAccessError", err)
		}
		if accessErr.Side != models.SideSource {
			t.Errorf("Side = %s, want source", accessErr.Side)
		}
	})

	t.Run("EmptyPath", func(t *testing.T) {
		_, err := g.Purge(ctx, "", models.VerdictRemovable, true)
		var selErr *models.SelectionError
		if !errors.As(err, &selErr) || !selErr.Has(models.SideSource) {
			t.Fatalf("Purge() error = %v, want source *SelectionError", err)
		}
	})
}

func TestPurge_RecordersAndProgress(t *testing.T) {
	card := filepath.Join(t.TempDir(), "card")
	createFiles(t, card, "a.mp4", "b.mp4")

	var recorded []*models.PurgeResult
	var progress []int
	g := New(storage.NewLocal(), volume.Static{},
		WithRecorder(recorderFunc(func(ctx context.Context, result *models.PurgeResult, err error) error {
			recorded = append(recorded, result)
			return errors.New("journal is read-only")
		})),
		WithProgress(func(done, total int, entry models.FileEntry) {
			if total != 2 {
				t.Errorf("total = %d, want 2", total)
			}
			progress = append(progress, done)
		}),
	)

	if _, err := g.Purge(context.Background(), card, models.VerdictRemovable, true); err != nil {
		t.Fatalf("Purge() error = %v, recorder failures must not fail the purge", err)
	}
	if len(recorded) != 1 || len(recorded[0].Deleted) != 2 {
		t.Errorf("recorded = %+v, want one result with 2 files", recorded)
	}
	if len(progress) != 2 || progress[1] != 2 {
		t.Errorf("progress = %v, want [1 2]", progress)
	}
}

func TestPurge_ConcurrentSameFolder(t *testing.T) {
	card := filepath.Join(t.TempDir(), "card")
	createFiles(t, card, "a.mp4", "b.mp4", "c.mp4")
	createFiles(t, filepath.Join(card, "DCIM"))

	g := New(storage.NewLocal(), volume.Static{})
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*models.PurgeResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = g.Purge(ctx, card, models.VerdictRemovable, true)
		}(i)
	}
	wg.Wait()

	total := 0
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("Purge() error = %v", errs[i])
		}
		total += len(results[i].Deleted)
	}
	if total != 3 {
		t.Errorf("serialized purges deleted %d files in total, want 3", total)
	}
}
