package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sdejongh/sdverify/pkg/models"
)

func TestObserveComparison(t *testing.T) {
	m := New()

	m.ObserveComparison(&models.ComparisonReport{
		Missing:  []models.FileEntry{{Name: "a.mp4"}, {Name: "b.mp4"}},
		Excluded: []models.FileEntry{{Name: "a.thm"}},
	})
	m.ObserveComparison(&models.ComparisonReport{})

	if got := testutil.ToFloat64(m.ComparisonsTotal.WithLabelValues("missing")); got != 1 {
		t.Errorf("comparisons_total{status=missing} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ComparisonsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("comparisons_total{status=success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.MissingFiles); got != 0 {
		t.Errorf("missing_files = %v, want 0 after the second comparison", got)
	}
}

func TestRecordPurge(t *testing.T) {
	m := New()
	end := time.Unix(1700000000, 0)

	result := &models.PurgeResult{
		Verdict:      models.VerdictRemovable,
		StartTime:    end.Add(-time.Second),
		EndTime:      end,
		Deleted:      []models.FileEntry{{Name: "a"}, {Name: "b"}},
		BytesDeleted: 2048,
	}
	if err := m.RecordPurge(context.Background(), result, nil); err != nil {
		t.Fatalf("RecordPurge() error = %v", err)
	}

	failed := &models.PurgeResult{Verdict: models.VerdictOverridden, StartTime: end, EndTime: end, Deleted: []models.FileEntry{{Name: "c"}}}
	if err := m.RecordPurge(context.Background(), failed, errors.New("locked")); err != nil {
		t.Fatalf("RecordPurge() error = %v", err)
	}

	if got := testutil.ToFloat64(m.FilesDeletedTotal); got != 3 {
		t.Errorf("files_deleted_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.BytesDeletedTotal); got != 2048 {
		t.Errorf("bytes_deleted_total = %v, want 2048", got)
	}
	if got := testutil.ToFloat64(m.PurgesTotal.WithLabelValues("failed", "overridden")); got != 1 {
		t.Errorf("purges_total{failed,overridden} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.LastPurgeTimestamp); got != 1700000000 {
		t.Errorf("last_purge_timestamp_seconds = %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ObserveComparison(&models.ComparisonReport{Missing: []models.FileEntry{{Name: "a.mp4"}}})

	path := filepath.Join(t.TempDir(), "textfile", "sdverify.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read metrics file: %v", err)
	}
	if !strings.Contains(string(content), "sdverify_missing_files 1") {
		t.Errorf("metrics file missing gauge:\n%s", content)
	}
	if !strings.Contains(string(content), `sdverify_comparisons_total{status="missing"} 1`) {
		t.Errorf("metrics file missing counter:\n%s", content)
	}
}

func TestRestoreAccumulatesAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdverify.prom")
	end := time.Unix(1700000000, 0)
	purge := &models.PurgeResult{
		Verdict:      models.VerdictRemovable,
		StartTime:    end.Add(-time.Second),
		EndTime:      end,
		Deleted:      []models.FileEntry{{Name: "a"}, {Name: "b"}},
		BytesDeleted: 100,
	}

	first := New()
	if err := first.RecordPurge(context.Background(), purge, nil); err != nil {
		t.Fatal(err)
	}
	if err := first.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}

	// A comparison run must not reset the purge series
	second := New()
	if err := second.Restore(path); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	second.ObserveComparison(&models.ComparisonReport{Missing: []models.FileEntry{{Name: "c.mp4"}}})
	if err := second.WriteTextfile(path); err != nil {
		t.Fatal(err)
	}

	third := New()
	if err := third.Restore(path); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if err := third.RecordPurge(context.Background(), purge, nil); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(third.FilesDeletedTotal); got != 4 {
		t.Errorf("files_deleted_total = %v, want 4", got)
	}
	if got := testutil.ToFloat64(third.BytesDeletedTotal); got != 200 {
		t.Errorf("bytes_deleted_total = %v, want 200", got)
	}
	if got := testutil.ToFloat64(third.PurgesTotal.WithLabelValues("success", "removable")); got != 2 {
		t.Errorf("purges_total{success,removable} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(third.ComparisonsTotal.WithLabelValues("missing")); got != 1 {
		t.Errorf("comparisons_total{status=missing} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(third.MissingFiles); got != 1 {
		t.Errorf("missing_files = %v, want 1", got)
	}
}

func TestRestoreMissingFile(t *testing.T) {
	m := New()
	if err := m.Restore(filepath.Join(t.TempDir(), "absent.prom")); err != nil {
		t.Fatalf("Restore() error = %v, want nil for a missing file", err)
	}
	if got := testutil.ToFloat64(m.FilesDeletedTotal); got != 0 {
		t.Errorf("files_deleted_total = %v, want 0", got)
	}
}

func TestRestoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sdverify.prom")
	if err := os.WriteFile(path, []byte("sdverify_files_deleted_total not-a-number\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := New().Restore(path); err == nil {
		t.Error("Restore() should fail on a malformed textfile")
	}
}
