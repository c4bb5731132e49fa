package models

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

// ============== Selection Tests ==============

func TestCheckSelection(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		dest      string
		wantSides []Side
	}{
		{"BothSelected", "/media/sd", "/backup", nil},
		{"SourceMissing", "", "/backup", []Side{SideSource}},
		{"DestMissing", "/media/sd", "", []Side{SideDestination}},
		{"BothMissing", "", "", []Side{SideSource, SideDestination}},
		{"WhitespaceOnly", "  ", "/backup", []Side{SideSource}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSelection(tt.source, tt.dest)
			if tt.wantSides == nil {
				if err != nil {
					t.Fatalf("CheckSelection() error = %v, want nil", err)
				}
				return
			}

			var selErr *SelectionError
			if !errors.As(err, &selErr) {
				t.Fatalf("CheckSelection() error = %v, want *SelectionError", err)
			}
			if len(selErr.Sides) != len(tt.wantSides) {
				t.Fatalf("Sides = %v, want %v", selErr.Sides, tt.wantSides)
			}
			for _, side := range tt.wantSides {
				if !selErr.Has(side) {
					t.Errorf("SelectionError missing side %s", side)
				}
			}
		})
	}
}

func TestSelectionError_ReportsBothSides(t *testing.T) {
	err := CheckSelection("", "")
	msg := err.Error()

	if !strings.Contains(msg, "No SD card (source) folder was selected.") {
		t.Errorf("error %q does not mention the source folder", msg)
	}
	if !strings.Contains(msg, "No hard drive (destination) folder was selected.") {
		t.Errorf("error %q does not mention the destination folder", msg)
	}
	if got := len(err.(*SelectionError).Messages()); got != 2 {
		t.Errorf("Messages() returned %d lines, want 2", got)
	}
}

// ============== Error Type Tests ==============

func TestDirectoryAccessError(t *testing.T) {
	err := &DirectoryAccessError{Side: SideDestination, Path: "/backup", Err: fs.ErrNotExist}

	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("DirectoryAccessError should unwrap to the underlying error")
	}
	if !strings.Contains(err.Error(), "destination") {
		t.Errorf("Error() = %q, should name the side", err.Error())
	}

	noSide := &DirectoryAccessError{Path: "/x", Err: fs.ErrPermission}
	if strings.Contains(noSide.Error(), "  ") {
		t.Errorf("Error() = %q has a double space", noSide.Error())
	}
}

func TestDeletionError(t *testing.T) {
	err := &DeletionError{Path: "/media/sd/locked.mp4", Deleted: 3, Err: fs.ErrPermission}

	if !errors.Is(err, fs.ErrPermission) {
		t.Error("DeletionError should unwrap to the underlying error")
	}
	if !strings.Contains(err.Error(), "locked.mp4") {
		t.Errorf("Error() = %q, should name the failing file", err.Error())
	}
	if !strings.Contains(err.Error(), "3 files") {
		t.Errorf("Error() = %q, should report deleted count", err.Error())
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Field: "filter.extensions", Message: "must start with a dot"}
	if err.Error() != "filter.extensions: must start with a dot" {
		t.Errorf("Error() = %q", err.Error())
	}
}

// ============== Verdict Tests ==============

func TestDriveVerdict(t *testing.T) {
	tests := []struct {
		name          string
		verdict       DriveVerdict
		confirmed     bool
		want          DriveVerdict
		wantAllowed   bool
		needsOverride bool
	}{
		{"RemovableUnconfirmed", VerdictRemovable, false, VerdictRemovable, true, false},
		{"RemovableConfirmed", VerdictRemovable, true, VerdictRemovable, true, false},
		{"UnverifiedDeclined", VerdictUnverified, false, VerdictUnverified, false, true},
		{"UnverifiedConfirmed", VerdictUnverified, true, VerdictOverridden, true, true},
		{"OverriddenStays", VerdictOverridden, false, VerdictOverridden, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.verdict.NeedsOverride(); got != tt.needsOverride {
				t.Errorf("NeedsOverride() = %v, want %v", got, tt.needsOverride)
			}
			got := tt.verdict.Override(tt.confirmed)
			if got != tt.want {
				t.Errorf("Override(%v) = %s, want %s", tt.confirmed, got, tt.want)
			}
			if got.AllowsPurge() != tt.wantAllowed {
				t.Errorf("AllowsPurge() = %v, want %v", got.AllowsPurge(), tt.wantAllowed)
			}
		})
	}
}

// ============== Report Tests ==============

func TestComparisonReport(t *testing.T) {
	report := &ComparisonReport{
		Missing: []FileEntry{
			{Name: "GX010001.MP4", Path: "/media/sd/GX010001.MP4", Size: 1000},
			{Name: "GX010002.MP4", Path: "/media/sd/GX010002.MP4", Size: 24},
		},
	}

	if got := report.MissingNames(); got[0] != "GX010001.MP4" || got[1] != "GX010002.MP4" {
		t.Errorf("MissingNames() = %v", got)
	}
	if got := report.MissingPaths(); got[1] != "/media/sd/GX010002.MP4" {
		t.Errorf("MissingPaths() = %v", got)
	}
	if got := report.MissingBytes(); got != 1024 {
		t.Errorf("MissingBytes() = %d, want 1024", got)
	}
	if report.Status() != StatusMissing {
		t.Errorf("Status() = %s, want %s", report.Status(), StatusMissing)
	}

	empty := &ComparisonReport{}
	if empty.Status() != StatusSuccess {
		t.Errorf("Status() = %s, want %s", empty.Status(), StatusSuccess)
	}
}

func TestStatusExitCode(t *testing.T) {
	tests := []struct {
		status Status
		want   int
	}{
		{StatusSuccess, 0},
		{StatusMissing, 1},
		{StatusFailed, 2},
		{StatusCancelled, 3},
		{Status("unknown"), 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.ExitCode(); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompareOperationValidate(t *testing.T) {
	op := &CompareOperation{SourcePath: "/media/sd"}
	var selErr *SelectionError
	if err := op.Validate(); !errors.As(err, &selErr) || !selErr.Has(SideDestination) {
		t.Errorf("Validate() error = %v, want destination selection error", err)
	}

	op.DestPath = "/backup"
	if err := op.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}
