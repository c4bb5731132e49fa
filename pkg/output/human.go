package output

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/sdejongh/sdverify/pkg/journal"
	"github.com/sdejongh/sdverify/pkg/models"
	"github.com/sdejongh/sdverify/pkg/volume"
)

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	ok    func(format string, a ...interface{}) string
	warn  func(format string, a ...interface{}) string
	fail  func(format string, a ...interface{}) string
	faint func(format string, a ...interface{}) string
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter(useColor bool) *HumanFormatter {
	palette := []*color.Color{
		color.New(color.FgHiGreen),
		color.New(color.FgHiYellow),
		color.New(color.FgHiRed, color.Bold),
		color.New(color.Faint),
	}
	for _, c := range palette {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return &HumanFormatter{
		ok:    palette[0].SprintfFunc(),
		warn:  palette[1].SprintfFunc(),
		fail:  palette[2].SprintfFunc(),
		faint: palette[3].SprintfFunc(),
	}
}

// Counts prints per-folder file counts
func (f *HumanFormatter) Counts(w io.Writer, counts []FolderCount) error {
	for _, c := range counts {
		if c.Err != nil {
			fmt.Fprintf(w, "%-26s %s\n", c.Side.Label()+":", f.fail("%v", c.Err))
			continue
		}
		fmt.Fprintf(w, "%-26s %d files, %s  %s\n",
			c.Side.Label()+":", c.Files, humanize.IBytes(uint64(c.Bytes)), f.faint("%s", c.Path))
	}
	return nil
}

// Comparison prints the result of a reconciliation
func (f *HumanFormatter) Comparison(w io.Writer, report *models.ComparisonReport) error {
	fmt.Fprintf(w, "Source:       %s (%d files)\n", report.SourcePath, report.SourceFiles)
	fmt.Fprintf(w, "Destination:  %s (%d files)\n", report.DestPath, report.DestFiles)
	if report.ExcludeExtras {
		fmt.Fprintf(w, "Excluded:     %d GoPro side files\n", len(report.Excluded))
	}
	fmt.Fprintf(w, "Compared in %s\n\n", report.Duration.Round(time.Millisecond))

	if len(report.Missing) == 0 {
		fmt.Fprintln(w, f.ok("All files are present in the destination."))
		return nil
	}

	fmt.Fprintln(w, f.warn("%d files (%s) are missing from the destination:",
		len(report.Missing), humanize.IBytes(uint64(report.MissingBytes()))))
	for _, entry := range report.Missing {
		fmt.Fprintf(w, "  %s  %s\n", entry.Name, f.faint("%s", humanize.IBytes(uint64(entry.Size))))
	}
	return nil
}

// Purge prints what a purge removed
func (f *HumanFormatter) Purge(w io.Writer, result *models.PurgeResult, err error) error {
	if result != nil {
		fmt.Fprintf(w, "Deleted %d files (%s) from %s\n",
			len(result.Deleted), humanize.IBytes(uint64(result.BytesDeleted)), result.Path)

		switch {
		case result.DirectoryRemoved:
			fmt.Fprintln(w, f.ok("Folder removed."))
		case result.Subdirectories > 0:
			fmt.Fprintln(w, f.warn("Folder kept: it contains %d subfolders.", result.Subdirectories))
		}

		if result.Verdict == models.VerdictOverridden {
			fmt.Fprintln(w, f.faint("Removable-drive check was overridden."))
		}
	}

	if err != nil {
		return f.Error(w, err)
	}
	return nil
}

// Volumes prints the known volumes
func (f *HumanFormatter) Volumes(w io.Writer, volumes []volume.Volume) error {
	if len(volumes) == 0 {
		fmt.Fprintln(w, "No volumes found.")
		return nil
	}

	fmt.Fprintf(w, "%-30s %-10s %-20s %s\n", "ROOT", "TYPE", "DEVICE", "REMOVABLE")
	for _, v := range volumes {
		removable := f.faint("no")
		if v.Removable {
			removable = f.ok("yes")
		}
		fmt.Fprintf(w, "%-30s %-10s %-20s %s\n", v.Root, v.FSType, v.Device, removable)
	}
	return nil
}

// History prints journaled purges
func (f *HumanFormatter) History(w io.Writer, records []journal.PurgeRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No purges recorded.")
		return nil
	}

	for _, r := range records {
		state := f.ok("ok")
		if r.Error != "" {
			state = f.fail("failed")
		}
		fmt.Fprintf(w, "%s  %-6s %s  %d files, %s  %s\n",
			shortID(r.ID), state, humanize.Time(r.FinishedAt),
			r.FilesDeleted, humanize.IBytes(uint64(r.BytesDeleted)), r.Path)
		if r.Error != "" {
			fmt.Fprintf(w, "          %s\n", f.faint("%s", r.Error))
		}
	}
	return nil
}

// PurgedFiles prints journaled file deletions
func (f *HumanFormatter) PurgedFiles(w io.Writer, records []journal.FileRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No deleted files recorded.")
		return nil
	}

	for _, r := range records {
		fmt.Fprintf(w, "%s  %s  %-10s %s\n",
			shortID(r.PurgeID), humanize.Time(r.DeletedAt), humanize.IBytes(uint64(r.Size)), r.Path)
	}
	return nil
}

// Error prints a command error. Selection errors print one line per folder.
func (f *HumanFormatter) Error(w io.Writer, err error) error {
	var selErr *models.SelectionError
	if errors.As(err, &selErr) {
		for _, msg := range selErr.Messages() {
			fmt.Fprintln(w, f.fail("%s", msg))
		}
		return nil
	}

	fmt.Fprintln(w, f.fail("Error: %v", err))
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
