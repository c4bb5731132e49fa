package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sdejongh/sdverify/pkg/models"
)

// WriteMissingReport writes the list of missing files to a file
// Format can be "human" or "json"
func WriteMissingReport(report *models.ComparisonReport, path string, format string) error {
	if len(report.Missing) == 0 {
		// Nothing missing - don't create empty file
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	switch format {
	case "json":
		err = writeMissingJSON(report, file)
	default: // "human"
		err = writeMissingHuman(report, file)
	}
	if err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return file.Close()
}

func writeMissingHuman(report *models.ComparisonReport, w io.Writer) error {
	fmt.Fprintf(w, "Missing Files Report\n")
	fmt.Fprintf(w, "====================\n\n")
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(w, "Operation: %s\n", report.OperationID)
	fmt.Fprintf(w, "Source: %s\n", report.SourcePath)
	fmt.Fprintf(w, "Destination: %s\n", report.DestPath)
	fmt.Fprintf(w, "GoPro side files excluded: %v\n\n", report.ExcludeExtras)

	fmt.Fprintf(w, "Total Missing: %d (%s)\n\n", len(report.Missing), humanize.IBytes(uint64(report.MissingBytes())))

	for _, entry := range report.Missing {
		fmt.Fprintf(w, "  %s\n", entry.Path)
		fmt.Fprintf(w, "    Size:     %s\n", humanize.IBytes(uint64(entry.Size)))
		fmt.Fprintf(w, "    Modified: %s\n", entry.ModTime.Format(time.RFC3339))
	}

	_, err := fmt.Fprintln(w)
	return err
}

func writeMissingJSON(report *models.ComparisonReport, w io.Writer) error {
	output := struct {
		Generated string `json:"generated"`
		JSONComparisonData
	}{
		Generated:          time.Now().Format(time.RFC3339),
		JSONComparisonData: comparisonData(report),
	}

	return encode(w, output)
}
