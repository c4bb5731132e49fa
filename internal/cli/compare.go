package cli

import (
	"context"
	"fmt"

	"github.com/sdejongh/sdverify/internal/platform"
	"github.com/sdejongh/sdverify/pkg/compare"
	"github.com/sdejongh/sdverify/pkg/logging"
	"github.com/sdejongh/sdverify/pkg/models"
	"github.com/sdejongh/sdverify/pkg/output"
	"github.com/sdejongh/sdverify/pkg/storage"
	"github.com/spf13/cobra"
)

// CompareFlags holds compare command flags
type CompareFlags struct {
	Source       string
	Dest         string
	IgnoreExtras bool
	Exclude      []string
	Output       string
	Report       string
	ReportFormat string
}

var compareFlags CompareFlags

// NewCompareCommand creates the compare command
func NewCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "List SD card files missing from the backup folder",
		Long: `Compare the files directly inside the SD card folder with those in the
backup folder, by name and ignoring case, and list every card file that has
no copy in the backup.

Exit status is 0 when nothing is missing, 1 when files are missing and 2 on
error.`,
		RunE: runCompare,
	}

	cmd.Flags().StringVarP(&compareFlags.Source, "source", "s", "", "SD card folder")
	cmd.Flags().StringVarP(&compareFlags.Dest, "dest", "d", "", "backup folder")
	cmd.Flags().BoolVar(&compareFlags.IgnoreExtras, "ignore-extras", false, "skip GoPro thumbnail and proxy files (.THM, .LRV)")
	cmd.Flags().StringSliceVar(&compareFlags.Exclude, "exclude", []string{}, "extra glob patterns skipped with --ignore-extras")
	cmd.Flags().StringVarP(&compareFlags.Output, "output", "o", "human", "output format: human, json")
	cmd.Flags().StringVar(&compareFlags.Report, "report", "", "write missing files report to file")
	cmd.Flags().StringVar(&compareFlags.ReportFormat, "report-format", "human", "missing files report format: human, json")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newSession(cmd, compareFlags.Output)
	if err != nil {
		return err
	}
	defer s.close(ctx)
	s.enableMetrics(ctx)

	// Exclude patterns
	if len(compareFlags.Exclude) > 0 {
		s.cfg.Filter.Exclude = append(s.cfg.Filter.Exclude, compareFlags.Exclude...)
	}

	filter, err := s.cfg.BuildFilter()
	if err != nil {
		return s.fail(ctx, err)
	}

	source, err := platform.ResolveFolder(compareFlags.Source)
	if err != nil {
		return s.fail(ctx, err)
	}
	dest, err := platform.ResolveFolder(compareFlags.Dest)
	if err != nil {
		return s.fail(ctx, err)
	}

	if source != "" && platform.SamePath(source, dest) {
		s.logger.Warn(ctx, "source and destination are the same folder", logging.Fields{"path": source})
	}

	reconciler := compare.NewReconciler(storage.NewLocal(), filter, s.logger)

	report, err := reconciler.FindMissing(ctx, source, dest, compareFlags.IgnoreExtras)
	if err != nil {
		return s.fail(ctx, err)
	}

	if s.metrics != nil {
		s.metrics.ObserveComparison(report)
	}

	if err := s.formatter.Comparison(s.out, report); err != nil {
		return err
	}

	// Write missing files report if requested
	if compareFlags.Report != "" {
		if err := output.WriteMissingReport(report, compareFlags.Report, compareFlags.ReportFormat); err != nil {
			return s.fail(ctx, fmt.Errorf("failed to write missing files report: %w", err))
		}
	}

	if status := report.Status(); status != models.StatusSuccess {
		return &StatusError{Status: status}
	}
	return nil
}
