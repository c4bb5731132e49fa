package cli

import (
	"context"
	"errors"

	"github.com/sdejongh/sdverify/internal/platform"
	"github.com/sdejongh/sdverify/pkg/logging"
	"github.com/sdejongh/sdverify/pkg/models"
	"github.com/sdejongh/sdverify/pkg/output"
	"github.com/sdejongh/sdverify/pkg/storage"
	"github.com/spf13/cobra"
)

// CountFlags holds count command flags
type CountFlags struct {
	Source string
	Dest   string
	Output string
}

var countFlags CountFlags

// NewCountCommand creates the count command
func NewCountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count the files directly inside the selected folders",
		Long: `Count the regular files directly inside the SD card folder and, if given,
the backup folder. Subfolders are not descended into.`,
		RunE: runCount,
	}

	cmd.Flags().StringVarP(&countFlags.Source, "source", "s", "", "SD card folder")
	cmd.Flags().StringVarP(&countFlags.Dest, "dest", "d", "", "backup folder")
	cmd.Flags().StringVarP(&countFlags.Output, "output", "o", "human", "output format: human, json")

	return cmd
}

func runCount(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newSession(cmd, countFlags.Output)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	selected := []struct {
		side models.Side
		path string
	}{
		{models.SideSource, countFlags.Source},
		{models.SideDestination, countFlags.Dest},
	}

	backend := storage.NewLocal()
	var counts []output.FolderCount
	failed := false

	for _, sel := range selected {
		path, err := platform.ResolveFolder(sel.path)
		if err != nil {
			return s.fail(ctx, err)
		}
		if path == "" {
			if sel.side == models.SideSource {
				return s.fail(ctx, &models.SelectionError{Sides: []models.Side{models.SideSource}})
			}
			continue
		}

		count := countFolder(backend, sel.side, path)
		if count.Err != nil {
			failed = true
			s.logger.Warn(ctx, "failed to count folder", logging.Fields{"side": string(sel.side), "path": path, "error": count.Err.Error()})
		}
		counts = append(counts, count)
	}

	if err := s.formatter.Counts(s.out, counts); err != nil {
		return err
	}

	if failed {
		return &StatusError{Status: models.StatusFailed}
	}
	return nil
}

func countFolder(backend storage.Backend, side models.Side, path string) output.FolderCount {
	count := output.FolderCount{Side: side, Path: path}

	entries, err := backend.ListFiles(path)
	if err != nil {
		var accessErr *models.DirectoryAccessError
		if errors.As(err, &accessErr) {
			accessErr.Side = side
		}
		count.Err = err
		return count
	}

	count.Files = len(entries)
	for _, e := range entries {
		count.Bytes += e.Size
	}
	return count
}
