package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/sdejongh/sdverify/internal/platform"
	"github.com/sdejongh/sdverify/pkg/guard"
	"github.com/sdejongh/sdverify/pkg/journal"
	"github.com/sdejongh/sdverify/pkg/logging"
	"github.com/sdejongh/sdverify/pkg/models"
	"github.com/sdejongh/sdverify/pkg/output"
	"github.com/sdejongh/sdverify/pkg/storage"
	"github.com/sdejongh/sdverify/pkg/volume"
	"github.com/spf13/cobra"
)

// PurgeFlags holds purge command flags
type PurgeFlags struct {
	Source          string
	Yes             bool
	ForceUnverified bool
	Output          string
}

var purgeFlags PurgeFlags

// systemVolumes lists the volumes used for the removable-drive check.
// Replaced in tests.
var systemVolumes = volume.System

// NewPurgeCommand creates the purge command
func NewPurgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete the files of a verified SD card folder",
		Long: `Delete every file directly inside the SD card folder, then the folder
itself if it has no subfolders.

Two confirmations are required: one for the deletion and, when the folder is
not on a removable drive, one to accept the drive. On a terminal both are
asked interactively; otherwise pass --yes and, if needed, --force-unverified.
Run 'sdverify compare' first: purge does not check the backup.`,
		RunE: runPurge,
	}

	cmd.Flags().StringVarP(&purgeFlags.Source, "source", "s", "", "SD card folder")
	cmd.Flags().BoolVarP(&purgeFlags.Yes, "yes", "y", false, "confirm the deletion without prompting")
	cmd.Flags().BoolVar(&purgeFlags.ForceUnverified, "force-unverified", false, "accept a folder that is not on a removable drive")
	cmd.Flags().StringVarP(&purgeFlags.Output, "output", "o", "human", "output format: human, json")

	return cmd
}

func runPurge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newSession(cmd, purgeFlags.Output)
	if err != nil {
		return err
	}
	defer s.close(ctx)
	s.enableMetrics(ctx)

	path, err := platform.ResolveFolder(purgeFlags.Source)
	if err != nil {
		return s.fail(ctx, err)
	}
	if path == "" {
		return s.fail(ctx, &models.SelectionError{Sides: []models.Side{models.SideSource}})
	}

	backend := storage.NewLocal()
	count, err := backend.CountFiles(path)
	if err != nil {
		var accessErr *models.DirectoryAccessError
		if errors.As(err, &accessErr) {
			accessErr.Side = models.SideSource
		}
		return s.fail(ctx, err)
	}

	interactive := isInteractive(cmd.InOrStdin())
	ask := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())

	// First gate: the deletion itself
	confirmDelete := purgeFlags.Yes
	if !confirmDelete {
		if !interactive {
			return s.fail(ctx, fmt.Errorf("%w: pass --yes to delete without a prompt", guard.ErrDeleteNotConfirmed))
		}
		confirmDelete, err = ask.confirm(fmt.Sprintf("Delete %d files from %s?", count, path))
		if err != nil {
			return s.fail(ctx, err)
		}
		if !confirmDelete {
			return s.fail(ctx, guard.ErrDeleteNotConfirmed)
		}
	}

	opts := []guard.Option{guard.WithLogger(s.logger)}

	if s.cfg.Journal.Enabled {
		if j := openJournal(ctx, s); j != nil {
			defer j.Close()
			opts = append(opts, guard.WithRecorder(j))
		}
	}
	if s.metrics != nil {
		opts = append(opts, guard.WithRecorder(s.metrics))
	}

	var progress *output.PurgeProgress
	if s.cfg.Output.Progress && s.formatter.Name() == "human" {
		progress = output.NewPurgeProgress(s.errOut, !isTerminal(s.errOut))
		opts = append(opts, guard.WithProgress(progress.Update))
	}

	g := guard.New(backend, systemVolumes(), opts...)

	// Second gate: the drive
	verdict := g.Verify(ctx, path)
	if verdict.NeedsOverride() {
		confirmed := purgeFlags.ForceUnverified
		if !confirmed {
			if !interactive {
				return s.fail(ctx, fmt.Errorf("%w: %s (pass --force-unverified to accept it)", guard.ErrDriveNotVerified, path))
			}
			confirmed, err = ask.confirm(fmt.Sprintf("%s is not on a removable drive. Delete its files anyway?", path))
			if err != nil {
				return s.fail(ctx, err)
			}
		}
		verdict = verdict.Override(confirmed)
		s.logger.Info(ctx, "drive check override", logging.Fields{"path": path, "accepted": confirmed})
	}

	result, err := g.Purge(ctx, path, verdict, confirmDelete)
	if progress != nil {
		progress.Finish()
	}

	if result == nil {
		return s.fail(ctx, err)
	}

	if fmtErr := s.formatter.Purge(s.out, result, err); fmtErr != nil {
		return fmtErr
	}
	if err != nil {
		s.logger.Error(ctx, "purge failed", err, logging.Fields{"deleted": len(result.Deleted)})
		return &StatusError{Status: models.StatusFailed, Err: err}
	}
	return nil
}

// openJournal opens the purge journal. Failures are logged and the purge
// goes ahead unjournaled.
func openJournal(ctx context.Context, s *session) *journal.Journal {
	path, err := s.cfg.JournalPath()
	if err != nil {
		s.logger.Warn(ctx, "cannot locate purge journal", logging.Fields{"error": err.Error()})
		return nil
	}

	j, err := journal.Open(path)
	if err != nil {
		s.logger.Warn(ctx, "cannot open purge journal", logging.Fields{"error": err.Error(), "path": path})
		return nil
	}
	return j
}
