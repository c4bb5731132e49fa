package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sdejongh/sdverify/pkg/journal"
	"github.com/spf13/cobra"
)

// HistoryFlags holds history command flags
type HistoryFlags struct {
	Limit  int
	ID     string
	Find   string
	Output string
}

var historyFlags HistoryFlags

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past purges from the journal",
		Long: `Show the purges recorded in the journal, newest first. Use --id to list
the files deleted by one purge, or --find to look up a deleted file by name.`,
		RunE: runHistory,
	}

	cmd.Flags().IntVarP(&historyFlags.Limit, "limit", "n", 20, "number of purges to show")
	cmd.Flags().StringVar(&historyFlags.ID, "id", "", "list the files deleted by this purge")
	cmd.Flags().StringVar(&historyFlags.Find, "find", "", "find deleted files by name (case-insensitive)")
	cmd.Flags().StringVarP(&historyFlags.Output, "output", "o", "human", "output format: human, json")
	cmd.MarkFlagsMutuallyExclusive("id", "find")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newSession(cmd, historyFlags.Output)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	path, err := s.cfg.JournalPath()
	if err != nil {
		return s.fail(ctx, err)
	}

	// Don't create an empty journal just to report that it is empty
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return s.formatter.History(s.out, nil)
	}

	j, err := journal.Open(path)
	if err != nil {
		return s.fail(ctx, err)
	}
	defer j.Close()

	switch {
	case historyFlags.ID != "":
		files, err := j.Files(ctx, historyFlags.ID)
		if err != nil {
			return s.fail(ctx, fmt.Errorf("failed to read purge %s: %w", historyFlags.ID, err))
		}
		return s.formatter.PurgedFiles(s.out, files)

	case historyFlags.Find != "":
		files, err := j.FindFile(ctx, historyFlags.Find)
		if err != nil {
			return s.fail(ctx, fmt.Errorf("failed to search journal: %w", err))
		}
		return s.formatter.PurgedFiles(s.out, files)

	default:
		records, err := j.RecentPurges(ctx, historyFlags.Limit)
		if err != nil {
			return s.fail(ctx, fmt.Errorf("failed to read journal: %w", err))
		}
		return s.formatter.History(s.out, records)
	}
}
