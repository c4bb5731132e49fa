package cli

import (
	"errors"
	"fmt"

	"github.com/sdejongh/sdverify/pkg/models"
	"github.com/spf13/cobra"
)

// StatusError ends a command with the exit code of Status. Its output has
// already been printed by the command.
type StatusError struct {
	Status models.Status
	Err    error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// NewRootCommand builds the sdverify command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sdverify",
		Short: "Verify camera SD cards against a backup before wiping them",
		Long: `sdverify checks that every file in an SD card folder has been copied to a
backup folder, matching files by name. Once verified, it can delete the
card's files, refusing to touch fixed drives unless you insist.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(NewCountCommand())
	rootCmd.AddCommand(NewCompareCommand())
	rootCmd.AddCommand(NewPurgeCommand())
	rootCmd.AddCommand(NewVolumesCommand())
	rootCmd.AddCommand(NewHistoryCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the command tree and returns the process exit code
func Execute(rootCmd *cobra.Command) int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return ExitCode(err)
}

// ExitCode maps a command error to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status.ExitCode()
	}
	return models.StatusFailed.ExitCode()
}
