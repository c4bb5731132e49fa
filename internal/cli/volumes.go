package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var volumesOutput string

// NewVolumesCommand creates the volumes command
func NewVolumesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volumes",
		Short: "List mounted volumes and whether they are removable",
		Long: `List the volumes used by the removable-drive check of 'sdverify purge'.
A folder on a volume marked removable is purged without the drive prompt.`,
		RunE: runVolumes,
	}

	cmd.Flags().StringVarP(&volumesOutput, "output", "o", "human", "output format: human, json")

	return cmd
}

func runVolumes(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := newSession(cmd, volumesOutput)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	volumes, err := systemVolumes().ListVolumes()
	if err != nil {
		return s.fail(ctx, fmt.Errorf("failed to list volumes: %w", err))
	}

	return s.formatter.Volumes(s.out, volumes)
}
