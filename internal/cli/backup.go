package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Keeper/internal/domain"
	"github.com/shaiso/Keeper/internal/orchestrator"
)

func newBackupCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Dump the database, upload the dump and prune old local dumps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := g.output(cmd)

			a, err := g.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			runner, err := a.BackupRunner(ctx)
			if err != nil {
				return err
			}

			art, err := runner.Run(ctx)
			if errors.Is(err, orchestrator.ErrSkipped) {
				out.Success("Backup skipped: " + art.Error)
				printArtifact(out, art)
				return nil
			}
			if err != nil {
				return err
			}

			out.Success("Backup stored at " + art.RemoteKey)
			printArtifact(out, art)
			return nil
		},
	}
}

func printArtifact(out *Output, art *domain.BackupArtifact) {
	out.Print(
		[]string{"ID", "DATABASE", "FILE", "SIZE", "OUTCOME"},
		[][]string{{
			art.ID.String(),
			art.Database,
			art.FileName(),
			strconv.FormatInt(art.Size, 10),
			string(art.Outcome),
		}},
		art,
	)
}
