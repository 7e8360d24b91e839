package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Keeper/internal/domain"
)

func newDeployCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Fetch the configured branch, install dependencies and restart the process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := g.output(cmd)

			a, err := g.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			deployer, err := a.Deployer()
			if err != nil {
				return err
			}

			rec, err := deployer.Run(ctx)
			if err != nil {
				return err
			}

			out.Success("Deployed " + rec.Process + " at " + rec.Commit)
			printDeployment(out, rec)
			return nil
		},
	}
}

func printDeployment(out *Output, rec *domain.DeploymentRecord) {
	out.Print(
		[]string{"ID", "PROCESS", "BRANCH", "COMMIT", "OUTCOME", "DURATION"},
		[][]string{{
			rec.ID.String(),
			rec.Process,
			rec.Branch,
			rec.Commit,
			string(rec.Outcome),
			rec.Duration().Round(time.Millisecond).String(),
		}},
		rec,
	)
}
