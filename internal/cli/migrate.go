package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/Keeper/internal/repo"
	"github.com/shaiso/Keeper/internal/telemetry"
)

func newMigrateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations to the audit mirror database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Audit.MirrorDSN == "" {
				return fmt.Errorf("audit.mirror_dsn is not configured")
			}

			pool, err := repo.NewPool(ctx, cfg.Audit.MirrorDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := repo.Migrate(ctx, pool, telemetry.FromContext(ctx)); err != nil {
				return err
			}

			g.output(cmd).Success("Migrations applied")
			return nil
		},
	}
}
