package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/Keeper/internal/audit"
	"github.com/shaiso/Keeper/internal/domain"
	"github.com/shaiso/Keeper/internal/repo"
)

func newAuditCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit log",
	}

	cmd.AddCommand(newAuditTailCmd(g))
	return cmd
}

func newAuditTailCmd(g *globals) *cobra.Command {
	var (
		n      int
		mirror bool
		kind   string
	)

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show the last audit entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := g.output(cmd)

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}

			var entries []domain.AuditEntry
			if mirror {
				if cfg.Audit.MirrorDSN == "" {
					return fmt.Errorf("audit.mirror_dsn is not configured")
				}
				pool, err := repo.NewPool(ctx, cfg.Audit.MirrorDSN)
				if err != nil {
					return err
				}
				defer pool.Close()

				entries, err = repo.NewAuditRepo(pool).Recent(ctx, repo.AuditFilter{
					Kind:  domain.OperationKind(kind),
					Limit: n,
				})
				if err != nil {
					return err
				}
			} else {
				entries, err = audit.Tail(cfg.Audit.Path, n)
				if err != nil {
					return err
				}
				entries = filterKind(entries, domain.OperationKind(kind))
			}

			printEntries(out, entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "lines", "n", 20, "Number of entries to show")
	cmd.Flags().BoolVar(&mirror, "mirror", false, "Read from the PostgreSQL mirror instead of the file")
	cmd.Flags().StringVar(&kind, "kind", "", "Only show entries of this kind (deploy or backup)")
	return cmd
}

func filterKind(entries []domain.AuditEntry, kind domain.OperationKind) []domain.AuditEntry {
	if kind == "" {
		return entries
	}
	filtered := entries[:0]
	for _, e := range entries {
		if e.Kind == kind {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

func printEntries(out *Output, entries []domain.AuditEntry) {
	headers := []string{"TIME", "RUN", "KIND", "PHASE", "OUTCOME", "DURATION_MS", "MESSAGE"}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
			shortID(e.RunID.String()),
			string(e.Kind),
			e.Phase,
			string(e.Outcome),
			strconv.FormatInt(e.DurationMs, 10),
			e.Message,
		}
	}

	if entries == nil {
		entries = []domain.AuditEntry{}
	}
	out.Print(headers, rows, entries)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
