package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/Keeper/internal/domain"
	"github.com/shaiso/Keeper/internal/mq"
	"github.com/shaiso/Keeper/internal/telemetry"
)

func newEventsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect events published to " + string(mq.ExchangeEvents),
	}

	cmd.AddCommand(newEventsWatchCmd(g))
	return cmd
}

func newEventsWatchCmd(g *globals) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print events as they are published until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := g.output(cmd)
			logger := telemetry.FromContext(ctx)

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Events.AMQPURL == "" {
				return fmt.Errorf("events.amqp_url is not configured")
			}

			conn, err := mq.NewConnection(cfg.Events.AMQPURL, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			queue, err := mq.DeclareWatchQueue(ctx, conn, mq.RoutingKey(key))
			if err != nil {
				return err
			}

			consumer := mq.NewConsumer(conn, logger, queue, func(_ context.Context, msg *mq.Message) error {
				printEvent(out, g.jsonOutput, msg)
				return nil
			})

			err = consumer.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&key, "key", string(mq.RoutingKeyAll), "Routing key pattern (deploy.completed, backup.completed, #)")
	return cmd
}

func printEvent(out *Output, jsonMode bool, msg *mq.Message) {
	if jsonMode {
		out.JSONLine(msg)
		return
	}

	ts := msg.Timestamp.UTC().Format("2006-01-02T15:04:05Z")
	switch p := msg.Payload.(type) {
	case *domain.DeploymentRecord:
		fmt.Fprintf(out.w, "%s %s %s process=%s commit=%s outcome=%s %s\n",
			ts, msg.Host, msg.Type, p.Process, p.Commit, p.Outcome, p.Error)
	case *domain.BackupArtifact:
		fmt.Fprintf(out.w, "%s %s %s database=%s key=%s outcome=%s %s\n",
			ts, msg.Host, msg.Type, p.Database, p.RemoteKey, p.Outcome, p.Error)
	}
}
