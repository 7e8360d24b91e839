package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/Keeper/internal/app"
	"github.com/shaiso/Keeper/internal/config"
	"github.com/shaiso/Keeper/internal/telemetry"
)

// globals — значения глобальных флагов.
type globals struct {
	configPath string
	jsonOutput bool
}

func (g *globals) loadConfig() (*config.Config, error) {
	return config.Load(g.configPath)
}

func (g *globals) output(cmd *cobra.Command) *Output {
	return NewOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), g.jsonOutput)
}

// openApp загружает конфигурацию и открывает App.
func (g *globals) openApp(ctx context.Context) (*app.App, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.Open(ctx, cfg, telemetry.FromContext(ctx))
}

// NewRootCmd создаёт корневую команду keeper.
func NewRootCmd(version string) *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "keeper",
		Short:         "Keeper — backup and deploy orchestration",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (default $KEEPER_CONFIG or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVar(&g.jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(
		newDeployCmd(g),
		newBackupCmd(g),
		newAuditCmd(g),
		newMigrateCmd(g),
		newEventsCmd(g),
	)

	return rootCmd
}

// CommandName возвращает имя выполненной команды без имени программы
// ("audit tail").
func CommandName(cmd *cobra.Command) string {
	path := cmd.CommandPath()
	if root := cmd.Root(); root != cmd {
		path = strings.TrimPrefix(path, root.Name()+" ")
	}
	return path
}
