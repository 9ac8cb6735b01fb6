// Package cli implements planctl, the maintenance command line for a
// planboard data directory: backups, accounts, the goods catalog, the
// change-log, the security log and the health probe.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/planboard/internal/server"
	"github.com/dmitrijs2005/planboard/internal/server/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DataDir    string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for planctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "planctl",
		Short:         "planctl - planboard maintenance tool",
		Long:          "Maintenance commands for a planboard data directory: backups, users, catalog, change-log and security log.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "JSON config file")
	cmd.PersistentFlags().StringVarP(&opts.DataDir, "data-dir", "d", "", "data directory (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))
	cmd.AddCommand(NewCatalogCommand(opts))
	cmd.AddCommand(NewChangeLogCommand(opts))
	cmd.AddCommand(NewSecurityCommand(opts))
	cmd.AddCommand(NewHealthCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// loadConfig layers defaults, the optional JSON file and --data-dir.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	if o.ConfigPath != "" {
		if err := config.LoadFile(cfg, o.ConfigPath); err != nil {
			return nil, err
		}
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	cfg.LogLevel = "warn"
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	// One-shot commands never start the scheduler.
	cfg.BackupSchedule = ""
	return cfg, nil
}

// withApp opens the data directory, runs fn with the system principal and
// closes the app afterwards.
func (o *RootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *server.App) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	app, err := server.NewAppWithOutput(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(server.SystemContext(ctx), app)
}

func (o *RootOptions) printer(cmd *cobra.Command) *printer {
	return &printer{format: o.Format, w: cmd.OutOrStdout()}
}
