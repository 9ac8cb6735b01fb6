package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/planboard/internal/server"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

const snapshotTimeLayout = "2006-01-02 15:04:05"

// NewBackupCommand groups the snapshot commands.
func NewBackupCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list and restore snapshots",
	}
	cmd.AddCommand(newBackupCreateCommand(opts))
	cmd.AddCommand(newBackupListCommand(opts))
	cmd.AddCommand(newBackupRestoreCommand(opts))
	cmd.AddCommand(newBackupStatsCommand(opts))
	return cmd
}

func newBackupCreateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Snapshot every data file now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				s, err := app.Services().Backups.Capture(ctx)
				if err != nil {
					return err
				}
				return opts.printer(cmd).Print(s, func(w io.Writer) {
					fmt.Fprintf(w, "created %s (%d files, %s)\n", s.ID, s.Files, s.SizeKB())
				})
			})
		},
	}
}

func newBackupListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List retained snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				list, err := app.Services().Backups.List(ctx)
				if err != nil {
					return err
				}
				return opts.printer(cmd).Print(list, func(w io.Writer) {
					printSnapshots(w, list)
				})
			})
		},
	}
}

func newBackupRestoreCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: "Restore a snapshot after taking a pre-restore snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				pre, err := app.Services().Backups.Restore(ctx, args[0])
				if err != nil {
					return err
				}
				out := map[string]string{"restored": args[0], "pre_restore": pre.ID}
				return opts.printer(cmd).Print(out, func(w io.Writer) {
					fmt.Fprintf(w, "restored %s (previous state saved as %s)\n", args[0], pre.ID)
				})
			})
		},
	}
}

func newBackupStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the snapshot count and recent snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				st, err := app.Services().Backups.Stats(ctx)
				if err != nil {
					return err
				}
				return opts.printer(cmd).Print(st, func(w io.Writer) {
					fmt.Fprintf(w, "total: %d\n", st.Total)
					printSnapshots(w, st.Snapshots)
				})
			})
		},
	}
}

func printSnapshots(w io.Writer, list []models.Snapshot) {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{s.ID, s.Timestamp.Format(snapshotTimeLayout), fmt.Sprint(s.Files), s.SizeKB()})
	}
	table(w, []string{"ID", "CREATED", "FILES", "SIZE"}, rows)
}
