package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/planboard/internal/server"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

// NewChangeLogCommand prints the change-log.
func NewChangeLogCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Inspect the change-log",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "Print change-log entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				entries, err := app.Services().ChangeLog.List(ctx)
				if err != nil {
					return err
				}
				if limit > 0 && len(entries) > limit {
					entries = entries[:limit]
				}
				return opts.printer(cmd).Print(entries, func(w io.Writer) {
					for _, e := range entries {
						fmt.Fprintln(w, formatEntry(e))
					}
				})
			})
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 0, "maximum entries to print (0 prints all)")
	cmd.AddCommand(list)
	return cmd
}

// formatEntry renders "<dateTime> <user> key=value ..." with the
// remaining keys in sorted order.
func formatEntry(e models.ChangeEntry) string {
	s := fmt.Sprintf("%v %v", e["dateTime"], e["user"])
	keys := make([]string, 0, len(e))
	for k := range e {
		if k != "dateTime" && k != "user" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		v, err := json.Marshal(e[k])
		if err != nil {
			v = []byte(fmt.Sprint(e[k]))
		}
		s += " " + k + "=" + string(v)
	}
	return s
}

// NewSecurityCommand prints the security log.
func NewSecurityCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "security",
		Short: "Inspect the security log",
	}

	var n int
	tail := &cobra.Command{
		Use:   "tail",
		Short: "Print the last security events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				lines, err := app.Services().Security.Tail(ctx, n)
				if err != nil {
					return err
				}
				return opts.printer(cmd).Print(lines, func(w io.Writer) {
					for _, l := range lines {
						fmt.Fprintln(w, l)
					}
				})
			})
		},
	}
	tail.Flags().IntVarP(&n, "lines", "n", 50, "number of events")
	cmd.AddCommand(tail)
	return cmd
}

// NewHealthCommand reports which backing files are present.
func NewHealthCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Report data file health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				h := app.Services().Health.Check(ctx)
				return opts.printer(cmd).Print(h, func(w io.Writer) {
					fmt.Fprintf(w, "status: %s\n", h.Status)
					names := make([]string, 0, len(h.Files))
					for name := range h.Files {
						names = append(names, name)
					}
					slices.Sort(names)
					for _, name := range names {
						fmt.Fprintf(w, "  %-10s %v\n", name, h.Files[name])
					}
				})
			})
		},
	}
}
