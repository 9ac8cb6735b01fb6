package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/filex"
	"github.com/dmitrijs2005/planboard/internal/server"
	"github.com/dmitrijs2005/planboard/internal/server/models"
)

// sampleCatalog is written by "catalog init" on a fresh data directory.
var sampleCatalog = models.Catalog{Categories: []models.Category{
	{Name: "Фрукти", Items: []models.Item{{Name: "Яблука", Weight: 1.0, PalletCoef: 1.0}}},
	{Name: "Овочі", Items: []models.Item{{Name: "Морква", Weight: 0.5, PalletCoef: 1.2}}},
	{Name: "Молочні", Items: []models.Item{{Name: "Молоко", Weight: 1.0, PalletCoef: 0.8}}},
}}

var sampleWarehouses = []string{"Склад №1", "Склад №2", "Склад №3"}

// NewCatalogCommand groups the goods catalog commands.
func NewCatalogCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect, import and export the goods catalog",
	}
	cmd.AddCommand(newCatalogListCommand(opts))
	cmd.AddCommand(newCatalogWarehousesCommand(opts))
	cmd.AddCommand(newCatalogExportCommand(opts))
	cmd.AddCommand(newCatalogImportCommand(opts))
	cmd.AddCommand(newCatalogInitCommand(opts))
	return cmd
}

func newCatalogListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the catalog grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				c, err := app.Services().Catalog.List(ctx)
				if err != nil {
					return err
				}
				return opts.printer(cmd).Print(&c, func(w io.Writer) {
					var rows [][]string
					for _, cat := range c.Categories {
						for _, it := range cat.Items {
							rows = append(rows, []string{
								cat.Name, it.Name,
								strconv.FormatFloat(it.Weight, 'f', -1, 64),
								strconv.FormatFloat(it.PalletCoef, 'f', -1, 64),
							})
						}
					}
					table(w, []string{"CATEGORY", "NAME", "WEIGHT", "PALLET"}, rows)
				})
			})
		},
	}
}

func newCatalogWarehousesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "warehouses",
		Short: "Print the warehouse list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				ws, err := app.Services().Warehouses.List(ctx)
				if err != nil {
					return err
				}
				return opts.printer(cmd).Print(ws, func(w io.Writer) {
					for _, name := range ws {
						fmt.Fprintln(w, name)
					}
				})
			})
		},
	}
}

func newCatalogExportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Copy the stored workbook to file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				raw, err := app.Services().Catalog.ExportRaw(ctx)
				if err != nil {
					return err
				}
				if err := filex.WriteFileAtomic(args[0], raw, 0o644); err != nil {
					return err
				}
				return opts.printer(cmd).Message("exported %d bytes to %s", len(raw), args[0])
			})
		},
	}
}

func newCatalogImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the stored workbook with file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				if err := app.Services().Catalog.Import(ctx, raw); err != nil {
					return err
				}
				return opts.printer(cmd).Message("imported %s", args[0])
			})
		},
	}
}

func newCatalogInitCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a sample catalog when none exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				err := app.Repositories().CatalogFile().Seed(ctx, sampleCatalog, sampleWarehouses)
				if errors.Is(err, common.ErrorConflict) {
					return opts.printer(cmd).Message("catalog already exists, left unchanged")
				}
				if err != nil {
					return err
				}
				return opts.printer(cmd).Message("sample catalog written with %d items", sampleCatalog.Len())
			})
		},
	}
}
