package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/planboard/internal/common"
	"github.com/dmitrijs2005/planboard/internal/server"
	"github.com/dmitrijs2005/planboard/internal/server/auth"
	"github.com/dmitrijs2005/planboard/internal/server/services"
)

// NewUserCommand groups the account commands.
func NewUserCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserAddCommand(opts))
	cmd.AddCommand(newUserListCommand(opts))
	cmd.AddCommand(newUserDeleteCommand(opts))
	cmd.AddCommand(newUserPasswdCommand(opts))
	return cmd
}

func newUserAddCommand(opts *RootOptions) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account; the password is prompted for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := auth.ParseRole(role)
			if err != nil {
				return err
			}
			pw, err := getPasswords(cmd.ErrOrStderr(), "Password", "Confirm password")
			if err != nil {
				return err
			}
			if pw[0] != pw[1] {
				return common.NewValidationError("confirm_password", "mismatch", "passwords do not match")
			}
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				if err := app.Services().Users.Create(ctx, args[0], pw[0], r); err != nil {
					return err
				}
				return opts.printer(cmd).Message("user %s created with role %s", args[0], r)
			})
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", auth.RoleUser.String(), "role (viewer|user|super_admin)")
	return cmd
}

func newUserListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with role and last login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				list, err := app.Services().Users.ListAll(ctx)
				if err != nil {
					return err
				}
				stats, err := app.Services().Users.Stats(ctx)
				if err != nil {
					return err
				}
				out := struct {
					Users []services.UserInfo `json:"users"`
					Stats any                 `json:"stats"`
				}{list, stats}
				return opts.printer(cmd).Print(out, func(w io.Writer) {
					rows := make([][]string, 0, len(list))
					for _, u := range list {
						last := "never"
						if u.LastLogin != nil {
							last = u.LastLogin.Format(snapshotTimeLayout)
						}
						rows = append(rows, []string{u.Username, u.Role.String(), u.CreatedAt.Format(snapshotTimeLayout), last})
					}
					table(w, []string{"USERNAME", "ROLE", "CREATED", "LAST LOGIN"}, rows)
					fmt.Fprintf(w, "\ntotal %d: %d super_admin, %d user, %d viewer\n",
						stats.Total, stats.SuperAdmins, stats.Users, stats.Viewers)
				})
			})
		},
	}
}

func newUserDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				if err := app.Services().Users.Delete(ctx, args[0]); err != nil {
					return err
				}
				return opts.printer(cmd).Message("user %s deleted", args[0])
			})
		},
	}
}

// newUserPasswdCommand changes a password on behalf of its owner, so the
// current password is required just as in the profile page.
func newUserPasswdCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <username>",
		Short: "Change an account's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *server.App) error {
				u, err := app.Repositories().Users().Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("user %s: %w", args[0], err)
				}
				pw, err := getPasswords(cmd.ErrOrStderr(), "Current password", "New password", "Confirm new password")
				if err != nil {
					return err
				}
				ctx = auth.WithPrincipal(ctx, auth.Principal{Username: args[0], Role: u.Role})
				if err := app.Services().Users.ChangePassword(ctx, pw[0], pw[1], pw[2]); err != nil {
					return err
				}
				return opts.printer(cmd).Message("password changed for %s", args[0])
			})
		},
	}
}
