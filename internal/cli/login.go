package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/renalcare/internal/domain"
)

// LoginOptions holds flags for the login command.
type LoginOptions struct {
	*RootOptions
	Email    string
	Name     string
	Password string
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in, registering the email on first use",
		Long: `Make a user active. An email seen for the first time is registered
with the given name (or the part before "@" when no name is given).
A known email logs straight in and its stored profile is kept.

Example:
  renalcare login --email ann@example.com --name Ann`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				user, err := app.Gate.Login(ctx, domain.User{
					Email:    opts.Email,
					Name:     opts.Name,
					Password: opts.Password,
				})
				if err != nil {
					return fail(f, err)
				}
				if f.Structured() {
					return f.Success(user)
				}
				return f.Success(fmt.Sprintf("Logged in as %s <%s>", user.Name, user.Email))
			})
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name for a new user")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password stored with a new user (not verified)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "logout",
		Short:         "Log out; recorded data is kept",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				if err := app.Gate.Logout(ctx); err != nil {
					return fail(f, err)
				}
				if f.Structured() {
					return f.Success(map[string]bool{"loggedOut": true})
				}
				return f.Success("Logged out")
			})
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "whoami",
		Short:         "Show the active user",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(rootOpts, cmd)
		},
	}
}

func runWhoami(opts *RootOptions, cmd *cobra.Command) error {
	return withApp(opts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
		state, err := app.Tracker.State(ctx)
		if err != nil {
			return fail(f, err)
		}
		if f.Structured() {
			return f.Success(state.User)
		}
		return f.Success(fmt.Sprintf("%s <%s>", state.User.Name, state.User.Email))
	})
}

// NewUsersCommand creates the users command.
func NewUsersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "users",
		Short:         "List saved users",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, app *App, f *OutputFormatter) error {
				users := app.Tracker.SavedUsers()
				if f.Structured() {
					return f.Success(users)
				}
				if len(users) == 0 {
					return f.Success("No saved users")
				}
				active, _ := app.Projector.ActiveEmail(ctx)
				tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "\tEMAIL\tNAME\tSTAGE")
				for _, u := range users {
					marker := ""
					if u.Email == active {
						marker = "*"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, u.Email, u.Name, u.CKDStage)
				}
				return tw.Flush()
			})
		},
	}
}
