package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/patrimonio/internal/common"
)

type credentialsFunc func(ctx context.Context, username, password string) (string, error)

// authenticate asks for the missing credentials, calls fn and saves the
// returned token.
func (a *App) authenticate(ctx context.Context, username string, fn credentialsFunc) (string, error) {
	var err error
	if username == "" {
		username, err = GetSimpleText(a.reader, "Username", a.out)
		if err != nil {
			return "", err
		}
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(password)

	token, err := fn(ctx, username, string(password))
	if err != nil {
		return "", explain(err)
	}
	if err := a.tokens.Save(token); err != nil {
		return "", fmt.Errorf("save token: %w", err)
	}
	return username, nil
}

func (a *App) registerCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := a.authenticate(cmd.Context(), username, a.client.Register)
			if err != nil {
				return err
			}
			green.Fprintf(a.out, "Registered and logged in as %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when empty)")
	return cmd
}

func (a *App) loginCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := a.authenticate(cmd.Context(), username, a.client.Login)
			if err != nil {
				return err
			}
			green.Fprintf(a.out, "Logged in as %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username (prompted when empty)")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tokens.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Short:   "Show the logged-in user",
		Args:    cobra.NoArgs,
		PreRunE: a.requireLogin,
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := a.client.Me(cmd.Context())
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(a.out, "%s ", me.Username)
			cyan.Fprintf(a.out, "(%s)\n", me.ID)
			return nil
		},
	}
}
