// Package cli implements the patrimonio command-line client.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/patrimonio/internal/client/api"
	"github.com/dmitrijs2005/patrimonio/internal/client/config"
	"github.com/dmitrijs2005/patrimonio/internal/common"
)

var errNotLoggedIn = errors.New("not logged in, run 'patrimonio login' first")

type App struct {
	config *config.Config
	client *api.Client
	tokens *TokenStore
	reader *bufio.Reader
	out    io.Writer

	configPath string
	serverURL  string
}

func NewApp(in io.Reader, out io.Writer) *App {
	return &App{reader: bufio.NewReader(in), out: out}
}

// setup loads the configuration, applies --server and restores the saved
// token. It runs before every command.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("server") {
		cfg.ServerURL = a.serverURL
	}
	a.config = cfg

	tokens, err := NewTokenStore(cfg.TokenDir)
	if err != nil {
		return err
	}
	a.tokens = tokens

	a.client = api.NewClient(cfg.ServerURL, cfg.RequestTimeout)
	token, err := tokens.Load()
	if err != nil {
		return err
	}
	a.client.SetToken(token)
	return nil
}

// requireLogin fails early when no token has been saved.
func (a *App) requireLogin(cmd *cobra.Command, args []string) error {
	token, err := a.tokens.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return errNotLoggedIn
	}
	return nil
}

// explain turns an API error into a message for the user.
func explain(err error) error {
	if errors.Is(err, common.ErrorUnauthorized) {
		return fmt.Errorf("%w (your session may have expired, run 'patrimonio login')", err)
	}
	if errors.Is(err, api.ErrUnavailable) {
		return fmt.Errorf("cannot reach the server: %w", err)
	}
	return err
}

// RootCommand builds the command tree.
func (a *App) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "patrimonio",
		Short:         "patrimonio - personal finance tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.out)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a JSON config file")
	root.PersistentFlags().StringVar(&a.serverURL, "server", "", "patrimonio API server URL (overrides config)")

	root.AddCommand(
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.categoriesCmd(),
		a.entriesCmd(),
		a.summaryCmd(),
		a.exportCmd(),
		a.versionCmd(),
	)
	return root
}
