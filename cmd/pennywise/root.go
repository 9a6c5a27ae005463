package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pennywise/internal/app"
	"pennywise/internal/config"
	apperrors "pennywise/internal/errors"
	"pennywise/internal/logger"
)

// opener builds the client core for one invocation.
type opener func(configPath string) (*app.App, error)

func openApp(configPath string) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return app.New(cfg.Client, app.Deps{Logger: logger.Get()})
}

type cli struct {
	root       *cobra.Command
	open       opener
	configPath string
	app        *app.App
}

func newCLI(open opener) *cli {
	if open == nil {
		open = openApp
	}
	c := &cli{open: open}

	c.root = &cobra.Command{
		Use:           "pennywise",
		Short:         "Monthly budgets, categories and expenses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(c.configPath)
			if err != nil {
				return err
			}
			c.app = a
			_, err = a.RestoreSession(cmd.Context())
			return err
		},
	}
	c.root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "config.yaml", "path to the config file")

	c.root.AddCommand(
		c.registerCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.budgetsCmd(),
		c.expensesCmd(),
		c.currencyCmd(),
		c.flagsCmd(),
		c.accessCmd(),
		c.upgradeCmd(),
		c.restoreCmd(),
		c.aiBudgetCmd(),
		c.reportCmd(),
	)
	return c
}

func (c *cli) execute(ctx context.Context, args []string) error {
	c.root.SetArgs(args)
	err := c.root.ExecuteContext(ctx)
	if c.app != nil {
		if closeErr := c.app.Close(); closeErr != nil {
			logger.Get().Warnw("closing client", "error", closeErr)
		}
		c.app = nil
	}
	return err
}

// userID returns the signed-in user or a hint to log in.
func (c *cli) userID() (string, error) {
	id, err := c.app.UserID()
	if errors.Is(err, app.ErrNotSignedIn) {
		return "", errors.New("not signed in, run `pennywise login` first")
	}
	return id, err
}

// describe renders err the way the app shows request failures.
func describe(err error) string {
	var reqErr *apperrors.RequestError
	if !errors.As(err, &reqErr) {
		return "Error: " + err.Error()
	}
	p := apperrors.Describe(err)
	msg := fmt.Sprintf("%s: %s", p.Title, p.Message)
	if p.CanRetry {
		msg += " (try again)"
	}
	return msg
}
