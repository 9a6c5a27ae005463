package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"pennywise/internal/session"
)

// readPassword prompts on a terminal and otherwise reads one line from in.
func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		return string(raw), err
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printSession(cmd *cobra.Command, s *session.Session) {
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s plan)\n", s.User.Email, s.User.Plan)
}

func (c *cli) registerCmd() *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return err
			}
			s, err := c.app.Register(cmd.Context(), email, password, name)
			if err != nil {
				return err
			}
			printSession(cmd, s)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var email, code, redirectURI string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password or a Google authorization code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				s   *session.Session
				err error
			)
			switch {
			case code != "":
				s, err = c.app.LoginWithGoogle(cmd.Context(), code, redirectURI)
			case email != "":
				var password string
				if password, err = readPassword(cmd); err != nil {
					return err
				}
				s, err = c.app.Login(cmd.Context(), email, password)
			default:
				return fmt.Errorf("either --email or --google-code is required")
			}
			if err != nil {
				return err
			}
			printSession(cmd, s)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&code, "google-code", "", "Google OAuth authorization code")
	cmd.Flags().StringVar(&redirectURI, "redirect-uri", "", "redirect URI used to obtain the code")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget local data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}
