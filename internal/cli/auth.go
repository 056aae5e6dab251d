package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/justsurfingit/jobdash/internal/auth"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/spf13/cobra"
)

type credentials struct {
	email    string
	password string
	name     string
}

func (c *credentials) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.email, "email", "", "account email")
	cmd.Flags().StringVar(&c.password, "password", "", "account password, read from stdin when empty")
	_ = cmd.MarkFlagRequired("email")
}

// resolvePassword reads the password from in when no flag was given.
func (c *credentials) resolvePassword(cmd *cobra.Command) error {
	if c.password != "" {
		return nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read password: %w", err)
	}
	c.password = strings.TrimSpace(line)
	if c.password == "" {
		return errors.New("password is required")
	}
	return nil
}

func (a *app) loginCmd() *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:         "login",
		Short:       "Sign in and save the session",
		Args:        cobra.NoArgs,
		Annotations: guestOnly(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.resolvePassword(cmd); err != nil {
				return err
			}
			pair, err := a.api.Login(cmd.Context(), &dtos.LoginRequest{Email: creds.email, Password: creds.password})
			if err != nil {
				return err
			}
			return a.saveSession(cmd, creds.email, pair)
		},
	}
	creds.bind(cmd)
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:         "register",
		Short:       "Create an account and sign in",
		Args:        cobra.NoArgs,
		Annotations: guestOnly(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := creds.resolvePassword(cmd); err != nil {
				return err
			}
			req := &dtos.RegisterRequest{Email: creds.email, Password: creds.password, DisplayName: creds.name}
			pair, err := a.api.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.saveSession(cmd, creds.email, pair)
		},
	}
	creds.bind(cmd)
	cmd.Flags().StringVar(&creds.name, "name", "", "display name")
	return cmd
}

func (a *app) saveSession(cmd *cobra.Command, email string, pair auth.TokenPair) error {
	if a.baseURL != "" {
		if err := a.store.SetBaseURL(a.api.BaseURL); err != nil {
			return err
		}
	}
	if err := a.store.Login(email, pair.AccessToken, pair.RefreshToken); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", email)
	return nil
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "logout",
		Short:       "Forget the saved session",
		Args:        cobra.NoArgs,
		Annotations: authOnly(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}
