// Package cli is the jobdash terminal client.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/justsurfingit/jobdash/internal/apierr"
	"github.com/justsurfingit/jobdash/internal/client"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Commands carry an "access" annotation checked before they run.
const (
	annotationAccess = "access"
	accessAuth       = "auth"
	accessGuest      = "guest"
)

type app struct {
	configPath string
	baseURL    string
	verbose    bool

	store  *client.AuthStore
	api    *client.Client
	logger *zap.Logger
}

func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		printError(root.ErrOrStderr(), err)
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "jobdash",
		Short:             "Track job applications from the terminal",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "session file (default $JOBDASH_CONFIG or <user config dir>/jobdash/config.yaml)")
	flags.StringVar(&a.baseURL, "server", "", "API base URL, saved on login")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.jobsCmd(),
		a.countsCmd(),
		a.docsCmd(),
		a.analyticsCmd(),
		a.settingsCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	a.logger = zap.NewNop()
	if a.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		a.logger = logger
	}

	path := a.configPath
	if path == "" {
		p, err := client.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	store, err := client.LoadAuthStore(path)
	if err != nil {
		return err
	}
	a.store = store

	baseURL := a.baseURL
	if baseURL == "" {
		baseURL = store.Model().BaseURL
	}
	a.api = client.New(baseURL, store, a.logger)
	a.logger.Debug("session loaded", zap.String("config", path), zap.String("server", baseURL))

	switch access(cmd) {
	case accessAuth:
		return client.RequireAuth(store)
	case accessGuest:
		return client.GuestOnly(store)
	}
	return nil
}

// access returns the nearest "access" annotation of cmd or its parents.
func access(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if v, ok := c.Annotations[annotationAccess]; ok {
			return v
		}
	}
	return ""
}

func authOnly() map[string]string {
	return map[string]string{annotationAccess: accessAuth}
}

func guestOnly() map[string]string {
	return map[string]string{annotationAccess: accessGuest}
}

// printError reports err as a notice. Auth failures get a login hint.
func printError(w io.Writer, err error) {
	if errors.Is(err, client.ErrLoginRequired) || errors.Is(err, client.ErrAlreadyLoggedIn) {
		fmt.Fprintln(w, err)
		return
	}
	printNotice(w, apierr.Classify(err))
}
