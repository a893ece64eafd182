package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/patel-jhanvi/amrap-gym/internal/config"
	"github.com/patel-jhanvi/amrap-gym/internal/logger"
	"github.com/patel-jhanvi/amrap-gym/internal/store"
	"github.com/patel-jhanvi/amrap-gym/internal/viewmodel"
)

type app struct {
	out    io.Writer
	errOut io.Writer

	storeURL string
	token    string
	debug    bool

	client *store.Client
	vm     *viewmodel.ViewModel
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "gymctl",
		Short:         "Manage gyms, users and memberships in the AMRAP record store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.vm != nil {
				a.vm.Close()
			}
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.storeURL, "store-url", "", "record store base URL (default $GYMCTL_STORE_URL)")
	flags.StringVar(&a.token, "token", "", "operator bearer token (default $GYMCTL_TOKEN)")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging on stderr")

	root.AddCommand(
		a.gymsCmd(),
		a.usersCmd(),
		a.membershipsCmd(),
		a.loginCmd(),
		a.versionCmd(),
	)
	return root
}

func (a *app) setup() error {
	level := slog.LevelWarn
	if a.debug {
		level = slog.LevelDebug
	}
	logger.SetOutput(a.errOut, level)

	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if a.storeURL != "" {
		cfg.StoreURL = a.storeURL
	}
	if a.token != "" {
		cfg.Token = a.token
	}

	a.client = store.New(cfg.StoreURL, store.WithToken(cfg.Token), store.WithTimeout(cfg.Timeout))
	a.vm = viewmodel.New(a.client, viewmodel.WithConcurrency(cfg.FetchConcurrency))
	return nil
}

// settle turns a mutation result into command output. A stale refresh is
// reported but does not fail the command since the change was applied.
func (a *app) settle(err error, done string) error {
	if err != nil && !errors.Is(err, viewmodel.ErrStale) {
		return err
	}
	fmt.Fprintln(a.out, done)
	if err != nil {
		fmt.Fprintf(a.errOut, "warning: %v\n", err)
	}
	return nil
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange operator credentials for a bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, resp.Token)
			fmt.Fprintf(a.errOut, "token expires at %s\n", resp.ExpiresAt.Format("2006-01-02 15:04 MST"))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "operator email")
	cmd.Flags().StringVar(&password, "password", "", "operator password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// Overrides the root hook; no store connection is needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(a.out, buildVersion(version, commit, date, builtBy, treeState).String())
		},
	}
}
