package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/lkhn/wealth-backend/internal/logging"
	"github.com/lkhn/wealth-backend/pkg/client"
	"github.com/lkhn/wealth-backend/pkg/fallback"
)

const (
	defaultAPIURL = "http://localhost:8080"
	envAPIURL     = "LKHN_API_URL"
	envFallbackDB = "LKHN_FALLBACK_DB"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	APIURL     string
	FallbackDB string
	Timeout    time.Duration
	Verbose    bool
}

// NewRootCommand creates the root command for the lkhn CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lkhn",
		Short: "LKHN Universal Wealth client",
		Long:  "Submit feedback and waitlist signups, update presence and drain the local feedback queue.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.Verbose {
				logging.Init("debug")
			} else {
				logging.Init("error")
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", envOr(envAPIURL, defaultAPIURL), "API base URL")
	cmd.PersistentFlags().StringVar(&opts.FallbackDB, "fallback-db", envOr(envFallbackDB, defaultFallbackDB()), "path of the local feedback queue")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", client.DefaultTimeout, "HTTP timeout")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewFeedbackCommand(opts))
	cmd.AddCommand(NewWaitlistCommand(opts))
	cmd.AddCommand(NewOfflineCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewPendingCommand(opts))

	return cmd
}

// open builds a client over the SQLite queue. The returned func closes the queue.
func (o *RootOptions) open() (*client.Client, func() error, error) {
	store, err := fallback.OpenSQLite(o.FallbackDB)
	if err != nil {
		return nil, nil, err
	}
	c, err := client.New(client.Options{BaseURL: o.APIURL, Timeout: o.Timeout, Store: store})
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return c, store.Close, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func defaultFallbackDB() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".lkhn", "fallback.db")
	}
	return filepath.Join(home, ".lkhn", "fallback.db")
}

func withClient(opts *RootOptions, fn func(*client.Client) error) (err error) {
	c, closeStore, err := opts.open()
	if err != nil {
		return fmt.Errorf("open fallback store: %w", err)
	}
	defer func() {
		if cerr := closeStore(); err == nil {
			err = cerr
		}
	}()
	return fn(c)
}
