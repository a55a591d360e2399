// Package main implements azdash, an Azure DevOps pull request dashboard.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/azdash-dev/azdash/pkg/azdo"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "azdash",
	Short: "Aggregate Azure DevOps pull requests, builds, and suggestions",
	Long: `azdash fans out over the configured Azure DevOps projects, enriches every
active pull request with its review threads, CI builds, and merge status, and
presents the result on the command line or over the dashboard HTTP API.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.config/azdash/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output with detailed diagnostics")
}

// newClient builds the Azure DevOps client from configuration.
func newClient(cfg *Config) *azdo.Client {
	return azdo.New(azdo.Config{
		BaseURL:      cfg.BaseURL,
		Organization: cfg.Organization,
		Credential:   cfg.Credential,
		HTTPTimeout:  30 * time.Second,
	})
}

// logNotifications drains the error notification stream into the log so CLI
// runs surface classified failures (expired credential, missing scope)
// without aborting the aggregation.
func logNotifications(notifier *azdo.Notifier) func() {
	ch := notifier.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for apiErr := range ch {
			switch apiErr.Kind {
			case azdo.AuthInvalid:
				slog.Error("Credential rejected, refresh your PAT", "operation", apiErr.Operation)
			case azdo.AuthForbidden:
				slog.Error("Credential lacks a required scope", "operation", apiErr.Operation)
			case azdo.NetworkUnavailable:
				slog.Warn("Network failure", "operation", apiErr.Operation)
			default:
				slog.Warn("Upstream call failed", "operation", apiErr.Operation, "status", apiErr.Status)
			}
		}
	}()
	return func() {
		notifier.Unsubscribe(ch)
		<-done
	}
}
