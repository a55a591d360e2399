package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/azdash-dev/azdash/pkg/aggregator"
	"github.com/azdash-dev/azdash/pkg/azdo"
)

var suggestionsCmd = &cobra.Command{
	Use:   "suggestions",
	Short: "List 'create pull request' suggestions for the configured repositories",
	RunE:  runSuggestions,
}

func init() {
	rootCmd.AddCommand(suggestionsCmd)
}

func runSuggestions(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	client := newClient(cfg)
	stop := logNotifications(client.Notifications())
	defer stop()

	service := aggregator.New(client)
	suggestions := service.Suggestions(cmd.Context(), cfg.Selectors, "")

	if len(suggestions) == 0 {
		fmt.Println("No pull request suggestions.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REPO\tSOURCE\tTARGET")
	for _, s := range suggestions {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.RepositoryName,
			azdo.StripRefPrefix(s.Properties.SourceBranch), azdo.StripRefPrefix(s.Properties.TargetBranch))
	}
	return w.Flush()
}
