package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/azdash-dev/azdash/pkg/aggregator"
	"github.com/azdash-dev/azdash/pkg/types"
	"github.com/azdash-dev/azdash/pkg/view"
)

var (
	prsRepositories []string
	prsAuthors      []string
	prsShowDrafts   bool
)

var prsCmd = &cobra.Command{
	Use:   "prs",
	Short: "Fetch and list the active pull requests of all configured projects",
	RunE:  runPRs,
}

func init() {
	prsCmd.Flags().StringSliceVar(&prsRepositories, "repository", nil, "Only show pull requests of these repositories (repeatable)")
	prsCmd.Flags().StringSliceVar(&prsAuthors, "author", nil, "Only show pull requests by these author display names (repeatable)")
	prsCmd.Flags().BoolVar(&prsShowDrafts, "drafts", false, "Include draft pull requests")
	rootCmd.AddCommand(prsCmd)
}

func runPRs(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if len(cfg.Selectors) == 0 {
		return fmt.Errorf("no selectors configured in %s", cfg.ConfigPath)
	}

	client := newClient(cfg)
	stop := logNotifications(client.Notifications())
	defer stop()

	service := aggregator.New(client)
	result := service.ActivePullRequests(cmd.Context(), cfg.Selectors, "")

	selected := view.SeedPinnedAuthors(result.Items, cfg.PinnedAuthors, prsAuthors)
	shown := view.Apply(result.Items, view.Options{
		ShowDrafts:   prsShowDrafts,
		Repositories: prsRepositories,
		Authors:      selected,
	})

	fmt.Printf("%d active pull requests (%d shown)\n\n", result.Count, len(shown))
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROJECT\tREPO\tID\tTITLE\tAUTHOR\tCOMMENTS\tMERGE\tBUILDS")
	for _, pr := range shown {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%d (%d open)\t%s\t%s\n",
			pr.ProjectName, pr.Repository.Name, pr.PullRequestID, truncate(pr.Title, 48),
			pr.CreatedBy.DisplayName, pr.CommentCount, pr.UnresolvedCommentCount,
			mergeLabel(pr), buildSummary(pr.Builds))
	}
	return w.Flush()
}

func mergeLabel(pr types.EnrichedPullRequest) string {
	switch {
	case pr.HasConflicts:
		return "conflicts"
	case pr.CanMerge:
		return "clean"
	default:
		return pr.MergeStatus
	}
}

func buildSummary(builds []types.BuildResult) string {
	if len(builds) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(builds))
	for _, build := range builds {
		label := build.Status
		if build.Status == types.BuildCompleted && build.Result != "" {
			label = build.Result
		}
		parts = append(parts, fmt.Sprintf("%s:%s", build.Definition.Name, label))
	}
	return strings.Join(parts, ", ")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
