package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/relman-dev/relman/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded releases",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <release-id>",
	Short: "Print the changelog recorded with a release",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)

	historyCmd.Flags().String("project", "", "Only releases of this project")
	historyCmd.Flags().String("repo", "", "Only releases of this repository")
	historyCmd.Flags().Int("limit", 20, "Maximum number of releases (0 for all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if err := deps.EnsureStore(); err != nil {
		return err
	}

	filter := store.ReleaseFilter{
		RepoName: getStringFlag(cmd, "repo"),
		Limit:    getIntFlag(cmd, "limit"),
	}
	if name := getStringFlag(cmd, "project"); name != "" {
		project, err := deps.Store.GetProject(ctx, name)
		if err != nil {
			return fmt.Errorf("project %s: %w", name, err)
		}
		filter.ProjectID = project.ID
	}

	releases, err := deps.Store.ListReleases(ctx, filter)
	if err != nil {
		return err
	}
	if len(releases) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No releases recorded.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"DATE", "REPOSITORY", "TAG", "TYPE", "COMMITS", "PUSHED", "ID"})
	for _, r := range releases {
		t.AppendRow(table.Row{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.RepoName,
			r.Tag,
			string(r.Type),
			r.CommitCount,
			yesNo(r.Pushed),
			r.ID,
		})
	}
	t.Render()
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if err := deps.EnsureStore(); err != nil {
		return err
	}
	rel, err := deps.Store.GetRelease(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s (%s)\n", rel.RepoName, rel.Tag, rel.CommitSHA)
	fmt.Fprintln(out, rel.Changelog)
	return nil
}
