package cli

import (
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/relman-dev/relman/internal/core/git"
	"github.com/relman-dev/relman/pkg/models"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Manage the repositories of a project",
}

var repoAddCmd = &cobra.Command{
	Use:   "add <project> <path>",
	Short: "Add a local Git repository to a project",
	Args:  cobra.ExactArgs(2),
	RunE:  runRepoAdd,
}

var repoListCmd = &cobra.Command{
	Use:     "list <project>",
	Aliases: []string{"ls"},
	Short:   "List the repositories of a project",
	Args:    cobra.ExactArgs(1),
	RunE:    runRepoList,
}

var repoRemoveCmd = &cobra.Command{
	Use:     "remove <project> <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a repository from a project",
	Args:    cobra.ExactArgs(2),
	RunE:    runRepoRemove,
}

var repoDiscoverCmd = &cobra.Command{
	Use:   "discover <project>",
	Short: "List the CodebaseHQ repositories of a project",
	Long: `List the repositories CodebaseHQ holds for the project's codebase
project and mark those already added. Requires integrations.codebase
credentials.`,
	Args: cobra.ExactArgs(1),
	RunE: runRepoDiscover,
}

func init() {
	rootCmd.AddCommand(repoCmd)
	repoCmd.AddCommand(repoAddCmd, repoListCmd, repoRemoveCmd, repoDiscoverCmd)

	repoAddCmd.Flags().String("name", "", "Repository name (default: directory name)")
	repoAddCmd.Flags().String("prefix", "", "Tag prefix (default: release.tag_prefix)")
	repoAddCmd.Flags().String("codebase-repo", "", "CodebaseHQ repository permalink")
	repoRemoveCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

func runRepoAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := deps.EnsureStore(); err != nil {
		return err
	}
	project, err := deps.Store.GetProject(ctx, args[0])
	if err != nil {
		return err
	}

	path, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[1], err)
	}
	repo, err := git.NewRepository(path)
	if err != nil {
		return err
	}

	r := &models.Repository{
		ProjectID:    project.ID,
		Name:         getStringFlag(cmd, "name"),
		Path:         repo.Root(),
		TagPrefix:    deps.Cfg().Release.TagPrefix,
		CodebaseRepo: getStringFlag(cmd, "codebase-repo"),
	}
	if r.Name == "" {
		r.Name = filepath.Base(r.Path)
	}
	if cmd.Flags().Changed("prefix") {
		r.TagPrefix = getStringFlag(cmd, "prefix")
	}
	if err := deps.Store.AddRepository(ctx, r); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), deps.Theme.SuccessCard("Repository added",
		fmt.Sprintf("%s -> %s", r.Name, project.Name),
		r.Path,
	))
	return nil
}

func runRepoList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := deps.EnsureStore(); err != nil {
		return err
	}
	project, err := deps.Store.GetProject(ctx, args[0])
	if err != nil {
		return err
	}
	repos, err := deps.Store.ListRepositories(ctx, project.ID)
	if err != nil {
		return err
	}
	renderRepositories(cmd, repos)
	return nil
}

func runRepoRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := deps.EnsureStore(); err != nil {
		return err
	}
	project, err := deps.Store.GetProject(ctx, args[0])
	if err != nil {
		return err
	}
	if err := confirmDestructive(cmd, fmt.Sprintf("Remove %s from %s?", args[1], project.Name), "The checkout and its tags are not touched."); err != nil {
		return err
	}
	if err := deps.Store.RemoveRepository(ctx, project.ID, args[1]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), deps.Theme.SuccessCard("Repository removed", args[1]))
	return nil
}

func runRepoDiscover(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := deps.EnsureStore(); err != nil {
		return err
	}
	project, err := deps.Store.GetProject(ctx, args[0])
	if err != nil {
		return err
	}
	if project.CodebaseProject == "" {
		return fmt.Errorf("project %s has no codebase project: set one with relman project update --codebase-project", project.Name)
	}
	client, err := deps.CodebaseClient()
	if err != nil {
		return err
	}
	remote, err := client.Repositories(ctx, project.CodebaseProject)
	if err != nil {
		return err
	}
	local, err := deps.Store.ListRepositories(ctx, project.ID)
	if err != nil {
		return err
	}
	added := make(map[string]bool, len(local))
	for _, r := range local {
		if r.CodebaseRepo != "" {
			added[r.CodebaseRepo] = true
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"PERMALINK", "NAME", "ADDED", "CLONE URL"})
	for _, r := range remote {
		t.AppendRow(table.Row{r.Permalink, r.Name, yesNo(added[r.Permalink]), r.CloneURL})
	}
	t.Render()
	return nil
}
