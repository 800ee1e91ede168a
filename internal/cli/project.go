package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/relman-dev/relman/internal/ui"
	"github.com/relman-dev/relman/pkg/models"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects of repositories released together",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectAdd,
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Args:    cobra.NoArgs,
	RunE:    runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a project and its repositories",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Change project settings",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectUpdate,
}

var projectRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a project and its repository list",
	Args:    cobra.ExactArgs(1),
	RunE:    runProjectRemove,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectAddCmd, projectListCmd, projectShowCmd, projectUpdateCmd, projectRemoveCmd)

	for _, cmd := range []*cobra.Command{projectAddCmd, projectUpdateCmd} {
		cmd.Flags().String("jira-key", "", "JIRA project key for fix versions")
		cmd.Flags().String("codebase-project", "", "CodebaseHQ project permalink for deployments")
		cmd.Flags().String("teams-webhook", "", "Teams webhook overriding integrations.teams")
	}
	projectUpdateCmd.Flags().String("rename", "", "New project name")
	projectRemoveCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	if err := deps.EnsureStore(); err != nil {
		return err
	}
	p := &models.Project{
		Name:            args[0],
		JiraKey:         strings.ToUpper(getStringFlag(cmd, "jira-key")),
		CodebaseProject: getStringFlag(cmd, "codebase-project"),
		TeamsWebhook:    getStringFlag(cmd, "teams-webhook"),
	}
	if err := deps.Store.CreateProject(cmd.Context(), p); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), deps.Theme.SuccessCard("Project created", p.Name))
	return nil
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	if err := deps.EnsureStore(); err != nil {
		return err
	}
	projects, err := deps.Store.ListProjects(cmd.Context())
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No projects. Create one with: relman project add <name>")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"NAME", "JIRA", "CODEBASE", "CREATED"})
	for _, p := range projects {
		t.AppendRow(table.Row{p.Name, orDash(p.JiraKey), orDash(p.CodebaseProject), p.CreatedAt.Local().Format("2006-01-02")})
	}
	t.Render()
	return nil
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := deps.EnsureStore(); err != nil {
		return err
	}
	p, err := deps.Store.GetProject(ctx, args[0])
	if err != nil {
		return err
	}
	repos, err := deps.Store.ListRepositories(ctx, p.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	webhook := "-"
	if p.TeamsWebhook != "" {
		webhook = "(set)"
	}
	fmt.Fprintln(out, deps.Theme.InfoCard(p.Name, strings.Join([]string{
		"JIRA key:         " + orDash(p.JiraKey),
		"Codebase project: " + orDash(p.CodebaseProject),
		"Teams webhook:    " + webhook,
	}, "\n")))
	renderRepositories(cmd, repos)
	return nil
}

func runProjectUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := deps.EnsureStore(); err != nil {
		return err
	}
	p, err := deps.Store.GetProject(ctx, args[0])
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("jira-key") {
		p.JiraKey = strings.ToUpper(getStringFlag(cmd, "jira-key"))
	}
	if flags.Changed("codebase-project") {
		p.CodebaseProject = getStringFlag(cmd, "codebase-project")
	}
	if flags.Changed("teams-webhook") {
		p.TeamsWebhook = getStringFlag(cmd, "teams-webhook")
	}
	if name := getStringFlag(cmd, "rename"); name != "" {
		p.Name = name
	}
	if err := deps.Store.UpdateProject(ctx, p); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), deps.Theme.SuccessCard("Project updated", p.Name))
	return nil
}

func runProjectRemove(cmd *cobra.Command, args []string) error {
	if err := deps.EnsureStore(); err != nil {
		return err
	}
	if err := confirmDestructive(cmd, fmt.Sprintf("Delete project %s?", args[0]), "Its repository list is deleted; recorded releases are kept."); err != nil {
		return err
	}
	if err := deps.Store.DeleteProject(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), deps.Theme.SuccessCard("Project deleted", args[0]))
	return nil
}

// confirmDestructive asks before an irreversible action unless --yes is set.
func confirmDestructive(cmd *cobra.Command, title, description string) error {
	if getBoolFlag(cmd, "yes") {
		return nil
	}
	ok, err := deps.Prompter.Confirm(title, description, false)
	if errors.Is(err, ui.ErrHeadless) {
		return fmt.Errorf("confirmation required: rerun with --yes")
	}
	if err != nil {
		return err
	}
	if !ok {
		return ui.ErrCancelled
	}
	return nil
}

func renderRepositories(cmd *cobra.Command, repos []models.Repository) {
	if len(repos) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No repositories. Add one with: relman repo add <project> <path>")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"NAME", "PREFIX", "CODEBASE", "PATH"})
	for _, r := range repos {
		t.AppendRow(table.Row{r.Name, r.TagPrefix, orDash(r.CodebaseRepo), r.Path})
	}
	t.Render()
}
