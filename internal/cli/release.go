package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/relman-dev/relman/internal/defs"
	"github.com/relman-dev/relman/internal/release"
	"github.com/relman-dev/relman/internal/ui"
	"github.com/relman-dev/relman/pkg/models"
)

var releaseCmd = &cobra.Command{
	Use:   "release [major|minor|patch|auto]",
	Short: "Tag a new release",
	Long: `Create an annotated release tag on the repository in --path, or on
every repository of --project that has new commits.

When no release type is given and a terminal is attached, relman asks
for one with the bump suggested by the commits preselected. The release
is confirmed before any tag is created unless --yes is set.

Examples:
  relman release minor --push
  relman release --project shop --pre --notify
  relman release patch --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRelease,
}

func init() {
	rootCmd.AddCommand(releaseCmd)
	addPlanFlags(releaseCmd)

	releaseCmd.Flags().Bool("push", false, "Push tags to the remote (default: release.push)")
	releaseCmd.Flags().String("remote", "", "Remote to push to (default: release.remote)")
	releaseCmd.Flags().Bool("dry-run", false, "Render release notes without tagging")
	releaseCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	releaseCmd.Flags().Bool("write-changelog", false, "Prepend the notes to each repository's changelog (default: changelog.write_file)")
	releaseCmd.Flags().Bool("notify", false, "Run the enabled integrations (Teams, JIRA, CodebaseHQ)")
	releaseCmd.Flags().Bool("show-notes", false, "Print the rendered release notes")
}

func runRelease(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	req, err := buildRequest(cmd, args)
	if err != nil {
		return err
	}
	set, err := planRelease(ctx, cmd, req)
	if err != nil {
		return err
	}

	if len(args) == 0 && !deps.Headless.IsHeadless() {
		suggested := set.suggested()
		choice, err := deps.Prompter.SelectReleaseType(suggested)
		if err != nil {
			return err
		}
		if needsReplan(set, choice) {
			req.Type = choice
			if set, err = planRelease(ctx, cmd, req); err != nil {
				return err
			}
		}
	}

	renderPlans(out, set)

	opts := releaseOptions(cmd, set)
	if !opts.DryRun && !getBoolFlag(cmd, "yes") {
		ok, err := deps.Prompter.Confirm(confirmTitle(set), "Tags are created on the target commit of every repository listed above.", true)
		if errors.Is(err, ui.ErrHeadless) {
			return fmt.Errorf("confirmation required: rerun with --yes")
		}
		if err != nil {
			return err
		}
		if !ok {
			return ui.ErrCancelled
		}
	}

	orch := deps.Orchestrator(set.Project, opts.Notify)
	spinner := ui.NewSpinner(deps.Theme, deps.Headless, "Releasing...")
	res, err := orch.Execute(ctx, set.Plans, opts)
	spinner.Stop()
	if res != nil {
		printResult(out, res, getBoolFlag(cmd, "show-notes") || opts.DryRun)
	}
	return err
}

// needsReplan reports whether any plan was computed for a different
// release type than choice.
func needsReplan(set *planSet, choice models.ReleaseType) bool {
	for _, p := range set.Plans {
		if p.Type != choice {
			return true
		}
	}
	return false
}

func releaseOptions(cmd *cobra.Command, set *planSet) release.Options {
	cfg := deps.Cfg()
	opts := release.Options{
		DryRun:         getBoolFlag(cmd, "dry-run"),
		Push:           cfg.Release.Push,
		Remote:         cfg.Release.Remote,
		WriteChangelog: cfg.Changelog.WriteFile,
		ChangelogFile:  cfg.Changelog.File,
		IssueURL:       cfg.Changelog.IssueURL,
		Notify:         getBoolFlag(cmd, "notify"),
		Project:        set.Project,
	}
	if cmd.Flags().Changed("push") {
		opts.Push = getBoolFlag(cmd, "push")
	}
	if remote := getStringFlag(cmd, "remote"); remote != "" {
		opts.Remote = remote
	}
	if cmd.Flags().Changed("write-changelog") {
		opts.WriteChangelog = getBoolFlag(cmd, "write-changelog")
	}
	if opts.Remote == "" {
		opts.Remote = "origin"
	}
	if opts.ChangelogFile == "" {
		opts.ChangelogFile = defs.ChangelogMD
	}
	return opts
}

func confirmTitle(set *planSet) string {
	if len(set.Plans) == 1 {
		p := set.Plans[0]
		return fmt.Sprintf("Release %s %s?", p.Repository.Name, p.Tag)
	}
	name := "project"
	if set.Project != nil {
		name = set.Project.Name
	}
	return fmt.Sprintf("Release %d repositories of %s?", len(set.Plans), name)
}

func printResult(w io.Writer, res *release.Result, showNotes bool) {
	if showNotes {
		fmt.Fprintln(w, res.Notes)
	}

	title := "Released"
	if res.DryRun {
		title = "Dry run: nothing was tagged"
	}
	details := make([]string, 0, len(res.Releases))
	for _, r := range res.Releases {
		line := fmt.Sprintf("%s  %s  (%d commits)", r.RepoName, r.Tag, r.CommitCount)
		if r.Pushed {
			line += "  pushed"
		}
		details = append(details, line)
	}
	if len(details) > 0 {
		fmt.Fprintln(w, deps.Theme.SuccessCard(title, details...))
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(w, deps.Theme.WarningCard("Completed with warnings", res.Warnings...))
	}
}
