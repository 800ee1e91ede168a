package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/relman-dev/relman/internal/core/git"
	"github.com/relman-dev/relman/internal/release"
	"github.com/relman-dev/relman/pkg/models"
)

var planCmd = &cobra.Command{
	Use:   "plan [major|minor|patch|auto]",
	Short: "Show the next release without creating it",
	Long: `Compute the next version, commit range and changelog sections of the
repository in --path, or of every repository of --project.

Without a release type the bump is derived from the commits in range:
breaking changes bump major (minor before 1.0.0), features bump minor,
anything else bumps patch.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	addPlanFlags(planCmd)
}

// addPlanFlags registers the flags shared by every command that plans a
// release.
func addPlanFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("project", "", "Plan every repository of a stored project")
	f.String("path", ".", "Repository to plan when no project is given")
	f.String("prefix", "", "Tag prefix (default: release.tag_prefix)")
	f.String("ref", "", "Commit to release (default: release.target_ref, then HEAD)")
	f.String("range-mode", "", "Commit range: since-last or series (default: release.range_mode)")
	f.Bool("pre", false, "Create a pre-release such as 1.3.0-rc.1")
	f.String("channel", "", "Pre-release channel (default: release.pre_channel)")
	f.Bool("allow-empty", false, "Plan a release even when no commits are in range")
}

// planSet is the outcome of planning a repository or a project.
type planSet struct {
	Project *models.Project
	Plans   []*release.Plan
	Skipped []release.Skipped
}

// suggested returns the largest bump among the plans.
func (s *planSet) suggested() models.ReleaseType {
	best := models.ReleasePatch
	for _, p := range s.Plans {
		if p.Type.Rank() > best.Rank() {
			best = p.Type
		}
	}
	return best
}

// buildRequest merges flags over configuration.
func buildRequest(cmd *cobra.Command, args []string) (release.Request, error) {
	cfg := deps.Cfg().Release

	rt := models.ReleaseAuto
	if len(args) > 0 {
		parsed, err := models.ParseReleaseType(args[0])
		if err != nil {
			return release.Request{}, err
		}
		rt = parsed
	}

	req := release.Request{
		Type:         rt,
		Prefix:       cfg.TagPrefix,
		TargetRef:    cfg.TargetRef,
		RangeMode:    cfg.RangeMode,
		Pre:          getBoolFlag(cmd, "pre"),
		PreChannel:   cfg.PreChannel,
		AllowEmpty:   getBoolFlag(cmd, "allow-empty"),
		RequireClean: cfg.RequireClean,
		Classify:     deps.ClassifyOptions(),
	}
	if key := strings.ToUpper(strings.TrimSpace(deps.Cfg().Integrations.Jira.ProjectKey)); key != "" {
		req.IssueProjects = []string{key}
	}
	if cmd.Flags().Changed("prefix") {
		req.Prefix = getStringFlag(cmd, "prefix")
	}
	if ref := getStringFlag(cmd, "ref"); ref != "" {
		req.TargetRef = ref
	}
	if mode := getStringFlag(cmd, "range-mode"); mode != "" {
		req.RangeMode = models.RangeMode(strings.ToLower(mode))
		if !req.RangeMode.IsValid() {
			return release.Request{}, fmt.Errorf("invalid range mode %q: must be since-last or series", mode)
		}
	}
	if channel := getStringFlag(cmd, "channel"); channel != "" {
		req.PreChannel = channel
	}
	return req, nil
}

// planRelease plans the stored project named by --project, or the
// repository at --path. A project's JIRA key replaces the configured one
// when restricting issue keys.
func planRelease(ctx context.Context, cmd *cobra.Command, req release.Request) (*planSet, error) {
	if name := getStringFlag(cmd, "project"); name != "" {
		if err := deps.EnsureStore(); err != nil {
			return nil, err
		}
		project, err := deps.Store.GetProject(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("project %s: %w", name, err)
		}
		if project.JiraKey != "" {
			req.IssueProjects = []string{project.JiraKey}
		}
		pp, err := deps.Planner().PlanProject(ctx, project, req)
		if err != nil {
			return nil, err
		}
		return &planSet{Project: project, Plans: pp.Plans, Skipped: pp.Skipped}, nil
	}

	repo, err := git.NewRepository(getStringFlag(cmd, "path"))
	if err != nil {
		return nil, err
	}
	plan, err := deps.Planner().Plan(ctx, repo, models.Repository{}, req)
	if err != nil {
		return nil, err
	}
	return &planSet{Plans: []*release.Plan{plan}}, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(cmd, args)
	if err != nil {
		return err
	}
	set, err := planRelease(cmd.Context(), cmd, req)
	if err != nil {
		return err
	}
	renderPlans(cmd.OutOrStdout(), set)
	return nil
}

func renderPlans(w io.Writer, set *planSet) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"REPOSITORY", "CURRENT", "NEXT", "TYPE", "SINCE", "COMMITS", "ISSUES"})
	for _, p := range set.Plans {
		t.AppendRow(table.Row{
			p.Repository.Name,
			orDash(p.CurrentVersion()),
			p.Tag,
			string(p.Type),
			orDash(p.PreviousTag()),
			len(p.Commits),
			orDash(strings.Join(p.IssueKeys, ", ")),
		})
	}
	t.Render()

	for _, s := range set.Skipped {
		fmt.Fprintf(w, "skipped %s: %v\n", s.Repository.Name, s.Reason)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
