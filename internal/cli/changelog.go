package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relman-dev/relman/internal/changelog"
	"github.com/relman-dev/relman/internal/release"
	"github.com/relman-dev/relman/internal/ui"
)

var changelogCmd = &cobra.Command{
	Use:   "changelog [major|minor|patch|auto]",
	Short: "Preview the release notes of the next release",
	Long: `Render the changelog the next release would produce. The markdown is
styled for the terminal unless --raw is given or output is not a terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChangelog,
}

func init() {
	rootCmd.AddCommand(changelogCmd)
	addPlanFlags(changelogCmd)

	changelogCmd.Flags().Bool("raw", false, "Print markdown without terminal styling")
	changelogCmd.Flags().StringP("output", "o", "", "Write the markdown to a file instead of printing it")
	changelogCmd.Flags().Int("width", 100, "Word wrap width of the preview")
}

func runChangelog(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(cmd, args)
	if err != nil {
		return err
	}
	set, err := planRelease(cmd.Context(), cmd, req)
	if err != nil {
		return err
	}

	cfg := deps.Cfg()
	res, err := release.NewOrchestrator(deps.Renderer()).Execute(cmd.Context(), set.Plans, release.Options{
		DryRun:   true,
		IssueURL: cfg.Changelog.IssueURL,
		Project:  set.Project,
	})
	if err != nil {
		return err
	}

	if path := getStringFlag(cmd, "output"); path != "" {
		if err := os.WriteFile(path, []byte(res.Notes), 0o644); err != nil {
			return fmt.Errorf("write changelog: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), deps.Theme.SuccessCard("Changelog written", path))
		return nil
	}

	out := cmd.OutOrStdout()
	if getBoolFlag(cmd, "raw") {
		fmt.Fprint(out, res.Notes)
		return nil
	}
	plain := deps.Theme.NoColor || !isTerminalWriter(out)
	rendered, err := changelog.Preview(res.Notes, getIntFlag(cmd, "width"), plain)
	if err != nil {
		return err
	}
	fmt.Fprint(out, rendered)
	return nil
}

// isTerminalWriter reports whether w is a terminal file.
func isTerminalWriter(w any) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTerminal(f)
}
