package cli

import (
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/relman-dev/relman/internal/core/git"
	"github.com/relman-dev/relman/internal/versioning"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the release tags of a repository",
	Long: `List tags of the repository in --path that belong to the tag prefix,
highest version first. --all also lists tags of other schemes after them.`,
	Args: cobra.NoArgs,
	RunE: runTags,
}

func init() {
	rootCmd.AddCommand(tagsCmd)

	tagsCmd.Flags().String("path", ".", "Repository path")
	tagsCmd.Flags().String("prefix", "", "Tag prefix (default: release.tag_prefix)")
	tagsCmd.Flags().String("merged", "", "Only tags reachable from this ref")
	tagsCmd.Flags().Bool("all", false, "Include tags outside the prefix scheme")
}

func runTags(cmd *cobra.Command, _ []string) error {
	repo, err := git.NewRepository(getStringFlag(cmd, "path"))
	if err != nil {
		return err
	}
	prefix := deps.Cfg().Release.TagPrefix
	if cmd.Flags().Changed("prefix") {
		prefix = getStringFlag(cmd, "prefix")
	}

	names, err := repo.Tags(cmd.Context(), getStringFlag(cmd, "merged"))
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"TAG", "VERSION", "PRE-RELEASE"})

	if getBoolFlag(cmd, "all") {
		slices.SortFunc(names, func(a, b string) int {
			_, okA := versioning.ParseTag(a, prefix)
			_, okB := versioning.ParseTag(b, prefix)
			if okA && okB {
				return versioning.Compare(b, a, prefix)
			}
			return versioning.Compare(a, b, prefix)
		})
		for _, name := range names {
			tag, ok := versioning.ParseTag(name, prefix)
			if !ok {
				t.AppendRow(table.Row{name, "-", "-"})
				continue
			}
			t.AppendRow(table.Row{name, tag.Version.String(), yesNo(tag.IsPrerelease())})
		}
	} else {
		for _, tag := range versioning.FilterTags(names, prefix) {
			t.AppendRow(table.Row{tag.Name, tag.Version.String(), yesNo(tag.IsPrerelease())})
		}
	}
	t.Render()
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
