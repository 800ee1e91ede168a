package cli

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/relman-dev/relman/internal/config"
	"github.com/relman-dev/relman/internal/defs"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage relman configuration",
}

var configInitCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write the default configuration sections",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE:        runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)

	configInitCmd.Flags().Bool("force", false, "Overwrite existing section files")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	written, err := config.WriteDefaults(deps.Home, getBoolFlag(cmd, "force"))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(written) == 0 {
		fmt.Fprintf(out, "Configuration already present in %s (use --force to overwrite)\n",
			filepath.Join(deps.Home, defs.SectionsSubdir))
		return nil
	}
	fmt.Fprintln(out, deps.Theme.SuccessCard("Configuration written", written...))
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	data, err := yaml.Marshal(deps.Cfg())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "# home: %s\n", deps.Config.HomeDir())
	loaded := deps.Config.LoadedSections()
	for _, name := range slices.Sorted(maps.Keys(loaded)) {
		if loaded[name] {
			fmt.Fprintf(out, "# loaded: %s\n", name)
		}
	}
	fmt.Fprint(out, string(data))
	return nil
}
