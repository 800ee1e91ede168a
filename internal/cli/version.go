package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relman-dev/relman/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the relman version",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "relman %s\n", version.GetFullVersion())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
