package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/relman-dev/relman/internal/config"
	"github.com/relman-dev/relman/pkg/version"
)

// annotationSkipConfig marks commands that run without loading the
// configuration sections.
const annotationSkipConfig = "relman/skip-config"

var rootCmd = &cobra.Command{
	Use:   "relman",
	Short: "Release management for Git repositories",
	Long: `relman plans and creates semantic-version releases of one or more
Git repositories.

It reads conventional commits since the previous release, computes the
next version, renders a changelog, creates and pushes annotated tags,
keeps a local release history and notifies Microsoft Teams, JIRA and
CodebaseHQ.`,
	Version:            version.GetVersion(),
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setupCommand,
	PersistentPostRunE: teardownCommand,
}

// Execute initializes dependencies and runs the root command. An
// interrupt cancels the command's context so git and HTTP calls stop.
func Execute() error {
	InitDependencies()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("relman %s\n", version.GetFullVersion()))

	rootCmd.PersistentFlags().String("home", "", "relman home directory (default: $RELMAN_HOME or the user config dir)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Never prompt; fail when input is required")
}

// setupCommand loads configuration and prepares logging and the UI for
// every subcommand.
func setupCommand(cmd *cobra.Command, _ []string) error {
	if deps == nil {
		return fmt.Errorf("dependencies not initialized")
	}
	home, err := resolveHome(cmd)
	if err != nil {
		return err
	}
	deps.Home = home

	if cmd.Annotations[annotationSkipConfig] == "true" {
		deps.ConfigureUI(getBoolFlag(cmd, "no-color"), getBoolFlag(cmd, "non-interactive"))
		return nil
	}

	cfg, err := deps.Config.Load(home)
	if err != nil {
		return err
	}
	if level := getStringFlag(cmd, "log-level"); level != "" {
		cfg.System.LogLevel = level
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.System.LogLevel, cfg.System.LogFormat)
	if err != nil {
		return err
	}
	deps.SetLogger(logger)
	deps.ConfigureUI(
		cfg.System.NoColor || getBoolFlag(cmd, "no-color"),
		cfg.System.NonInteractive || getBoolFlag(cmd, "non-interactive"),
	)
	return nil
}

// teardownCommand releases resources opened while the command ran.
func teardownCommand(_ *cobra.Command, _ []string) error {
	if deps == nil {
		return nil
	}
	return deps.Close()
}

func resolveHome(cmd *cobra.Command) (string, error) {
	if home := getStringFlag(cmd, "home"); home != "" {
		return home, nil
	}
	return config.Home()
}

// getStringFlag retrieves a string flag value from the command.
func getStringFlag(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return val
}

// getBoolFlag retrieves a bool flag value from the command.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}
	return val
}

// getIntFlag retrieves an int flag value from the command.
func getIntFlag(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		return 0
	}
	return val
}
