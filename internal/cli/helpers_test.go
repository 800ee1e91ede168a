package cli

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// executeCommand runs the root command against an isolated home directory
// and returns everything written to stdout and stderr.
func executeCommand(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()

	InitDependencies()
	d := deps
	d.Headless.ForceHeadless(true)
	t.Cleanup(func() { _ = d.Close() })

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append([]string{"--home", home}, args...))

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag of the tree to its default, since the
// command variables are shared between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeSection(t *testing.T, home, name, content string) {
	t.Helper()
	dir := filepath.Join(home, "config", "sections")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	runGit(t, dir, "init", "--initial-branch=main")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	runGit(t, dir, "config", "tag.gpgsign", "false")
	commit(t, dir, "chore: initial commit")
	return dir
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

func commit(t *testing.T, dir, message string) {
	t.Helper()
	f := filepath.Join(dir, "log.txt")
	data, _ := os.ReadFile(f)
	if err := os.WriteFile(f, append(data, []byte(message+"\n")...), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", "log.txt")
	runGit(t, dir, "commit", "-m", message)
}

func tag(t *testing.T, dir, name string) {
	t.Helper()
	runGit(t, dir, "tag", "-a", name, "-m", name)
}

func tagList(t *testing.T, dir string) []string {
	t.Helper()
	out := runGit(t, dir, "tag", "--list")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
