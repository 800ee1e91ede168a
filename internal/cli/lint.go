package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relman-dev/relman/internal/core/git"
	"github.com/relman-dev/relman/internal/git/convention"
)

// ErrLintFailed is returned when at least one message violates the convention.
var ErrLintFailed = errors.New("commit message does not follow Conventional Commits")

var lintCmd = &cobra.Command{
	Use:   "lint [message]",
	Short: "Check commit messages against Conventional Commits",
	Long: `Lint a commit message given as an argument, read from --file (use "-"
for stdin), or every commit of a --range in the repository at --path.

As a commit-msg hook:
  relman lint --file "$1"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringP("file", "f", "", "Read the message from a file; - reads stdin")
	lintCmd.Flags().String("range", "", "Lint every commit in a revision range such as v1.2.0..HEAD")
	lintCmd.Flags().String("path", ".", "Repository path for --range")
}

type lintTarget struct {
	label   string
	message string
}

func runLint(cmd *cobra.Command, args []string) error {
	targets, err := lintTargets(cmd, args)
	if err != nil {
		return err
	}

	conv := convention.ConventionalCommits()
	out := cmd.OutOrStdout()
	failed := 0
	for _, tgt := range targets {
		res := convention.Validate(tgt.message, conv)
		if res.Valid {
			fmt.Fprintf(out, "%s %s\n", deps.Theme.Success("ok"), tgt.label)
			continue
		}
		failed++
		fmt.Fprintf(out, "%s %s\n", deps.Theme.Error("fail"), tgt.label)
		for _, v := range res.Violations {
			fmt.Fprintf(out, "  %s: expected %s", v.Field, v.Expected)
			if v.Actual != "" {
				fmt.Fprintf(out, ", got %s", v.Actual)
			}
			fmt.Fprintln(out)
			if v.Suggestion != "" {
				fmt.Fprintf(out, "  %s %s\n", deps.Theme.Muted("suggestion:"), v.Suggestion)
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrLintFailed, failed, len(targets))
	}
	return nil
}

func lintTargets(cmd *cobra.Command, args []string) ([]lintTarget, error) {
	if rng := getStringFlag(cmd, "range"); rng != "" {
		repo, err := git.NewRepository(getStringFlag(cmd, "path"))
		if err != nil {
			return nil, err
		}
		from, to, ok := strings.Cut(rng, "..")
		if !ok {
			from, to = "", rng
		}
		if to == "" {
			to = "HEAD"
		}
		commits, err := repo.Log(cmd.Context(), from, to)
		if err != nil {
			return nil, err
		}
		targets := make([]lintTarget, 0, len(commits))
		for _, c := range commits {
			targets = append(targets, lintTarget{label: shortHash(c.Hash) + " " + c.Subject(), message: c.Message})
		}
		return targets, nil
	}

	if path := getStringFlag(cmd, "file"); path != "" {
		msg, err := readMessage(cmd.InOrStdin(), path)
		if err != nil {
			return nil, err
		}
		return []lintTarget{{label: firstLine(msg), message: msg}}, nil
	}

	if len(args) == 0 {
		return nil, fmt.Errorf("nothing to lint: pass a message, --file or --range")
	}
	return []lintTarget{{label: firstLine(args[0]), message: args[0]}}, nil
}

// readMessage reads a commit message file, dropping git's comment lines.
func readMessage(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read commit message: %w", err)
	}

	var lines []string
	for line := range strings.SplitSeq(string(data), "\n") {
		if strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
