package changelog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultTitle heads a newly created changelog file.
const DefaultTitle = "# Changelog"

// Prepend inserts entry at the top of the changelog at path, below its
// level-one title when present. A missing file is created with
// DefaultTitle. The file is replaced atomically.
func Prepend(path, entry string) error {
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read changelog: %w", err)
	}

	content := Merge(string(existing), entry)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create changelog dir: %w", err)
	}
	if err := atomicWrite(path, []byte(content)); err != nil {
		return fmt.Errorf("write changelog: %w", err)
	}
	return nil
}

// Merge returns existing with entry inserted below the title line.
func Merge(existing, entry string) string {
	entry = strings.TrimSpace(entry) + "\n"

	if strings.TrimSpace(existing) == "" {
		return DefaultTitle + "\n\n" + entry
	}

	title, rest, _ := strings.Cut(existing, "\n")
	if !strings.HasPrefix(title, "# ") {
		return entry + "\n" + existing
	}

	// Text between the title and the first release heading stays on top.
	body := strings.TrimLeft(rest, "\n")
	preamble, releases := body, ""
	if strings.HasPrefix(body, "## ") {
		preamble, releases = "", body
	} else if idx := strings.Index(body, "\n## "); idx >= 0 {
		preamble, releases = body[:idx], body[idx+1:]
	}

	var b strings.Builder
	b.WriteString(title + "\n\n")
	if preamble = strings.TrimSpace(preamble); preamble != "" {
		b.WriteString(preamble + "\n\n")
	}
	b.WriteString(entry)
	if releases != "" {
		b.WriteString("\n" + releases)
	}
	return b.String()
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".changelog-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmpName, path)
}
