package changelog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.tmpl
var builtinTemplates embed.FS

// funcMap provides the helpers available in every template.
var funcMap = template.FuncMap{
	"title": func(s string) string {
		return cases.Title(language.English).String(s)
	},
	"short": func(hash string) string {
		if len(hash) > 7 {
			return hash[:7]
		}
		return hash
	},
	"date": func(t time.Time) string {
		return t.Format(time.DateOnly)
	},
	"join": func(sep string, elems []string) string {
		return strings.Join(elems, sep)
	},
	"issueLink": func(prefix, key string) string {
		if prefix == "" {
			return key
		}
		return "[" + key + "](" + prefix + key + ")"
	},
}

// Renderer executes changelog templates in strict mode (missingkey=error).
type Renderer struct {
	fsys fs.FS
}

// NewRenderer returns a Renderer over the built-in templates. When
// overrideDir is non-empty, files there shadow built-ins of the same name.
func NewRenderer(overrideDir string) *Renderer {
	base, _ := fs.Sub(builtinTemplates, "templates")
	if overrideDir == "" {
		return &Renderer{fsys: base}
	}
	return &Renderer{fsys: layeredFS{top: os.DirFS(overrideDir), base: base}}
}

// NewRendererFS returns a Renderer backed only by fsys.
func NewRendererFS(fsys fs.FS) *Renderer {
	return &Renderer{fsys: fsys}
}

// Render parses the named template and executes it with data.
func (r *Renderer) Render(name string, data any) (string, error) {
	content, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	tmpl, err := template.New(name).
		Funcs(funcMap).
		Option("missingkey=error").
		Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("template parse %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.String(), nil
}

// RenderEntry renders the single-repository release notes.
func (r *Renderer) RenderEntry(e Entry) (string, error) {
	return r.Render(TemplateChangelog, e)
}

// RenderProject renders aggregated release notes for a project.
func (r *Renderer) RenderProject(p ProjectEntry) (string, error) {
	return r.Render(TemplateProject, p)
}

// RenderTagMessage renders the annotated tag message for e.
func (r *Renderer) RenderTagMessage(e Entry) (string, error) {
	msg, err := r.Render(TemplateTag, e)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(msg) + "\n", nil
}

// layeredFS reads from top first and falls back to base when a file is missing.
type layeredFS struct {
	top  fs.FS
	base fs.FS
}

func (l layeredFS) Open(name string) (fs.File, error) {
	f, err := l.top.Open(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return l.base.Open(name)
}
