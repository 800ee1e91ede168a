package store

import (
	"context"
	"fmt"

	"github.com/relman-dev/relman/pkg/models"
)

const projectColumns = `id, name, jira_key, codebase_project, teams_webhook, created_at`

// CreateProject inserts p and fills in its ID and CreatedAt.
func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	if p.Name == "" {
		return fmt.Errorf("create project: empty name")
	}
	p.CreatedAt = s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name, jira_key, codebase_project, teams_webhook, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.JiraKey, p.CodebaseProject, p.TeamsWebhook, formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("create project %q: %w", p.Name, mapError(err))
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("create project %q: %w", p.Name, err)
	}
	return nil
}

// GetProject looks a project up by name.
func (s *Store) GetProject(ctx context.Context, name string) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE name = ?`, name)
	p, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("get project %q: %w", name, mapError(err))
	}
	return p, nil
}

// ListProjects returns all projects ordered by name.
func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// UpdateProject saves the mutable fields of p, matched by ID.
func (s *Store) UpdateProject(ctx context.Context, p *models.Project) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, jira_key = ?, codebase_project = ?, teams_webhook = ? WHERE id = ?`,
		p.Name, p.JiraKey, p.CodebaseProject, p.TeamsWebhook, p.ID)
	if err != nil {
		return fmt.Errorf("update project %q: %w", p.Name, mapError(err))
	}
	return expectOne(res, "update project "+p.Name)
}

// DeleteProject removes a project and, by cascade, its repositories.
// Recorded releases are kept with their project reference cleared.
func (s *Store) DeleteProject(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete project %q: %w", name, err)
	}
	return expectOne(res, "delete project "+name)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (*models.Project, error) {
	var (
		p       models.Project
		created string
	)
	if err := sc.Scan(&p.ID, &p.Name, &p.JiraKey, &p.CodebaseProject, &p.TeamsWebhook, &created); err != nil {
		return nil, err
	}
	p.CreatedAt = parseTime(created)
	return &p, nil
}

func expectOne(res interface{ RowsAffected() (int64, error) }, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
