package store

import (
	"context"
	"fmt"

	"github.com/relman-dev/relman/pkg/models"
)

// AddRepository attaches r to its project and fills in r.ID.
func (s *Store) AddRepository(ctx context.Context, r *models.Repository) error {
	if r.TagPrefix == "" {
		r.TagPrefix = "v"
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO repositories (project_id, name, path, tag_prefix, codebase_repo) VALUES (?, ?, ?, ?, ?)`,
		r.ProjectID, r.Name, r.Path, r.TagPrefix, r.CodebaseRepo)
	if err != nil {
		if isForeignKeyError(err) {
			return fmt.Errorf("add repository %q: project %d: %w", r.Name, r.ProjectID, ErrNotFound)
		}
		return fmt.Errorf("add repository %q: %w", r.Name, mapError(err))
	}
	if r.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("add repository %q: %w", r.Name, err)
	}
	return nil
}

// ListRepositories returns a project's repositories in insertion order.
func (s *Store) ListRepositories(ctx context.Context, projectID int64) ([]models.Repository, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, name, path, tag_prefix, codebase_repo FROM repositories WHERE project_id = ? ORDER BY id`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var repos []models.Repository
	for rows.Next() {
		var r models.Repository
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.Name, &r.Path, &r.TagPrefix, &r.CodebaseRepo); err != nil {
			return nil, fmt.Errorf("list repositories: %w", err)
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

// RemoveRepository detaches the named repository from a project.
func (s *Store) RemoveRepository(ctx context.Context, projectID int64, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM repositories WHERE project_id = ? AND name = ?`, projectID, name)
	if err != nil {
		return fmt.Errorf("remove repository %q: %w", name, err)
	}
	return expectOne(res, "remove repository "+name)
}

func isForeignKeyError(err error) bool {
	return err != nil && containsFold(err.Error(), "FOREIGN KEY constraint failed")
}
