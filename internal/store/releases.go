package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/relman-dev/relman/pkg/models"
)

// ReleaseFilter narrows ListReleases. Zero values match everything.
type ReleaseFilter struct {
	ProjectID int64
	RepoName  string
	Limit     int
}

const releaseColumns = `id, project_id, repository_id, repo_name, tag, version, previous_tag,
	release_type, commit_sha, commit_count, changelog, pushed, created_at`

// RecordRelease stores rel, assigning a UUID and timestamp when unset.
func (s *Store) RecordRelease(ctx context.Context, rel *models.Release) error {
	if rel.ID == "" {
		rel.ID = uuid.NewString()
	}
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO releases (`+releaseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rel.ID, nullID(rel.ProjectID), nullID(rel.RepositoryID), rel.RepoName, rel.Tag, rel.Version,
		rel.PreviousTag, string(rel.Type), rel.CommitSHA, rel.CommitCount, rel.Changelog,
		rel.Pushed, formatTime(rel.CreatedAt))
	if err != nil {
		return fmt.Errorf("record release %s: %w", rel.Tag, mapError(err))
	}
	s.logger.Debug("release recorded", "id", rel.ID, "repo", rel.RepoName, "tag", rel.Tag)
	return nil
}

// GetRelease returns the release with the given ID.
func (s *Store) GetRelease(ctx context.Context, id string) (*models.Release, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+releaseColumns+` FROM releases WHERE id = ?`, id)
	rel, err := scanRelease(row)
	if err != nil {
		return nil, fmt.Errorf("get release %s: %w", id, mapError(err))
	}
	return rel, nil
}

// ListReleases returns matching releases, newest first.
func (s *Store) ListReleases(ctx context.Context, f ReleaseFilter) ([]models.Release, error) {
	var (
		where []string
		args  []any
	)
	if f.ProjectID != 0 {
		where = append(where, "project_id = ?")
		args = append(args, f.ProjectID)
	}
	if f.RepoName != "" {
		where = append(where, "repo_name = ?")
		args = append(args, f.RepoName)
	}

	query := `SELECT ` + releaseColumns + ` FROM releases`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var releases []models.Release
	for rows.Next() {
		rel, err := scanRelease(rows)
		if err != nil {
			return nil, fmt.Errorf("list releases: %w", err)
		}
		releases = append(releases, *rel)
	}
	return releases, rows.Err()
}

func scanRelease(sc scanner) (*models.Release, error) {
	var (
		rel               models.Release
		projectID, repoID sql.NullInt64
		releaseType       string
		created           string
	)
	err := sc.Scan(&rel.ID, &projectID, &repoID, &rel.RepoName, &rel.Tag, &rel.Version, &rel.PreviousTag,
		&releaseType, &rel.CommitSHA, &rel.CommitCount, &rel.Changelog, &rel.Pushed, &created)
	if err != nil {
		return nil, err
	}
	rel.ProjectID = projectID.Int64
	rel.RepositoryID = repoID.Int64
	rel.Type = models.ReleaseType(releaseType)
	rel.CreatedAt = parseTime(created)
	return &rel, nil
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
