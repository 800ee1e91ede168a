package models

import "time"

// Project groups repositories that are released together.
type Project struct {
	ID              int64     `json:"id" yaml:"id"`
	Name            string    `json:"name" yaml:"name"`
	JiraKey         string    `json:"jira_key,omitempty" yaml:"jira_key,omitempty"`
	CodebaseProject string    `json:"codebase_project,omitempty" yaml:"codebase_project,omitempty"`
	TeamsWebhook    string    `json:"teams_webhook,omitempty" yaml:"teams_webhook,omitempty"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
}

// Repository is a local Git checkout that belongs to a project.
type Repository struct {
	ID           int64  `json:"id" yaml:"id"`
	ProjectID    int64  `json:"project_id" yaml:"project_id"`
	Name         string `json:"name" yaml:"name"`
	Path         string `json:"path" yaml:"path"`
	TagPrefix    string `json:"tag_prefix" yaml:"tag_prefix"`
	CodebaseRepo string `json:"codebase_repo,omitempty" yaml:"codebase_repo,omitempty"`
}

// Release is the persisted record of a tag created by relman.
type Release struct {
	ID           string      `json:"id"`
	ProjectID    int64       `json:"project_id,omitempty"`
	RepositoryID int64       `json:"repository_id,omitempty"`
	RepoName     string      `json:"repo_name"`
	Tag          string      `json:"tag"`
	Version      string      `json:"version"`
	PreviousTag  string      `json:"previous_tag,omitempty"`
	Type         ReleaseType `json:"release_type"`
	CommitSHA    string      `json:"commit_sha"`
	CommitCount  int         `json:"commit_count"`
	Changelog    string      `json:"changelog"`
	Pushed       bool        `json:"pushed"`
	CreatedAt    time.Time   `json:"created_at"`
}
