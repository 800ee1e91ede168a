// Package jira wraps the JIRA Cloud REST v3 endpoints needed to manage
// fix versions during a release.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/relman-dev/relman/internal/resilience"
	"github.com/relman-dev/relman/pkg/version"
)

var (
	// ErrMissingCredentials is returned when base URL, email or token is empty.
	ErrMissingCredentials = errors.New("jira: missing credentials")

	// ErrIssueNotFound is returned by SetFixVersion for unknown issue keys.
	ErrIssueNotFound = errors.New("jira: issue not found")
)

// Version is a project version ("fix version").
type Version struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	ProjectID   int64  `json:"projectId,omitempty"`
	Description string `json:"description,omitempty"`
	Released    bool   `json:"released"`
	ReleaseDate string `json:"releaseDate,omitempty"`
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Email      string
	Token      string
	HTTPClient *http.Client
	Retry      resilience.RetryPolicy
}

// Client is a JIRA Cloud API client.
type Client struct {
	baseURL string
	email   string
	token   string
	client  *http.Client
	policy  resilience.RetryPolicy
	logger  *slog.Logger
}

// New creates a Client authenticated with email and API token.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" || opts.Email == "" || opts.Token == "" {
		return nil, ErrMissingCredentials
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	policy := opts.Retry
	if policy == (resilience.RetryPolicy{}) {
		policy = resilience.DefaultHTTPPolicy()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		email:   opts.Email,
		token:   opts.Token,
		client:  hc,
		policy:  policy,
		logger:  slog.Default().With("module", "jira"),
	}, nil
}

type project struct {
	ID string `json:"id"`
}

// EnsureVersion returns the version called name in projectKey, creating it
// when it does not exist yet.
func (c *Client) EnsureVersion(ctx context.Context, projectKey, name string) (*Version, error) {
	var existing []Version
	path := "/rest/api/3/project/" + url.PathEscape(projectKey) + "/versions"
	if err := c.do(ctx, http.MethodGet, path, nil, &existing); err != nil {
		return nil, fmt.Errorf("jira: list versions of %s: %w", projectKey, err)
	}
	for i := range existing {
		if existing[i].Name == name {
			return &existing[i], nil
		}
	}

	var p project
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/project/"+url.PathEscape(projectKey), nil, &p); err != nil {
		return nil, fmt.Errorf("jira: get project %s: %w", projectKey, err)
	}
	var pid int64
	if _, err := fmt.Sscan(p.ID, &pid); err != nil {
		return nil, fmt.Errorf("jira: project %s has non-numeric id %q", projectKey, p.ID)
	}

	created := Version{}
	if err := c.do(ctx, http.MethodPost, "/rest/api/3/version", Version{Name: name, ProjectID: pid}, &created); err != nil {
		return nil, fmt.Errorf("jira: create version %s: %w", name, err)
	}
	c.logger.Info("version created", "project", projectKey, "version", name, "id", created.ID)
	return &created, nil
}

// ReleaseVersion marks a version as released on the given date.
func (c *Client) ReleaseVersion(ctx context.Context, id string, date time.Time) error {
	body := map[string]any{
		"released":    true,
		"releaseDate": date.Format(time.DateOnly),
	}
	if err := c.do(ctx, http.MethodPut, "/rest/api/3/version/"+url.PathEscape(id), body, nil); err != nil {
		return fmt.Errorf("jira: release version %s: %w", id, err)
	}
	return nil
}

// SetFixVersion adds the named fix version to an issue. Unknown issues
// yield ErrIssueNotFound.
func (c *Client) SetFixVersion(ctx context.Context, issueKey, versionName string) error {
	body := map[string]any{
		"update": map[string]any{
			"fixVersions": []map[string]any{
				{"add": map[string]string{"name": versionName}},
			},
		},
	}
	err := c.do(ctx, http.MethodPut, "/rest/api/3/issue/"+url.PathEscape(issueKey), body, nil)
	var se *resilience.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrIssueNotFound, issueKey)
	}
	if err != nil {
		return fmt.Errorf("jira: set fix version on %s: %w", issueKey, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	return resilience.Retry(ctx, c.policy, func() error {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return resilience.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.SetBasicAuth(c.email, c.token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", version.UserAgent())
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return resilience.NewStatusError("jira", resp)
		}
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resilience.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	})
}
