// Package codebase is a small client for the CodebaseHQ v3 API covering
// the endpoints used during a release: listing a project's repositories
// and recording deployments.
package codebase

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

// DefaultBaseURL is the public CodebaseHQ API endpoint.
const DefaultBaseURL = "https://api3.codebasehq.com"

// ErrMissingCredentials is returned when account, username or key is empty.
var ErrMissingCredentials = errors.New("codebase: missing credentials")

// Repository is a repository hosted in a CodebaseHQ project.
type Repository struct {
	Name        string `json:"name"`
	Permalink   string `json:"permalink"`
	Description string `json:"description,omitempty"`
	CloneURL    string `json:"clone_url,omitempty"`
	LastCommit  string `json:"last_commit_ref,omitempty"`
}

// Deployment describes a deployment to record against a repository.
type Deployment struct {
	Branch      string `json:"branch"`
	Revision    string `json:"revision"`
	Environment string `json:"environment,omitempty"`
	Servers     string `json:"servers"`
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	Account  string
	Username string
	APIKey   string
	// HTTPClient defaults to a client with a 15s timeout.
	HTTPClient *http.Client
	Retry      resilience.RetryPolicy
}

// Client talks to the CodebaseHQ API.
type Client struct {
	baseURL string
	user    string
	apiKey  string
	client  *http.Client
	policy  resilience.RetryPolicy
	logger  *slog.Logger
}

// New creates a Client. The API user is "account/username".
func New(opts Options) (*Client, error) {
	if opts.Account == "" || opts.Username == "" || opts.APIKey == "" {
		return nil, ErrMissingCredentials
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
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
		baseURL: base,
		user:    opts.Account + "/" + opts.Username,
		apiKey:  opts.APIKey,
		client:  hc,
		policy:  policy,
		logger:  slog.Default().With("module", "codebase"),
	}, nil
}

// repositoryEnvelope matches the {"repository": {...}} wrapping of list results.
type repositoryEnvelope struct {
	Repository Repository `json:"repository"`
}

// Repositories lists the repositories of a project identified by permalink.
func (c *Client) Repositories(ctx context.Context, project string) ([]Repository, error) {
	path := "/" + url.PathEscape(project) + "/repositories"

	var envelopes []repositoryEnvelope
	if err := c.do(ctx, http.MethodGet, path, nil, &envelopes); err != nil {
		return nil, fmt.Errorf("list repositories of %s: %w", project, err)
	}

	repos := make([]Repository, 0, len(envelopes))
	for _, e := range envelopes {
		repos = append(repos, e.Repository)
	}
	return repos, nil
}

// CreateDeployment records a deployment of revision to the given repository.
func (c *Client) CreateDeployment(ctx context.Context, project, repo string, d Deployment) error {
	if d.Servers == "" {
		d.Servers = "-"
	}
	path := "/" + url.PathEscape(project) + "/" + url.PathEscape(repo) + "/deployments"
	body := struct {
		Deployment Deployment `json:"deployment"`
	}{Deployment: d}

	if err := c.do(ctx, http.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("create deployment for %s/%s: %w", project, repo, err)
	}
	c.logger.Info("deployment recorded", "project", project, "repo", repo, "revision", d.Revision)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
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
		req.SetBasicAuth(c.user, c.apiKey)
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
			return resilience.NewStatusError("codebase", resp)
		}
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resilience.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	})
}
