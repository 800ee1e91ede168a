// Package teams posts release notifications to a Microsoft Teams incoming
// webhook as legacy MessageCards.
package teams

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/relman-dev/relman/internal/resilience"
	"github.com/relman-dev/relman/pkg/version"
)

// ErrNoWebhook is returned when no webhook URL is configured.
var ErrNoWebhook = errors.New("teams: webhook url is empty")

// DefaultThemeColor is the accent color of release cards.
const DefaultThemeColor = "2EB886"

// Fact is a name/value pair shown in the card's fact table.
type Fact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Notice is the content of one notification.
type Notice struct {
	Title     string
	Summary   string
	Text      string // markdown
	Facts     []Fact
	LinkTitle string
	LinkURL   string
}

type messageCard struct {
	Type       string        `json:"@type"`
	Context    string        `json:"@context"`
	ThemeColor string        `json:"themeColor"`
	Summary    string        `json:"summary"`
	Title      string        `json:"title"`
	Sections   []cardSection `json:"sections,omitempty"`
	Actions    []cardAction  `json:"potentialAction,omitempty"`
}

type cardSection struct {
	Text     string `json:"text,omitempty"`
	Facts    []Fact `json:"facts,omitempty"`
	Markdown bool   `json:"markdown"`
}

type cardAction struct {
	Type    string       `json:"@type"`
	Name    string       `json:"name"`
	Targets []cardTarget `json:"targets"`
}

type cardTarget struct {
	OS  string `json:"os"`
	URI string `json:"uri"`
}

// Client sends notices to one webhook.
type Client struct {
	url    string
	client *http.Client
	policy resilience.RetryPolicy
	logger *slog.Logger
}

// New creates a webhook client. A nil httpClient uses a 10s timeout.
func New(webhookURL string, httpClient *http.Client) (*Client, error) {
	if webhookURL == "" {
		return nil, ErrNoWebhook
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		url:    webhookURL,
		client: httpClient,
		policy: resilience.DefaultHTTPPolicy(),
		logger: slog.Default().With("module", "teams"),
	}, nil
}

// WithRetry replaces the retry policy.
func (c *Client) WithRetry(p resilience.RetryPolicy) *Client {
	c.policy = p
	return c
}

// Notify posts n as a MessageCard.
func (c *Client) Notify(ctx context.Context, n Notice) error {
	payload, err := json.Marshal(buildCard(n))
	if err != nil {
		return fmt.Errorf("teams: encode card: %w", err)
	}

	err = resilience.Retry(ctx, c.policy, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
		if err != nil {
			return resilience.Permanent(fmt.Errorf("teams: create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", version.UserAgent())

		resp, err := c.client.Do(req)
		if err != nil {
			var ue *url.Error
			if errors.As(err, &ue) {
				ue.URL = resilience.RedactPath(ue.URL)
			}
			return fmt.Errorf("teams: request failed: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			se := resilience.NewStatusError("teams", resp)
			se.URL = resilience.RedactPath(se.URL)
			return se
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("notification sent", "title", n.Title)
	return nil
}

func buildCard(n Notice) messageCard {
	summary := n.Summary
	if summary == "" {
		summary = n.Title
	}
	card := messageCard{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: DefaultThemeColor,
		Summary:    summary,
		Title:      n.Title,
	}
	if n.Text != "" || len(n.Facts) > 0 {
		card.Sections = []cardSection{{Text: n.Text, Facts: n.Facts, Markdown: true}}
	}
	if n.LinkURL != "" {
		name := n.LinkTitle
		if name == "" {
			name = "Open"
		}
		card.Actions = []cardAction{{
			Type:    "OpenUri",
			Name:    name,
			Targets: []cardTarget{{OS: "default", URI: n.LinkURL}},
		}}
	}
	return card
}
