package teams

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/relman-dev/relman/internal/resilience"
)

func TestNew_EmptyURL(t *testing.T) {
	t.Parallel()

	if _, err := New("", nil); !errors.Is(err, ErrNoWebhook) {
		t.Errorf("New(\"\") error = %v, want ErrNoWebhook", err)
	}
}

func TestNotify_PostsMessageCard(t *testing.T) {
	t.Parallel()

	bodies := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		bodies <- b
		_, _ = w.Write([]byte("1"))
	}))
	defer srv.Close()

	c, err := New(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	err = c.Notify(context.Background(), Notice{
		Title:     "api v1.2.0 released",
		Text:      "### Features\n- add export",
		Facts:     []Fact{{Name: "Tag", Value: "v1.2.0"}},
		LinkTitle: "Changelog",
		LinkURL:   "https://example.com/changelog",
	})
	if err != nil {
		t.Fatalf("Notify() error: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(<-bodies, &got); err != nil {
		t.Fatalf("decode card: %v", err)
	}
	if got["@type"] != "MessageCard" || got["summary"] != "api v1.2.0 released" {
		t.Errorf("card header = %v / %v", got["@type"], got["summary"])
	}
	actions, _ := got["potentialAction"].([]any)
	if len(actions) != 1 {
		t.Fatalf("potentialAction len = %d, want 1", len(actions))
	}
}

func TestBuildCard_NoSectionsWhenEmpty(t *testing.T) {
	t.Parallel()

	card := buildCard(Notice{Title: "t"})
	want := messageCard{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: DefaultThemeColor,
		Summary:    "t",
		Title:      "t",
	}
	if diff := cmp.Diff(want, card); diff != "" {
		t.Errorf("buildCard() mismatch (-want +got):\n%s", diff)
	}
}

func TestNotify_StatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Invalid webhook URL", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, srv.Client())
	c.WithRetry(resilience.RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond})

	err := c.Notify(context.Background(), Notice{Title: "x"})
	var se *resilience.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("Notify() error = %v, want StatusError", err)
	}
	if se.StatusCode != http.StatusBadRequest || se.Body != "Invalid webhook URL" {
		t.Errorf("StatusError = %d %q", se.StatusCode, se.Body)
	}
}

func TestNotify_ErrorsHideWebhookPath(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	const secret = "webhookb2/0f1e2d3c@tenant/IncomingWebhook/s3cr3t"
	c, _ := New(srv.URL+"/"+secret, srv.Client())
	c.WithRetry(resilience.RetryPolicy{MaxRetries: 1, BaseDelay: time.Millisecond})

	err := c.Notify(context.Background(), Notice{Title: "x"})
	if err == nil {
		t.Fatal("Notify() expected error")
	}
	if strings.Contains(err.Error(), "s3cr3t") {
		t.Errorf("error leaks the webhook path: %v", err)
	}
	if !strings.Contains(err.Error(), srv.Listener.Addr().String()) {
		t.Errorf("error should still name the host: %v", err)
	}

	srv.Close()
	err = c.Notify(context.Background(), Notice{Title: "x"})
	if err == nil || strings.Contains(err.Error(), "s3cr3t") {
		t.Errorf("transport error leaks the webhook path: %v", err)
	}
}
