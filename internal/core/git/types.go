package git

import (
	"context"
	"strings"
	"time"
)

// Repository is the read side of a Git repository plus tag management.
type Repository interface {
	Root() string
	CurrentBranch() (string, error)
	Status() (*GitStatus, error)
	IsClean() (bool, error)
	Head(ctx context.Context) (string, error)
	ResolveRef(ctx context.Context, ref string) (string, error)
	Tags(ctx context.Context, mergedInto string) ([]string, error)
	TagExists(ctx context.Context, name string) (bool, error)
	Log(ctx context.Context, from, to string) ([]Commit, error)
	CreateTag(ctx context.Context, name, ref, message string) error
	DeleteTag(ctx context.Context, name string) error
	PushTag(ctx context.Context, remote, name string) error
	RemoteURL(ctx context.Context, remote string) (string, error)
}

// GitStatus summarizes the working tree.
type GitStatus struct {
	Staged    []string
	Modified  []string
	Untracked []string
	Ahead     int
	Behind    int
}

// Commit is a single commit with its full message.
type Commit struct {
	Hash    string
	Author  string
	Email   string
	Date    time.Time
	Message string
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return subject
}
