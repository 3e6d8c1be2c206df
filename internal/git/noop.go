package git

import (
	"context"
	"fmt"
)

// NewNoopClient returns a Client that performs no git operations at all,
// answering queries with canned data so the interactive flow can be
// rehearsed end to end in dry-run mode.
func NewNoopClient(upstreamURL, branch string) *NoopClient {
	return &NoopClient{upstreamURL: upstreamURL, branch: branch}
}

// NoopClient pretends the working copy already matches the happy path: the
// upstream remote is configured and the branch tracks it cleanly.
type NoopClient struct {
	upstreamURL string
	branch      string
}

func (c *NoopClient) Remotes(ctx context.Context) ([]Remote, error) {
	return []Remote{{Name: "upstream", URLs: []string{c.upstreamURL}}}, nil
}

func (c *NoopClient) AddRemote(ctx context.Context, name, url string) error { return nil }

func (c *NoopClient) RenameRemote(ctx context.Context, oldName, newName string) error { return nil }

func (c *NoopClient) SetRemoteURL(ctx context.Context, name, url string) error { return nil }

func (c *NoopClient) Fetch(ctx context.Context, remote string) error { return nil }

func (c *NoopClient) CurrentBranch(ctx context.Context) (string, error) {
	return c.branch, nil
}

func (c *NoopClient) Checkout(ctx context.Context, branch string) error {
	c.branch = branch
	return nil
}

func (c *NoopClient) TrackingStatus(ctx context.Context) (string, error) {
	return fmt.Sprintf("On branch %s\nYour branch is up to date with 'upstream/%s'.\n", c.branch, c.branch), nil
}

func (c *NoopClient) ResetHard(ctx context.Context, ref string) error { return nil }

func (c *NoopClient) RecentCommits(ctx context.Context, branch string, n int) ([]Commit, error) {
	commits := make([]Commit, 0, n)
	for i := 0; i < n; i++ {
		commits = append(commits, Commit{
			SHA:     fmt.Sprintf("%040d", i+1),
			Subject: fmt.Sprintf("dry-run placeholder commit %d", i+1),
		})
	}
	return commits, nil
}

func (c *NoopClient) CherryPick(ctx context.Context, shas ...string) error { return nil }

func (c *NoopClient) Push(ctx context.Context, remote, branch string) error { return nil }
