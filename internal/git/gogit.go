package git

import (
	"context"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
)

// Read-side inspection goes through go-git so remote names, URLs, and the
// current branch come from repository metadata instead of parsed command
// output.

func (c *ShellClient) openRepository() (*gogit.Repository, error) {
	path := c.Dir
	if path == "" {
		path = "."
	}

	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository at %s: %w", path, err)
	}
	return repo, nil
}

func (c *ShellClient) Remotes(ctx context.Context) ([]Remote, error) {
	repo, err := c.openRepository()
	if err != nil {
		return nil, err
	}

	configured, err := repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}

	remotes := make([]Remote, 0, len(configured))
	for _, remote := range configured {
		cfg := remote.Config()
		urls := make([]string, len(cfg.URLs))
		copy(urls, cfg.URLs)
		remotes = append(remotes, Remote{Name: cfg.Name, URLs: urls})
	}

	return remotes, nil
}

func (c *ShellClient) CurrentBranch(ctx context.Context) (string, error) {
	repo, err := c.openRepository()
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}

	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is detached at %s; check out a branch first", head.Hash())
	}

	return head.Name().Short(), nil
}
