package gh

import "context"

// NewNoopClient returns a Client whose answers always pass the preflight,
// for tests and dry runs that should not touch the network.
func NewNoopClient(defaultBranch string) Client {
	return &noopClient{defaultBranch: defaultBranch}
}

type noopClient struct {
	defaultBranch string
}

func (c *noopClient) GetRepository(ctx context.Context, owner, repo string) (Repository, error) {
	return Repository{FullName: owner + "/" + repo, DefaultBranch: c.defaultBranch}, nil
}

func (c *noopClient) BranchExists(ctx context.Context, owner, repo, branch string) (bool, error) {
	return true, nil
}
