// Package gh provides the optional GitHub preflight used to sanity-check the
// canonical repository before the deployment workflow mutates anything.
package gh

import (
	"context"
	"errors"
)

// Repository holds the subset of repository metadata the preflight reports.
type Repository struct {
	FullName      string
	DefaultBranch string
}

// Client exposes the GitHub queries consumed by the preflight step.
type Client interface {
	// GetRepository fetches repository metadata for owner/repo.
	GetRepository(ctx context.Context, owner, repo string) (Repository, error)

	// BranchExists reports whether the named branch exists in owner/repo.
	BranchExists(ctx context.Context, owner, repo, branch string) (bool, error)
}

// Factory builds concrete GitHub clients (e.g., REST-backed) for the runner.
type Factory interface {
	New(ctx context.Context, token string) (Client, error)
}

// ErrRepositoryNotFound indicates the canonical repository could not be found
// with the supplied credentials.
var ErrRepositoryNotFound = errors.New("github: repository not found")

// retryableError marks an error that may succeed if the operation is retried.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	if e == nil || e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// IsRetryable reports whether the supplied error resulted from a transient
// GitHub API failure (rate limiting, 5xx responses, network timeouts). The
// preflight treats these as "skipped" rather than as configuration problems.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var target *retryableError
	return errors.As(err, &target)
}
