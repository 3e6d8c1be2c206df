// Package git wraps the version-control operations the deployment workflow
// consumes. Mutations shell out to the git binary; read-side inspection uses
// go-git where repository metadata has a structured form.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Remote is a configured remote and its fetch URLs.
type Remote struct {
	Name string
	URLs []string
}

// Commit pairs a commit identifier with its one-line subject.
type Commit struct {
	SHA     string
	Subject string
}

// Client is the version-control collaborator the workflow drives. Every
// operation takes a context so an interrupt can stop an in-flight command.
type Client interface {
	// Remotes lists the configured remotes of the working copy.
	Remotes(ctx context.Context) ([]Remote, error)

	// AddRemote registers a new remote.
	AddRemote(ctx context.Context, name, url string) error

	// RenameRemote renames an existing remote.
	RenameRemote(ctx context.Context, oldName, newName string) error

	// SetRemoteURL points an existing remote at a different URL.
	SetRemoteURL(ctx context.Context, name, url string) error

	// Fetch updates the remote-tracking refs for the named remote.
	Fetch(ctx context.Context, remote string) error

	// CurrentBranch returns the short name of the checked-out branch.
	CurrentBranch(ctx context.Context) (string, error)

	// Checkout switches the working copy to the named branch.
	Checkout(ctx context.Context, branch string) error

	// TrackingStatus returns the human-readable status text describing how
	// the current branch relates to its upstream counterpart.
	TrackingStatus(ctx context.Context) (string, error)

	// ResetHard discards local state and moves the current branch to ref.
	ResetHard(ctx context.Context, ref string) error

	// RecentCommits returns the newest n commits reachable from branch in
	// oldest-first order.
	RecentCommits(ctx context.Context, branch string, n int) ([]Commit, error)

	// CherryPick applies the given commits onto the current branch. Multiple
	// identifiers form a single batch operation.
	CherryPick(ctx context.Context, shas ...string) error

	// Push publishes branch to the named remote.
	Push(ctx context.Context, remote, branch string) error
}

// Error captures a failed git invocation: the arguments it ran with, its
// combined output, and the underlying execution error.
type Error struct {
	Args   []string
	Output string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit status of the failed command, defaulting to 1
// when the process never ran or was killed by a signal.
func (e *Error) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		if code := exitErr.ExitCode(); code > 0 {
			return code
		}
	}
	return 1
}
