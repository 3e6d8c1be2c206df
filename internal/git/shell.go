package git

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// ShellClient drives the working copy by shelling out to the system git
// binary. Each operation runs exactly once; failures surface as *Error with
// the command's combined output attached. There is no automatic retry — the
// operator resolves failures out-of-band and reruns.
type ShellClient struct {
	// Dir is the working copy the commands run in. Empty means the process
	// working directory.
	Dir string

	// Git is the git binary to execute. Defaults to "git" when empty.
	Git string

	// Log receives a debug entry per invocation when set.
	Log *slog.Logger

	// Trace, when set, echoes every command as "=> git ..." before it runs,
	// mirroring shell xtrace output for verbose sessions.
	Trace io.Writer
}

// NewShellClient returns a Client operating on the working copy at dir.
func NewShellClient(dir string, log *slog.Logger) *ShellClient {
	return &ShellClient{Dir: dir, Log: log}
}

func (c *ShellClient) gitBinary() string {
	if c.Git == "" {
		return "git"
	}
	return c.Git
}

func (c *ShellClient) AddRemote(ctx context.Context, name, url string) error {
	return c.run(ctx, "remote", "add", name, url)
}

func (c *ShellClient) RenameRemote(ctx context.Context, oldName, newName string) error {
	return c.run(ctx, "remote", "rename", oldName, newName)
}

func (c *ShellClient) SetRemoteURL(ctx context.Context, name, url string) error {
	return c.run(ctx, "remote", "set-url", name, url)
}

func (c *ShellClient) Fetch(ctx context.Context, remote string) error {
	return c.run(ctx, "fetch", remote)
}

func (c *ShellClient) Checkout(ctx context.Context, branch string) error {
	return c.run(ctx, "checkout", branch)
}

func (c *ShellClient) TrackingStatus(ctx context.Context) (string, error) {
	// The "up to date with" phrase has no porcelain equivalent, so the long
	// status text is matched by the caller.
	return c.capture(ctx, "status")
}

func (c *ShellClient) ResetHard(ctx context.Context, ref string) error {
	return c.run(ctx, "reset", "--hard", ref)
}

func (c *ShellClient) RecentCommits(ctx context.Context, branch string, n int) ([]Commit, error) {
	if n <= 0 {
		return nil, fmt.Errorf("commit count must be positive, got %d", n)
	}

	// --reverse yields the newest n commits in oldest-first order, which is
	// the order a batch cherry-pick needs.
	output, err := c.capture(ctx, "log", "--reverse", "-n", strconv.Itoa(n), "--format=%H%x09%s", branch)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	commits := make([]Commit, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sha, subject, _ := strings.Cut(line, "\t")
		commits = append(commits, Commit{SHA: sha, Subject: subject})
	}

	return commits, nil
}

func (c *ShellClient) CherryPick(ctx context.Context, shas ...string) error {
	if len(shas) == 0 {
		return fmt.Errorf("cherry-pick requires at least one commit")
	}
	return c.run(ctx, append([]string{"cherry-pick"}, shas...)...)
}

func (c *ShellClient) Push(ctx context.Context, remote, branch string) error {
	return c.run(ctx, "push", remote, branch)
}

func (c *ShellClient) run(ctx context.Context, args ...string) error {
	_, err := c.execute(ctx, args...)
	return err
}

func (c *ShellClient) capture(ctx context.Context, args ...string) (string, error) {
	return c.execute(ctx, args...)
}

func (c *ShellClient) execute(ctx context.Context, args ...string) (string, error) {
	full := args
	if c.Dir != "" {
		full = append([]string{"-C", c.Dir}, args...)
	}

	if c.Trace != nil {
		fmt.Fprintf(c.Trace, "=> git %s\n", strings.Join(args, " "))
	}
	if c.Log != nil {
		c.Log.Debug("running git command", "args", strings.Join(args, " "))
	}

	cmd := exec.CommandContext(ctx, c.gitBinary(), full...)
	setProcessGroup(cmd)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Start(); err != nil {
		return "", &Error{Args: full, Output: output.String(), Err: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		terminateProcessGroup(cmd)
		<-done
		return "", ctx.Err()
	case err := <-done:
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", &Error{Args: full, Output: output.String(), Err: err}
		}
	}

	return output.String(), nil
}
