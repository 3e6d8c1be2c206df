// Package workflow implements the interactive deployment sequence: verify
// the upstream remote, reset the target branch, select and cherry-pick
// commits, and push the result.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fleetops/deploypick/internal/git"
	gh "github.com/fleetops/deploypick/internal/github"
	"github.com/fleetops/deploypick/internal/refs"
	"github.com/fleetops/deploypick/internal/ui"
)

// Config carries the repository identity and workflow defaults.
type Config struct {
	// Owner and Repo name the canonical repository.
	Owner string
	Repo  string

	// SSHURL and HTTPSURL are the two accepted forms of the canonical
	// repository URL.
	SSHURL   string
	HTTPSURL string

	// DeployBranch is the default target branch offered at the prompt.
	DeployBranch string

	// DocsURL points at the remote-setup documentation printed whenever the
	// remote configuration is mutated.
	DocsURL string
}

// Result summarizes a completed run.
type Result struct {
	Branch         string
	CommitsApplied int
	Pushed         bool
}

// Workflow holds the collaborators of a single run. It is not safe for
// concurrent use; the sequence is strictly serial and blocks on terminal
// input at each decision point.
type Workflow struct {
	Config Config
	Git    git.Client
	GitHub gh.Client // optional; nil skips the preflight
	UI     *ui.UI
	Prompt ui.Prompter
	Log    *slog.Logger
}

// Run executes the full deployment sequence. It returns ErrDeclined when the
// user refuses a required confirmation and a *StepError when a collaborator
// operation fails inside a phase that has a diagnostic playbook.
func (w *Workflow) Run(ctx context.Context) (Result, error) {
	if err := w.ensureUpstream(ctx); err != nil {
		return Result{}, err
	}

	w.preflight(ctx)

	branch, err := w.prepareBranch(ctx)
	if err != nil {
		return Result{}, err
	}

	applied, err := w.selectCommits(ctx)
	if err != nil {
		return Result{Branch: branch, CommitsApplied: applied}, err
	}

	result := Result{Branch: branch, CommitsApplied: applied}

	if applied == 0 {
		w.UI.Info("no changes staged, nothing to push")
		return result, nil
	}

	if err := w.Git.Push(ctx, "upstream", branch); err != nil {
		return result, err
	}
	result.Pushed = true

	if branch == w.Config.DeployBranch {
		w.UI.Success("pushed %d commit(s) to the deploy branch %s", applied, ui.Cyan("upstream/"+branch))
	} else {
		w.UI.Success("pushed %d commit(s) to %s", applied, ui.Cyan("upstream/"+branch))
	}

	return result, nil
}

// ensureUpstream verifies that a remote named upstream points at one of the
// two canonical URLs, repairing the configuration with the user's consent
// when it does not.
func (w *Workflow) ensureUpstream(ctx context.Context) error {
	remotes, err := w.Git.Remotes(ctx)
	if err != nil {
		return err
	}

	var upstream, origin *git.Remote
	for i := range remotes {
		switch remotes[i].Name {
		case "upstream":
			upstream = &remotes[i]
		case "origin":
			origin = &remotes[i]
		}
	}

	if upstream != nil {
		if w.matchesCanonical(*upstream) {
			w.UI.Success("upstream remote exists and points at %s/%s", w.Config.Owner, w.Config.Repo)
			return nil
		}

		w.UI.Warning("upstream remote points at %s, expected %s or %s",
			firstURL(*upstream), w.Config.SSHURL, w.Config.HTTPSURL)
		ok, err := w.Prompt.Confirm(fmt.Sprintf("Point the upstream remote at %s instead?", w.Config.HTTPSURL))
		if err != nil {
			return err
		}
		if !ok {
			return ErrDeclined
		}
		if err := w.Git.SetRemoteURL(ctx, "upstream", w.Config.HTTPSURL); err != nil {
			return err
		}
		w.remoteDocsHint()
		w.UI.Success("upstream remote updated")
		return nil
	}

	if origin != nil && w.matchesHTTPS(*origin) {
		ok, err := w.Prompt.Confirm("Rename the origin remote to upstream?")
		if err != nil {
			return err
		}
		if !ok {
			return ErrDeclined
		}
		if err := w.Git.RenameRemote(ctx, "origin", "upstream"); err != nil {
			return err
		}
		w.remoteDocsHint()
		w.UI.Success("origin renamed to upstream")
		return nil
	}

	ok, err := w.Prompt.Confirm(fmt.Sprintf("Add an upstream remote pointing at %s?", w.Config.SSHURL))
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}
	if err := w.Git.AddRemote(ctx, "upstream", w.Config.SSHURL); err != nil {
		return err
	}
	w.remoteDocsHint()
	w.UI.Success("upstream remote added")
	return nil
}

func (w *Workflow) matchesCanonical(remote git.Remote) bool {
	for _, url := range remote.URLs {
		if url == w.Config.SSHURL || url == w.Config.HTTPSURL {
			return true
		}
	}
	return false
}

func (w *Workflow) matchesHTTPS(remote git.Remote) bool {
	for _, url := range remote.URLs {
		if url == w.Config.HTTPSURL {
			return true
		}
	}
	return false
}

func (w *Workflow) remoteDocsHint() {
	if w.Config.DocsURL != "" {
		w.UI.Info("remote setup guide: %s", w.Config.DocsURL)
	}
}

func firstURL(remote git.Remote) string {
	if len(remote.URLs) > 0 {
		return remote.URLs[0]
	}
	return "(no URL)"
}

// preflight asks GitHub whether the canonical repository and deploy branch
// are reachable. It is purely advisory: any failure is reported as a warning
// and the workflow continues.
func (w *Workflow) preflight(ctx context.Context) {
	if w.GitHub == nil {
		return
	}

	repo, err := w.GitHub.GetRepository(ctx, w.Config.Owner, w.Config.Repo)
	if err != nil {
		if gh.IsRetryable(err) {
			w.UI.Warning("skipping GitHub preflight, API is unavailable: %v", err)
		} else {
			w.UI.Warning("GitHub preflight failed: %v", err)
		}
		return
	}
	w.logDebug("github preflight", "repository", repo.FullName, "default_branch", repo.DefaultBranch)

	exists, err := w.GitHub.BranchExists(ctx, w.Config.Owner, w.Config.Repo, w.Config.DeployBranch)
	if err != nil {
		w.UI.Warning("could not check deploy branch on GitHub: %v", err)
		return
	}
	if !exists {
		w.UI.Warning("branch %s does not exist on %s yet; pushing will create it", w.Config.DeployBranch, repo.FullName)
		return
	}
	w.UI.Success("GitHub preflight passed for %s", repo.FullName)
}

// prepareBranch fetches upstream, asks for the target branch, checks it out
// when needed, and hard-resets it to the upstream counterpart unless the
// tracking status already reports it up to date.
func (w *Workflow) prepareBranch(ctx context.Context) (string, error) {
	w.UI.Info("fetching upstream")
	if err := w.Git.Fetch(ctx, "upstream"); err != nil {
		return "", err
	}

	current, err := w.Git.CurrentBranch(ctx)
	if err != nil {
		return "", err
	}

	answer, err := w.Prompt.Input("Target branch", w.Config.DeployBranch)
	if err != nil {
		return "", err
	}
	target := refs.NormalizeBranch(answer)
	if err := refs.ValidateBranchName(target); err != nil {
		return "", fmt.Errorf("invalid target branch %q: %w", answer, err)
	}

	if target != current {
		if err := w.Git.Checkout(ctx, target); err != nil {
			return "", err
		}
	}

	status, err := w.Git.TrackingStatus(ctx)
	if err != nil {
		return "", err
	}

	if strings.Contains(status, fmt.Sprintf("up to date with 'upstream/%s'", target)) {
		w.UI.Success("%s is up to date with upstream", target)
		return target, nil
	}

	w.UI.Warning("%s has diverged from upstream/%s", target, target)
	w.UI.Warning("%s", ui.Yellow(fmt.Sprintf("a hard reset will discard every local commit on %s", target)))
	ok, err := w.Prompt.Confirm(fmt.Sprintf("Hard reset %s to upstream/%s?", target, target))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrDeclined
	}

	if err := w.Git.ResetHard(ctx, "upstream/"+target); err != nil {
		return "", err
	}
	w.UI.Success("%s reset to upstream/%s", target, target)
	return target, nil
}

// selectCommits runs bulk mode when a source branch is given, otherwise (or
// when the bulk confirmation is declined) manual SHA-by-SHA entry. It
// returns the number of commits applied.
func (w *Workflow) selectCommits(ctx context.Context) (int, error) {
	answer, err := w.Prompt.Input("Source branch for bulk cherry-pick (empty for manual entry)", "")
	if err != nil {
		return 0, err
	}

	source := refs.NormalizeBranch(answer)
	if source != "" {
		applied, fallThrough, err := w.bulkPick(ctx, source)
		if err != nil || !fallThrough {
			return applied, err
		}
		// Declining the bulk confirmation switches to manual entry instead
		// of aborting. Keep it that way.
		w.UI.Info("bulk selection declined, switching to manual entry")
	}

	return w.manualPick(ctx)
}

// bulkPick applies the newest n commits of source in oldest-first order as a
// single batch. fallThrough reports that the user declined the confirmation
// and manual entry should take over.
func (w *Workflow) bulkPick(ctx context.Context, source string) (applied int, fallThrough bool, err error) {
	if err := refs.ValidateBranchName(source); err != nil {
		return 0, false, fmt.Errorf("invalid source branch %q: %w", source, err)
	}

	n, err := w.Prompt.Int(fmt.Sprintf("How many commits from %s", source))
	if err != nil {
		return 0, false, err
	}
	if n <= 0 {
		return 0, false, fmt.Errorf("commit count must be positive, got %d", n)
	}

	commits, err := w.Git.RecentCommits(ctx, source, n)
	if err != nil {
		return 0, false, &StepError{Phase: PhaseLogQuery, Err: err}
	}

	w.UI.Info("the following %d commit(s) will be applied oldest first:", len(commits))
	for _, commit := range commits {
		w.UI.Plain("  %s %s", ui.Cyan(shortSHA(commit.SHA)), commit.Subject)
	}

	ok, err := w.Prompt.Confirm("Apply these commits?")
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, true, nil
	}

	shas := make([]string, len(commits))
	for i, commit := range commits {
		shas[i] = commit.SHA
	}

	if err := w.Git.CherryPick(ctx, shas...); err != nil {
		return 0, false, &StepError{Phase: PhaseCherryPick, Err: err}
	}

	w.UI.Success("applied %d commit(s) from %s", len(commits), source)
	return len(commits), false, nil
}

// manualPick prompts for one commit at a time until the sentinel ends the
// loop, applying each immediately and echoing the running count.
func (w *Workflow) manualPick(ctx context.Context) (int, error) {
	applied := 0
	for {
		answer, err := w.Prompt.Input("Commit to cherry-pick (q or empty to finish)", "")
		if err != nil {
			return applied, err
		}
		if refs.IsSentinel(answer) {
			return applied, nil
		}

		sha := refs.NormalizeCommit(answer)

		if err := w.Git.CherryPick(ctx, sha); err != nil {
			return applied, &StepError{Phase: PhaseCherryPick, Err: err}
		}

		applied++
		w.UI.Success("applied %s (%d so far)", ui.Cyan(shortSHA(sha)), applied)
	}
}

func (w *Workflow) logDebug(msg string, args ...any) {
	if w.Log != nil {
		w.Log.Debug(msg, args...)
	}
}

func shortSHA(sha string) string {
	if len(sha) > 12 {
		return sha[:12]
	}
	return sha
}
