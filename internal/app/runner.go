// Package app wires configuration, logging, and the collaborator clients
// into the interactive deployment workflow.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/fleetops/deploypick/internal/git"
	gh "github.com/fleetops/deploypick/internal/github"
	"github.com/fleetops/deploypick/internal/ui"
	"github.com/fleetops/deploypick/internal/workflow"
)

// Runner glues together the workflow and its supporting services.
type Runner struct {
	cfg       Config
	log       *slog.Logger
	ui        *ui.UI
	prompt    ui.Prompter
	gitClient git.Client // only set for testing via NewRunnerWithDeps
	ghFactory gh.Factory
}

// NewRunner constructs a Runner with the supplied configuration.
func NewRunner(cfg Config) (*Runner, error) {
	logger, err := NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	return &Runner{
		cfg:       cfg,
		log:       logger,
		ui:        ui.New(),
		prompt:    ui.NewTerminalPrompter(os.Stdin, os.Stdout),
		ghFactory: gh.NewRESTFactory(cfg.GitHubBaseURL, cfg.GitHubUploadURL),
	}, nil
}

// NewRunnerWithDeps constructs a Runner with injected dependencies for testing.
func NewRunnerWithDeps(cfg Config, log *slog.Logger, term *ui.UI, prompt ui.Prompter, gitClient git.Client, ghFactory gh.Factory) *Runner {
	return &Runner{cfg: cfg, log: log, ui: term, prompt: prompt, gitClient: gitClient, ghFactory: ghFactory}
}

// Run executes the deployment workflow using the provided context. The
// returned error is ErrDeclined, a *workflow.StepError, or the raw failure.
func (r *Runner) Run(ctx context.Context) error {
	if r.log != nil {
		r.log.Info("starting deploy run", "dry_run", r.cfg.DryRun, "deploy_branch", r.cfg.DeployBranch)
	}

	if r.cfg.DryRun {
		r.ui.Warning("dry run: no git commands will be executed")
	}

	gitClient := r.gitClient
	if gitClient == nil {
		gitClient = r.buildGitClient()
	}

	wf := &workflow.Workflow{
		Config: workflow.Config{
			Owner:        r.cfg.Owner,
			Repo:         r.cfg.Repo,
			SSHURL:       r.cfg.SSHURL,
			HTTPSURL:     r.cfg.HTTPSURL,
			DeployBranch: r.cfg.DeployBranch,
			DocsURL:      r.cfg.DocsURL,
		},
		Git:    gitClient,
		GitHub: r.buildGitHubClient(ctx),
		UI:     r.ui,
		Prompt: r.prompt,
		Log:    r.log,
	}

	result, err := wf.Run(ctx)
	if err != nil {
		r.printGuidance(err)
		return err
	}

	if summaryErr := r.writeRunSummary(result); summaryErr != nil && r.log != nil {
		r.log.Warn("failed to write run summary", "error", summaryErr)
	}

	return nil
}

func (r *Runner) buildGitClient() git.Client {
	if r.cfg.DryRun {
		return git.NewNoopClient(r.cfg.SSHURL, r.cfg.DeployBranch)
	}

	client := git.NewShellClient(r.cfg.RepoDir, r.log)
	if r.cfg.Verbose {
		client.Trace = os.Stderr
	}
	return client
}

// buildGitHubClient returns the preflight client, or nil when the run is a
// dry run, no token is configured, or construction fails. The preflight is
// advisory, so none of these stop the run.
func (r *Runner) buildGitHubClient(ctx context.Context) gh.Client {
	if r.cfg.DryRun || r.cfg.GitHubToken == "" || r.ghFactory == nil {
		return nil
	}

	client, err := r.ghFactory.New(ctx, r.cfg.GitHubToken)
	if err != nil {
		r.ui.Warning("skipping GitHub preflight: %v", err)
		return nil
	}
	return client
}

func (r *Runner) printGuidance(err error) {
	if errors.Is(err, workflow.ErrDeclined) {
		r.ui.Error("aborted: confirmation declined")
		return
	}

	var stepErr *workflow.StepError
	if !errors.As(err, &stepErr) {
		return
	}

	if guidance := GuidanceFor(stepErr.Phase); guidance != "" {
		r.ui.Plain("%s", guidance)
	}
}
