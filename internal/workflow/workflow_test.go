package workflow_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fleetops/deploypick/internal/git"
	gh "github.com/fleetops/deploypick/internal/github"
	"github.com/fleetops/deploypick/internal/ui"
	"github.com/fleetops/deploypick/internal/workflow"
)

type fakeGit struct {
	remotes       []git.Remote
	currentBranch string
	upToDate      bool
	commits       []git.Commit // full history of the bulk source, oldest first

	remotesErr    error
	fetchErr      error
	logErr        error
	cherryPickErr map[string]error
	pushErr       error

	addedRemotes []string
	renames      []string
	setURLs      []string
	fetches      []string
	checkouts    []string
	resets       []string
	cherryPicks  [][]string
	pushes       []string
}

func (f *fakeGit) Remotes(context.Context) ([]git.Remote, error) {
	if f.remotesErr != nil {
		return nil, f.remotesErr
	}
	return f.remotes, nil
}

func (f *fakeGit) AddRemote(_ context.Context, name, url string) error {
	f.addedRemotes = append(f.addedRemotes, name+" "+url)
	return nil
}

func (f *fakeGit) RenameRemote(_ context.Context, oldName, newName string) error {
	f.renames = append(f.renames, oldName+" "+newName)
	return nil
}

func (f *fakeGit) SetRemoteURL(_ context.Context, name, url string) error {
	f.setURLs = append(f.setURLs, name+" "+url)
	return nil
}

func (f *fakeGit) Fetch(_ context.Context, remote string) error {
	f.fetches = append(f.fetches, remote)
	return f.fetchErr
}

func (f *fakeGit) CurrentBranch(context.Context) (string, error) {
	return f.currentBranch, nil
}

func (f *fakeGit) Checkout(_ context.Context, branch string) error {
	f.checkouts = append(f.checkouts, branch)
	f.currentBranch = branch
	return nil
}

func (f *fakeGit) TrackingStatus(context.Context) (string, error) {
	if f.upToDate {
		return fmt.Sprintf("Your branch is up to date with 'upstream/%s'.", f.currentBranch), nil
	}
	return fmt.Sprintf("Your branch and 'upstream/%s' have diverged.", f.currentBranch), nil
}

func (f *fakeGit) ResetHard(_ context.Context, ref string) error {
	f.resets = append(f.resets, ref)
	return nil
}

func (f *fakeGit) RecentCommits(_ context.Context, branch string, n int) ([]git.Commit, error) {
	if f.logErr != nil {
		return nil, f.logErr
	}
	if n >= len(f.commits) {
		return f.commits, nil
	}
	return f.commits[len(f.commits)-n:], nil
}

func (f *fakeGit) CherryPick(_ context.Context, shas ...string) error {
	f.cherryPicks = append(f.cherryPicks, shas)
	for _, sha := range shas {
		if err, ok := f.cherryPickErr[sha]; ok {
			return err
		}
	}
	return nil
}

func (f *fakeGit) Push(_ context.Context, remote, branch string) error {
	f.pushes = append(f.pushes, remote+" "+branch)
	return f.pushErr
}

type fakeGH struct {
	repo      gh.Repository
	repoErr   error
	branches  map[string]bool
	branchErr error
}

func (f *fakeGH) GetRepository(context.Context, string, string) (gh.Repository, error) {
	if f.repoErr != nil {
		return gh.Repository{}, f.repoErr
	}
	return f.repo, nil
}

func (f *fakeGH) BranchExists(_ context.Context, _, _, branch string) (bool, error) {
	if f.branchErr != nil {
		return false, f.branchErr
	}
	return f.branches[branch], nil
}

// scriptedPrompter replays canned answers and errors when a prompt arrives
// without one.
type scriptedPrompter struct {
	confirms []bool
	inputs   []string
	ints     []int

	confirmQuestions []string
}

func (p *scriptedPrompter) Confirm(question string) (bool, error) {
	p.confirmQuestions = append(p.confirmQuestions, question)
	if len(p.confirms) == 0 {
		return false, fmt.Errorf("unexpected confirm prompt: %s", question)
	}
	answer := p.confirms[0]
	p.confirms = p.confirms[1:]
	return answer, nil
}

func (p *scriptedPrompter) Input(question, def string) (string, error) {
	if len(p.inputs) == 0 {
		return "", fmt.Errorf("unexpected input prompt: %s", question)
	}
	answer := p.inputs[0]
	p.inputs = p.inputs[1:]
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func (p *scriptedPrompter) Int(question string) (int, error) {
	if len(p.ints) == 0 {
		return 0, fmt.Errorf("unexpected int prompt: %s", question)
	}
	answer := p.ints[0]
	p.ints = p.ints[1:]
	return answer, nil
}

var _ = Describe("Workflow", func() {
	const (
		sshURL   = "git@github.com:fleetops/platform.git"
		httpsURL = "https://github.com/fleetops/platform.git"
	)

	var (
		ctx    context.Context
		cfg    workflow.Config
		out    *bytes.Buffer
		repo   *fakeGit
		prompt *scriptedPrompter
	)

	canonicalUpstream := func() []git.Remote {
		return []git.Remote{{Name: "upstream", URLs: []string{sshURL}}}
	}

	history := func() []git.Commit {
		return []git.Commit{
			{SHA: "aaa1111111111111111111111111111111111111", Subject: "add alpha"},
			{SHA: "bbb2222222222222222222222222222222222222", Subject: "add beta"},
			{SHA: "ccc3333333333333333333333333333333333333", Subject: "add gamma"},
			{SHA: "ddd4444444444444444444444444444444444444", Subject: "add delta"},
		}
	}

	newWorkflow := func() *workflow.Workflow {
		return &workflow.Workflow{
			Config: cfg,
			Git:    repo,
			UI:     &ui.UI{Out: out, ErrOut: out},
			Prompt: prompt,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		cfg = workflow.Config{
			Owner:        "fleetops",
			Repo:         "platform",
			SSHURL:       sshURL,
			HTTPSURL:     httpsURL,
			DeployBranch: "deploy",
			DocsURL:      "https://docs.example.com/deploy-remotes",
		}
		out = &bytes.Buffer{}
		repo = &fakeGit{currentBranch: "deploy", upToDate: true, commits: history()}
		prompt = &scriptedPrompter{}
	})

	Describe("remote configuration", func() {
		It("performs no mutation when upstream matches a canonical URL", func() {
			repo.remotes = canonicalUpstream()
			prompt.inputs = []string{"", "", "q"} // target branch default, manual mode, quit

			result, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.CommitsApplied).To(BeZero())
			Expect(repo.addedRemotes).To(BeEmpty())
			Expect(repo.renames).To(BeEmpty())
			Expect(repo.setURLs).To(BeEmpty())
			Expect(out.String()).To(ContainSubstring("upstream remote exists"))
		})

		It("accepts the HTTPS canonical URL as well", func() {
			repo.remotes = []git.Remote{{Name: "upstream", URLs: []string{httpsURL}}}
			prompt.inputs = []string{"", "", "q"}

			_, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.setURLs).To(BeEmpty())
		})

		It("adds the upstream remote exactly once when no remote matches", func() {
			repo.remotes = []git.Remote{{Name: "origin", URLs: []string{"git@github.com:someone/fork.git"}}}
			prompt.confirms = []bool{true}
			prompt.inputs = []string{"", "", "q"}

			_, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.addedRemotes).To(Equal([]string{"upstream " + sshURL}))
			Expect(out.String()).To(ContainSubstring(cfg.DocsURL))
		})

		It("repairs a wrong upstream URL with consent", func() {
			repo.remotes = []git.Remote{{Name: "upstream", URLs: []string{"git@github.com:someone/fork.git"}}}
			prompt.confirms = []bool{true}
			prompt.inputs = []string{"", "", "q"}

			_, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.setURLs).To(Equal([]string{"upstream " + httpsURL}))
		})

		It("renames origin to upstream when origin matches the HTTPS URL", func() {
			repo.remotes = []git.Remote{{Name: "origin", URLs: []string{httpsURL}}}
			prompt.confirms = []bool{true}
			prompt.inputs = []string{"", "", "q"}

			_, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.renames).To(Equal([]string{"origin upstream"}))
			Expect(repo.addedRemotes).To(BeEmpty())
		})

		It("aborts with no side effects when adding the remote is declined", func() {
			repo.remotes = nil
			prompt.confirms = []bool{false}

			_, err := newWorkflow().Run(ctx)
			Expect(err).To(MatchError(workflow.ErrDeclined))
			Expect(repo.addedRemotes).To(BeEmpty())
			Expect(repo.fetches).To(BeEmpty())
			Expect(repo.pushes).To(BeEmpty())
		})
	})

	Describe("branch preparation", func() {
		BeforeEach(func() {
			repo.remotes = canonicalUpstream()
		})

		It("skips the reset confirmation when the branch is up to date", func() {
			prompt.inputs = []string{"", "", "q"}

			_, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(prompt.confirmQuestions).To(BeEmpty())
			Expect(repo.resets).To(BeEmpty())
		})

		It("checks out the target branch when it differs from the current one", func() {
			repo.currentBranch = "main"
			prompt.inputs = []string{"", "", "q"}

			_, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.checkouts).To(Equal([]string{"deploy"}))
		})

		It("hard resets a diverged branch with consent", func() {
			repo.upToDate = false
			prompt.confirms = []bool{true}
			prompt.inputs = []string{"", "", "q"}

			_, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.resets).To(Equal([]string{"upstream/deploy"}))
		})

		It("aborts without resetting or pushing when the reset is declined", func() {
			repo.upToDate = false
			prompt.confirms = []bool{false}
			prompt.inputs = []string{""}

			_, err := newWorkflow().Run(ctx)
			Expect(err).To(MatchError(workflow.ErrDeclined))
			Expect(repo.resets).To(BeEmpty())
			Expect(repo.pushes).To(BeEmpty())
		})

		It("rejects an invalid target branch name", func() {
			prompt.inputs = []string{"bad branch name"}

			_, err := newWorkflow().Run(ctx)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("invalid target branch"))
		})
	})

	Describe("bulk mode", func() {
		BeforeEach(func() {
			repo.remotes = canonicalUpstream()
		})

		It("applies the newest N commits oldest first in a single batch", func() {
			prompt.inputs = []string{"", "staging"}
			prompt.ints = []int{3}
			prompt.confirms = []bool{true}

			result, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.CommitsApplied).To(Equal(3))
			Expect(repo.cherryPicks).To(HaveLen(1))
			Expect(repo.cherryPicks[0]).To(Equal([]string{
				"bbb2222222222222222222222222222222222222",
				"ccc3333333333333333333333333333333333333",
				"ddd4444444444444444444444444444444444444",
			}))
			Expect(repo.pushes).To(Equal([]string{"upstream deploy"}))
			Expect(result.Pushed).To(BeTrue())
		})

		It("falls through to manual entry when the bulk confirmation is declined", func() {
			prompt.inputs = []string{"", "staging", "abc123", "q"}
			prompt.ints = []int{2}
			prompt.confirms = []bool{false}

			result, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.CommitsApplied).To(Equal(1))
			Expect(repo.cherryPicks).To(Equal([][]string{{"abc123"}}))
		})

		It("rejects a non-positive commit count", func() {
			prompt.inputs = []string{"", "staging"}
			prompt.ints = []int{0}

			_, err := newWorkflow().Run(ctx)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("must be positive"))
		})

		It("wraps a history retrieval failure with the log-query phase", func() {
			repo.logErr = errors.New("unknown revision")
			prompt.inputs = []string{"", "staging"}
			prompt.ints = []int{2}

			_, err := newWorkflow().Run(ctx)
			var stepErr *workflow.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Phase).To(Equal(workflow.PhaseLogQuery))
		})
	})

	Describe("manual mode", func() {
		BeforeEach(func() {
			repo.remotes = canonicalUpstream()
		})

		It("applies each commit immediately and counts them", func() {
			prompt.inputs = []string{"", "", "sha-one", "sha-two", "sha-three", "q"}

			result, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.CommitsApplied).To(Equal(3))
			Expect(repo.cherryPicks).To(Equal([][]string{{"sha-one"}, {"sha-two"}, {"sha-three"}}))
			Expect(out.String()).To(ContainSubstring("(1 so far)"))
			Expect(out.String()).To(ContainSubstring("(3 so far)"))
		})

		It("exits cleanly with nothing staged when the sentinel comes first", func() {
			prompt.inputs = []string{"", "", "q"}

			result, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.CommitsApplied).To(BeZero())
			Expect(result.Pushed).To(BeFalse())
			Expect(repo.pushes).To(BeEmpty())
			Expect(out.String()).To(ContainSubstring("no changes staged"))
		})

		It("treats a blank line the same as the sentinel", func() {
			// The blank answer reaches the workflow because the prompt default
			// is itself empty.
			prompt.inputs = []string{"", "", ""}

			result, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.CommitsApplied).To(BeZero())
		})

		It("wraps a mid-entry cherry-pick failure with the cherry-pick phase", func() {
			repo.cherryPickErr = map[string]error{"sha-two": errors.New("merge conflict")}
			prompt.inputs = []string{"", "", "sha-one", "sha-two"}

			result, err := newWorkflow().Run(ctx)
			var stepErr *workflow.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.Phase).To(Equal(workflow.PhaseCherryPick))
			Expect(result.CommitsApplied).To(Equal(1))
			Expect(repo.pushes).To(BeEmpty())
		})
	})

	Describe("GitHub preflight", func() {
		BeforeEach(func() {
			repo.remotes = canonicalUpstream()
			prompt.inputs = []string{"", "", "q"}
		})

		It("reports success when the repository and branch are reachable", func() {
			w := newWorkflow()
			w.GitHub = gh.NewNoopClient("main")

			_, err := w.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.String()).To(ContainSubstring("preflight passed"))
		})

		It("warns but continues when the repository lookup fails", func() {
			w := newWorkflow()
			w.GitHub = &fakeGH{repoErr: errors.New("boom")}

			_, err := w.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.String()).To(ContainSubstring("preflight failed"))
		})

		It("warns when the deploy branch does not exist upstream yet", func() {
			w := newWorkflow()
			w.GitHub = &fakeGH{
				repo:     gh.Repository{FullName: "fleetops/platform"},
				branches: map[string]bool{},
			}

			_, err := w.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.String()).To(ContainSubstring("pushing will create it"))
		})
	})

	Describe("push and summary", func() {
		BeforeEach(func() {
			repo.remotes = canonicalUpstream()
		})

		It("notes when the pushed branch is the deploy branch", func() {
			prompt.inputs = []string{"", "", "sha-one", "q"}

			_, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.String()).To(ContainSubstring("deploy branch"))
		})

		It("pushes a non-default branch without the deploy-branch note", func() {
			repo.currentBranch = "release/v2"
			prompt.inputs = []string{"release/v2", "", "sha-one", "q"}

			_, err := newWorkflow().Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.pushes).To(Equal([]string{"upstream release/v2"}))
			Expect(out.String()).NotTo(ContainSubstring("deploy branch"))
		})

		It("propagates a push failure without a phase playbook", func() {
			repo.pushErr = errors.New("remote rejected")
			prompt.inputs = []string{"", "", "sha-one", "q"}

			_, err := newWorkflow().Run(ctx)
			Expect(err).To(HaveOccurred())
			var stepErr *workflow.StepError
			Expect(errors.As(err, &stepErr)).To(BeFalse())
		})
	})
})
