package app

import "github.com/fleetops/deploypick/internal/workflow"

// Diagnostic playbooks printed when a collaborator operation fails. The
// active phase picks the playbook; phases without one surface the raw error.

const cherryPickGuidance = `A cherry-pick failed. Likely causes:
  - the commit identifier does not resolve to a commit (typo, or the branch
    holding it was never fetched)
  - the commit conflicts with the current state of the target branch
To recover:
  1. inspect the working copy: git status
  2. abort the half-applied pick: git cherry-pick --abort
  3. reset the target branch: git reset --hard upstream/<branch>
  4. rerun deploypick and re-select the commits
Commits applied before the failure were already discarded by the reset; the
rerun must include them again.`

const logQueryGuidance = `Reading commit history failed. Likely causes:
  - the source branch name does not exist locally (fetch the remote that
    holds it, or check the spelling)
  - the branch name is ambiguous between a local branch and a tag
To recover:
  1. list candidate branches: git branch --all --list '*<name>*'
  2. fetch the remote that holds the branch if it is missing
  3. rerun deploypick with the exact branch name`

// GuidanceFor returns the playbook for the phase that was active when a
// failure surfaced, or an empty string when no playbook applies.
func GuidanceFor(phase workflow.Phase) string {
	switch phase {
	case workflow.PhaseCherryPick:
		return cherryPickGuidance
	case workflow.PhaseLogQuery:
		return logQueryGuidance
	default:
		return ""
	}
}
