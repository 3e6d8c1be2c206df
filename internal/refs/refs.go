// Package refs validates and normalizes the branch names and commit
// identifiers collected from interactive prompts before they are handed to
// the git collaborator.
package refs

import (
	"errors"
	"strings"
)

// Sentinel values that end the manual commit-entry loop.
const sentinelQuit = "q"

// IsSentinel reports whether the raw prompt input ends manual commit entry.
// An empty or whitespace-only line counts the same as the quit token.
func IsSentinel(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || strings.EqualFold(trimmed, sentinelQuit)
}

// NormalizeBranch trims whitespace, removes leading/trailing slashes, and
// strips a refs/heads prefix. It returns an empty string when the normalized
// branch would otherwise be empty.
func NormalizeBranch(branch string) string {
	branch = strings.TrimSpace(branch)
	branch = strings.Trim(branch, "/")

	if len(branch) >= len("refs/heads/") && strings.EqualFold(branch[:len("refs/heads/")], "refs/heads/") {
		branch = branch[len("refs/heads/"):]
	}

	branch = strings.TrimSpace(branch)
	branch = strings.Trim(branch, "/")

	return strings.TrimSpace(branch)
}

// ValidateBranchName ensures a branch name entered at a prompt conforms to
// simple safety checks before it is passed to the collaborator.
func ValidateBranchName(branch string) error {
	if branch == "" {
		return errors.New("branch cannot be empty")
	}

	if strings.ContainsAny(branch, " \t\n\r") {
		return errors.New("branch cannot contain whitespace")
	}

	if strings.Contains(branch, "..") {
		return errors.New("branch cannot contain '..'")
	}

	if strings.ContainsAny(branch, "~^:?*[]@{\\") {
		return errors.New("branch contains forbidden git characters")
	}

	return nil
}

// NormalizeCommit trims a commit identifier entered at a prompt. Resolution
// of the identifier is left to the collaborator; a bad value surfaces as a
// fatal cherry-pick failure.
func NormalizeCommit(raw string) string {
	return strings.TrimSpace(raw)
}
