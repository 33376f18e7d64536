package gitops

import (
	"errors"
	"fmt"
	"time"

	git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing/object"
)

// ErrNoChanges is returned when the worktree is clean and nothing was committed
var ErrNoChanges = errors.New("no changes to commit")

// Committer stages and commits a single file in an existing checkout
type Committer struct {
	RepoPath    string
	AuthorName  string
	AuthorEmail string
}

// CommitIfChanged stages relPath and commits it with the given message.
// If the file is unchanged it returns ErrNoChanges and the repository
// history stays untouched, so repeated runs never stack empty commits.
func (c *Committer) CommitIfChanged(relPath string, message string) (string, error) {
	repo, err := git.PlainOpen(c.RepoPath)
	if err != nil {
		return "", fmt.Errorf("failed to open repository %s: %w", c.RepoPath, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	if _, err := worktree.Add(relPath); err != nil {
		return "", fmt.Errorf("failed to stage %s: %w", relPath, err)
	}

	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("failed to read worktree status: %w", err)
	}
	if staged, ok := status[relPath]; !ok || staged.Staging == git.Unmodified {
		return "", ErrNoChanges
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  c.AuthorName,
			Email: c.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	return hash.String(), nil
}
