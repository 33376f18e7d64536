package gitops

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	git "gopkg.in/src-d/go-git.v4"
	"gopkg.in/src-d/go-git.v4/plumbing/object"
)

func initRepoWithFile(t *testing.T, fileName, content string) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, fileName), []byte(content), 0644))

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add(fileName)
	require.NoError(t, err)
	_, err = worktree.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@localhost"},
	})
	require.NoError(t, err)

	return dir
}

func TestCommitIfChanged(t *testing.T) {
	dir := initRepoWithFile(t, "irock.py", "IROCK_MODBUS_REGISTERS = [\n]\n")
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "irock.py"),
		[]byte("IROCK_MODBUS_REGISTERS = [\n    {},\n]\n"), 0644))

	committer := &Committer{
		RepoPath:    dir,
		AuthorName:  "irock-sync",
		AuthorEmail: "sync@localhost",
	}
	hash, err := committer.CommitIfChanged("irock.py", "Update Modbus register tables")
	require.NoError(t, err)
	assert.Len(t, hash, 40)

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "Update Modbus register tables", commit.Message)
	assert.Equal(t, "irock-sync", commit.Author.Name)
}

func TestCommitIfChangedCleanWorktree(t *testing.T) {
	dir := initRepoWithFile(t, "irock.py", "IROCK_MODBUS_REGISTERS = [\n]\n")

	committer := &Committer{RepoPath: dir, AuthorName: "irock-sync", AuthorEmail: "sync@localhost"}

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	before, err := repo.Head()
	require.NoError(t, err)

	_, err = committer.CommitIfChanged("irock.py", "Update Modbus register tables")
	assert.ErrorIs(t, err, ErrNoChanges)

	after, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, before.Hash(), after.Hash())
}

func TestCommitIfChangedMissingRepo(t *testing.T) {
	committer := &Committer{RepoPath: filepath.Join(t.TempDir(), "nope")}
	_, err := committer.CommitIfChanged("irock.py", "msg")
	assert.Error(t, err)
}
