package systemutil

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCmdExec(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "cmd.log")

	out, err := CmdExec("echo hello", "Saying hello", logPath)
	require.NoError(t, err)
	assert.Contains(t, out, "hello")

	content, err := ioutil.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "##### Saying hello")
	assert.Contains(t, string(content), "##### RUN echo hello")
	assert.Contains(t, string(content), "hello")
}

func TestCmdExecEmptyCommand(t *testing.T) {
	_, err := CmdExec("", "", "")
	assert.Error(t, err)
}

func TestCmdExecFailurePropagates(t *testing.T) {
	_, err := CmdExec("false | cat", "", "")
	assert.Error(t, err)
}

func TestWriteLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "step.log")

	require.NoError(t, WriteLog(logPath, "Installing python dependencies..."))
	require.NoError(t, WriteLog(logPath, "Unpacking driver archive..."))

	content, err := ioutil.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Installing python dependencies...")
	assert.Contains(t, string(content), "Unpacking driver archive...")
}

func TestWriteLogWithoutPath(t *testing.T) {
	assert.NoError(t, WriteLog("", "stdout only"))
}
