package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFlags(t *testing.T, dir, config string) {
	t.Helper()
	oldDir, oldConfig := projectDir, configPath
	projectDir, configPath = dir, config
	t.Cleanup(func() { projectDir, configPath = oldDir, oldConfig })
}

func TestNewLauncher_Defaults(t *testing.T) {
	root := t.TempDir()
	withFlags(t, root, "")

	l, err := newLauncher()
	require.NoError(t, err)

	abs, err := filepath.Abs(root)
	require.NoError(t, err)
	assert.Equal(t, abs, l.Config.Root)
	assert.Equal(t, "npm", l.Config.PackageManager)
	assert.NotNil(t, l.Supervisor)
}

func TestNewLauncher_ReadsSettings(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "launcher.yaml"), []byte("package_manager: yarn\n"), 0o644))
	withFlags(t, root, "")

	l, err := newLauncher()
	require.NoError(t, err)
	assert.Equal(t, "yarn", l.Config.PackageManager)
}

func TestNewLauncher_Errors(t *testing.T) {
	root := t.TempDir()

	withFlags(t, filepath.Join(root, "missing"), "")
	_, err := newLauncher()
	assert.Error(t, err)

	withFlags(t, root, filepath.Join(root, "missing.yaml"))
	_, err = newLauncher()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRootRejectsArguments(t *testing.T) {
	assert.Error(t, rootCmd.Args(rootCmd, []string{"extra"}))
	assert.NoError(t, rootCmd.Args(rootCmd, nil))
}

func TestReportedError(t *testing.T) {
	base := errors.New("npm install failed")
	err := error(reportedError{base})

	assert.ErrorIs(t, err, base)
	assert.True(t, errors.As(err, &reportedError{}))
	assert.False(t, errors.As(base, &reportedError{}))
}
