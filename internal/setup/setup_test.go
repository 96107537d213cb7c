package setup

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"website-launcher/internal/runner"
	"website-launcher/internal/runner/runnertest"
)

func TestEnsureEnvFile(t *testing.T) {
	template := []byte("OPENAI_API_KEY=\nPORT=5173\n\x00binary-safe\n")

	t.Run("CreatesFromTemplateOnce", func(t *testing.T) {
		dir := t.TempDir()
		env := filepath.Join(dir, ".env")
		tmpl := filepath.Join(dir, ".env.example")
		require.NoError(t, os.WriteFile(tmpl, template, 0o600))

		res, err := EnsureEnvFile(env, tmpl)
		require.NoError(t, err)
		assert.Equal(t, EnvCreated, res)

		got, err := os.ReadFile(env)
		require.NoError(t, err)
		assert.Equal(t, template, got)

		res, err = EnsureEnvFile(env, tmpl)
		require.NoError(t, err)
		assert.Equal(t, EnvExists, res)
	})

	t.Run("NeverTouchesExistingFile", func(t *testing.T) {
		dir := t.TempDir()
		env := filepath.Join(dir, ".env")
		tmpl := filepath.Join(dir, ".env.example")
		require.NoError(t, os.WriteFile(tmpl, template, 0o600))
		require.NoError(t, os.WriteFile(env, []byte("MINE=1\n"), 0o600))
		before, err := os.Stat(env)
		require.NoError(t, err)

		res, err := EnsureEnvFile(env, tmpl)
		require.NoError(t, err)
		assert.Equal(t, EnvExists, res)

		got, err := os.ReadFile(env)
		require.NoError(t, err)
		assert.Equal(t, "MINE=1\n", string(got))
		after, err := os.Stat(env)
		require.NoError(t, err)
		assert.Equal(t, before.ModTime(), after.ModTime())
	})

	t.Run("MissingTemplateIsNotAnError", func(t *testing.T) {
		dir := t.TempDir()
		env := filepath.Join(dir, ".env")

		res, err := EnsureEnvFile(env, filepath.Join(dir, ".env.example"))
		require.NoError(t, err)
		assert.Equal(t, EnvTemplateMissing, res)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestCopyFile_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o644))

	err := copyFile(src, dst)
	assert.ErrorIs(t, err, os.ErrExist)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "old", string(got))
}

func TestEnvResultString(t *testing.T) {
	assert.Equal(t, "created", EnvCreated.String())
	assert.Equal(t, "exists", EnvExists.String())
	assert.Equal(t, "template missing", EnvTemplateMissing.String())
	assert.Equal(t, "EnvResult(9)", EnvResult(9).String())
}

func TestCheckToolchain(t *testing.T) {
	found := func(file string) (string, error) { return "/usr/bin/" + file, nil }
	missing := func(file string) (string, error) { return "", errors.New("not found") }

	path, err := CheckToolchain(found, "npm")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/npm", path)

	_, err = CheckToolchain(missing, "npm")
	assert.ErrorIs(t, err, ErrToolchainMissing)
	assert.Contains(t, err.Error(), "npm")
}

func TestInstallDependencies(t *testing.T) {
	install := runner.Command{Name: "npm", Args: []string{"install"}}

	t.Run("Success", func(t *testing.T) {
		starter := runnertest.NewStarter(map[string]runnertest.Behavior{
			"npm install": {Output: []string{"added 12 packages"}},
		})
		var out bytes.Buffer
		sup := &runner.Supervisor{Out: &out, Grace: time.Second, Start: starter.Start}

		require.NoError(t, InstallDependencies(context.Background(), sup, install))
		assert.Equal(t, "added 12 packages\n", out.String())
	})

	t.Run("NonZeroExitIsFatal", func(t *testing.T) {
		starter := runnertest.NewStarter(map[string]runnertest.Behavior{
			"npm install": {ExitCode: 1},
		})
		var out bytes.Buffer
		sup := &runner.Supervisor{Out: &out, Grace: time.Second, Start: starter.Start}

		err := InstallDependencies(context.Background(), sup, install)
		var exitErr *runner.ExitError
		assert.ErrorAs(t, err, &exitErr)
	})
}
