package launcher

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"website-launcher/internal/config"
	"website-launcher/internal/platform"
	"website-launcher/internal/runner"
	"website-launcher/internal/runner/runnertest"
	"website-launcher/internal/setup"
	"website-launcher/internal/shortcut"
)

const npm = "/usr/bin/npm"

// harness wires a Launcher to fakes. Opening the browser counts as the user
// pressing Ctrl+C right afterwards, which ends the browser stage.
type harness struct {
	*Launcher
	root    string
	starter *runnertest.Starter
	out     bytes.Buffer

	mu        sync.Mutex
	opened    []string
	stages    []context.CancelFunc
	shortcuts []shortcut.Options
}

func newHarness(t *testing.T, info platform.Info, behaviors map[string]runnertest.Behavior) *harness {
	t.Helper()
	h := &harness{root: t.TempDir(), starter: runnertest.NewStarter(behaviors)}

	cfg := config.Default(h.root)
	cfg.BrowserDelay = 0
	cfg.ShutdownGrace = time.Second

	h.Launcher = &Launcher{
		Config:     cfg,
		Platform:   info,
		Supervisor: &runner.Supervisor{Out: &h.out, Grace: time.Second, Start: h.starter.Start},
		LookPath: func(file string) (string, error) {
			return "/usr/bin/" + file, nil
		},
		OpenURL:    h.openURL,
		Shortcuts:  h,
		Executable: func() (string, error) { return `C:\Tools\website-launcher.exe`, nil },
		Interrupts: h.interrupts,
	}
	return h
}

func (h *harness) interrupts(ctx context.Context) (context.Context, context.CancelFunc) {
	stage, cancel := context.WithCancel(ctx)
	h.mu.Lock()
	h.stages = append(h.stages, cancel)
	h.mu.Unlock()
	return stage, cancel
}

// interruptCurrent simulates Ctrl+C during the most recent stage.
func (h *harness) interruptCurrent() {
	h.mu.Lock()
	cancel := h.stages[len(h.stages)-1]
	h.mu.Unlock()
	cancel()
}

func (h *harness) openURL(url string) error {
	h.mu.Lock()
	h.opened = append(h.opened, url)
	h.mu.Unlock()
	h.interruptCurrent()
	return nil
}

func (h *harness) Create(ctx context.Context, opts shortcut.Options) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.shortcuts = append(h.shortcuts, opts)
	return filepath.Join(`C:\Users\dev\Desktop`, opts.Name+".lnk"), nil
}

func (h *harness) started() []string {
	var keys []string
	for _, c := range h.starter.Started() {
		keys = append(keys, c.String())
	}
	return keys
}

var headlessLinux = platform.Info{OS: "linux", Env: map[string]string{}}

func TestRun_MissingToolchainStopsEverything(t *testing.T) {
	h := newHarness(t, headlessLinux, nil)
	h.LookPath = func(string) (string, error) { return "", errors.New("not found") }
	require.NoError(t, os.WriteFile(filepath.Join(h.root, ".env.example"), []byte("A=1\n"), 0o644))

	err := h.Run(context.Background())

	assert.ErrorIs(t, err, setup.ErrToolchainMissing)
	assert.Empty(t, h.starter.Started())
	assert.NoFileExists(t, filepath.Join(h.root, ".env"))
}

func TestRun_FreshCheckoutHeadless(t *testing.T) {
	h := newHarness(t, headlessLinux, map[string]runnertest.Behavior{
		npm + " install": {Output: []string{"added 3 packages"}},
		npm + " run dev": {Output: []string{"VITE ready"}, Block: true},
	})
	template := []byte("OPENAI_API_KEY=\n")
	require.NoError(t, os.WriteFile(filepath.Join(h.root, ".env.example"), template, 0o644))

	err := h.Run(context.Background())

	require.NoError(t, err)
	got, err := os.ReadFile(filepath.Join(h.root, ".env"))
	require.NoError(t, err)
	assert.Equal(t, template, got)

	assert.Equal(t, []string{npm + " install", npm + " run dev"}, h.started())
	assert.Equal(t, []string{"http://localhost:5173"}, h.opened)
	assert.Empty(t, h.shortcuts)
	assert.Contains(t, h.starter.Events(), "terminate "+npm+" run dev")
	assert.Equal(t, "added 3 packages\nVITE ready\n", h.out.String())

	for _, c := range h.starter.Started() {
		assert.Equal(t, h.root, c.Dir)
	}
}

func TestRun_InstallFailureIsFatal(t *testing.T) {
	h := newHarness(t, headlessLinux, map[string]runnertest.Behavior{
		npm + " install": {ExitCode: 1},
	})
	require.NoError(t, os.WriteFile(filepath.Join(h.root, ".env.example"), []byte("A=1\n"), 0o644))

	err := h.Run(context.Background())

	var exitErr *runner.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, []string{npm + " install"}, h.started())
	assert.NoFileExists(t, filepath.Join(h.root, ".env"))
}

func TestRun_InstallInterruptedIsFatal(t *testing.T) {
	h := newHarness(t, headlessLinux, map[string]runnertest.Behavior{
		npm + " install": {Block: true},
	})
	go func() {
		for key := range h.starter.Running() {
			if key == npm+" install" {
				h.interruptCurrent()
				return
			}
		}
	}()

	err := h.Run(context.Background())

	assert.ErrorIs(t, err, runner.ErrInterrupted)
	assert.Equal(t, []string{npm + " install"}, h.started())
}

func TestRun_DesktopFailureFallsBackToBrowserOnce(t *testing.T) {
	h := newHarness(t, platform.Info{OS: "darwin"}, map[string]runnertest.Behavior{
		npm + " run desktop": {ExitCode: 1},
		npm + " run dev":     {Block: true},
	})

	err := h.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{npm + " install", npm + " run desktop", npm + " run dev"}, h.started())
	assert.Len(t, h.opened, 1)
}

func TestRun_DesktopStartErrorFallsBack(t *testing.T) {
	h := newHarness(t, platform.Info{OS: "linux", Env: map[string]string{"DISPLAY": ":0"}}, map[string]runnertest.Behavior{
		npm + " run desktop": {StartErr: errors.New("electron missing")},
		npm + " run dev":     {Block: true},
	})

	require.NoError(t, h.Run(context.Background()))
	assert.Equal(t, []string{npm + " install", npm + " run desktop", npm + " run dev"}, h.started())
}

func TestRun_BrowserFailureAfterDesktopFailureIsFatal(t *testing.T) {
	h := newHarness(t, platform.Info{OS: "darwin"}, map[string]runnertest.Behavior{
		npm + " run desktop": {ExitCode: 1},
		npm + " run dev":     {ExitCode: 2},
	})
	h.Config.BrowserDelay = time.Hour

	err := h.Run(context.Background())

	var exitErr *runner.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Equal(t, []string{npm + " install", npm + " run desktop", npm + " run dev"}, h.started())
	assert.Empty(t, h.opened)
}

func TestRun_DesktopCleanExitIsDone(t *testing.T) {
	h := newHarness(t, platform.Info{OS: "darwin"}, nil)

	require.NoError(t, h.Run(context.Background()))
	assert.Equal(t, []string{npm + " install", npm + " run desktop"}, h.started())
	assert.Empty(t, h.opened)
}

func TestRun_DesktopInterruptedFallsBackToBrowserOnce(t *testing.T) {
	h := newHarness(t, platform.Info{OS: "darwin"}, map[string]runnertest.Behavior{
		npm + " run desktop": {Block: true},
		npm + " run dev":     {Block: true},
	})
	go func() {
		for key := range h.starter.Running() {
			if key == npm+" run desktop" {
				h.interruptCurrent()
				return
			}
		}
	}()

	require.NoError(t, h.Run(context.Background()))
	assert.Equal(t, []string{npm + " install", npm + " run desktop", npm + " run dev"}, h.started())
	assert.Equal(t, []string{
		"start " + npm + " install",
		"start " + npm + " run desktop",
		"terminate " + npm + " run desktop",
		"start " + npm + " run dev",
		"terminate " + npm + " run dev",
	}, h.starter.Events())
	assert.Len(t, h.opened, 1)
}

func TestServe_CancelledLaunchDoesNotFallBack(t *testing.T) {
	h := newHarness(t, platform.Info{OS: "darwin"}, map[string]runnertest.Behavior{
		npm + " run desktop": {Block: true},
	})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for key := range h.starter.Running() {
			if key == npm+" run desktop" {
				cancel()
				return
			}
		}
	}()

	err := h.Serve(ctx, npm, platform.Desktop)

	assert.ErrorIs(t, err, runner.ErrInterrupted)
	assert.Equal(t, []string{npm + " run desktop"}, h.started())
}

func TestRun_BrowserNonZeroExitIsFatal(t *testing.T) {
	h := newHarness(t, headlessLinux, map[string]runnertest.Behavior{
		npm + " run dev": {ExitCode: 1},
	})
	h.Config.BrowserDelay = time.Hour

	err := h.Run(context.Background())

	var exitErr *runner.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Empty(t, h.opened)
}

func TestRun_WindowsCreatesShortcutWithIcon(t *testing.T) {
	h := newHarness(t, platform.Info{OS: "windows"}, nil)
	resource := filepath.Join(h.root, "assets", "launcher.ico.b64")
	require.NoError(t, os.MkdirAll(filepath.Dir(resource), 0o755))
	icon := []byte{0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x10, 0x10}
	require.NoError(t, os.WriteFile(resource, []byte(base64.StdEncoding.EncodeToString(icon)), 0o644))

	require.NoError(t, h.Run(context.Background()))

	require.Len(t, h.shortcuts, 1)
	opts := h.shortcuts[0]
	assert.Equal(t, "Website Builder", opts.Name)
	assert.Equal(t, `C:\Tools\website-launcher.exe`, opts.Target)
	assert.Equal(t, h.root, opts.WorkingDir)
	assert.Equal(t, filepath.Join(h.root, "assets", "launcher.ico"), opts.Icon)

	got, err := os.ReadFile(filepath.Join(h.root, "assets", "launcher.ico"))
	require.NoError(t, err)
	assert.Equal(t, icon, got)
}

type failingMaker struct{}

func (failingMaker) Create(context.Context, shortcut.Options) (string, error) {
	return "", errors.New("COM not available")
}

func TestRun_ShortcutFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, platform.Info{OS: "windows"}, nil)
	h.Shortcuts = failingMaker{}

	require.NoError(t, h.Run(context.Background()))
	assert.Equal(t, []string{npm + " install", npm + " run desktop"}, h.started())
}

func TestMakeShortcut(t *testing.T) {
	t.Run("NoIconResource", func(t *testing.T) {
		h := newHarness(t, platform.Info{OS: "windows"}, nil)

		res := h.MakeShortcut(context.Background())

		require.True(t, res.OK())
		require.Len(t, h.shortcuts, 1)
		assert.Empty(t, h.shortcuts[0].Icon)
	})

	t.Run("DesktopFallbackFromProfile", func(t *testing.T) {
		h := newHarness(t, platform.Info{OS: "windows", Env: map[string]string{"USERPROFILE": "/home/dev"}}, nil)

		res := h.MakeShortcut(context.Background())

		require.True(t, res.OK())
		require.Len(t, h.shortcuts, 1)
		assert.Equal(t, filepath.Join("/home/dev", "Desktop"), h.shortcuts[0].DesktopDir)
	})

	t.Run("Disabled", func(t *testing.T) {
		h := newHarness(t, platform.Info{OS: "windows"}, nil)
		h.Config.Shortcut.Enabled = false

		res := h.MakeShortcut(context.Background())

		assert.False(t, res.OK())
		assert.Empty(t, h.shortcuts)
	})

	t.Run("TemporaryBuild", func(t *testing.T) {
		h := newHarness(t, platform.Info{OS: "windows"}, nil)
		h.Executable = func() (string, error) {
			return `C:\Users\dev\AppData\Local\Temp\go-build1234\b001\exe\website-launcher.exe`, nil
		}

		res := h.MakeShortcut(context.Background())

		assert.False(t, res.OK())
		assert.Empty(t, h.shortcuts)
	})

	t.Run("BrokenIconFallsBackToNoIcon", func(t *testing.T) {
		h := newHarness(t, platform.Info{OS: "windows"}, nil)
		resource := filepath.Join(h.root, "assets", "launcher.ico.b64")
		require.NoError(t, os.MkdirAll(filepath.Dir(resource), 0o755))
		require.NoError(t, os.WriteFile(resource, []byte("%%%"), 0o644))

		res := h.MakeShortcut(context.Background())

		require.True(t, res.OK())
		assert.Empty(t, h.shortcuts[0].Icon)
	})
}

func TestBootstrapEnv_ExistingFileUntouched(t *testing.T) {
	h := newHarness(t, headlessLinux, nil)
	require.NoError(t, os.WriteFile(filepath.Join(h.root, ".env.example"), []byte("A=template\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(h.root, ".env"), []byte("A=mine\n"), 0o644))

	assert.Equal(t, setup.EnvExists, h.BootstrapEnv())

	got, err := os.ReadFile(filepath.Join(h.root, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "A=mine\n", string(got))
}

func TestStatus(t *testing.T) {
	h := newHarness(t, platform.Info{OS: "linux", Env: map[string]string{"DISPLAY": ":0"}}, nil)
	require.NoError(t, os.WriteFile(filepath.Join(h.root, ".env.example"), []byte("A=1\n"), 0o644))

	checks := map[string]Check{}
	for _, c := range h.Status() {
		checks[c.Name] = c
	}

	assert.True(t, checks["toolchain"].OK)
	assert.Equal(t, npm, checks["toolchain"].Detail)
	assert.False(t, checks["env file"].OK)
	assert.True(t, checks["env template"].OK)
	assert.Equal(t, "desktop", checks["mode"].Value)
	assert.Contains(t, checks["mode"].Detail, "DISPLAY=:0")
	assert.Contains(t, checks, "shortcut")
	assert.NoFileExists(t, filepath.Join(h.root, ".env"))
}
