// Package launcher sequences the website builder's startup:
//
//	CHECK_TOOLCHAIN -> INSTALL_DEPS -> BOOTSTRAP_ENV -> [MAKE_SHORTCUT]
//	  -> SELECT_MODE -> RUN_DESKTOP (on failure or Ctrl+C: RUN_BROWSER) | RUN_BROWSER
//
// Failures before BOOTSTRAP_ENV are fatal. Later failures are either
// warnings (shortcut, env copy) or trigger the desktop-to-browser fallback.
package launcher

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"

	"website-launcher/internal/config"
	"website-launcher/internal/logger"
	"website-launcher/internal/platform"
	"website-launcher/internal/runner"
	"website-launcher/internal/setup"
	"website-launcher/internal/shortcut"
)

// InterruptFunc derives a context that is cancelled when the user interrupts.
type InterruptFunc func(ctx context.Context) (context.Context, context.CancelFunc)

// Launcher holds the settings and the collaborators of one launch.
// New fills in the real implementations; tests swap them for fakes.
type Launcher struct {
	Config     *config.Config
	Platform   platform.Info
	Supervisor *runner.Supervisor
	LookPath   setup.LookPathFunc
	OpenURL    func(url string) error
	Shortcuts  shortcut.Maker
	Executable func() (string, error)
	Interrupts InterruptFunc
}

// New returns a Launcher wired to the real OS.
func New(cfg *config.Config) *Launcher {
	// xdg-open and friends print noise that would interleave with npm output.
	browser.Stdout = debugWriter{}
	browser.Stderr = debugWriter{}

	return &Launcher{
		Config:     cfg,
		Platform:   platform.Current(),
		Supervisor: runner.New(os.Stdout, cfg.ShutdownGrace),
		LookPath:   exec.LookPath,
		OpenURL:    browser.OpenURL,
		Shortcuts:  shortcut.NewPowerShell(),
		Executable: os.Executable,
		Interrupts: notifyInterrupts,
	}
}

func notifyInterrupts(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

type debugWriter struct{}

func (debugWriter) Write(p []byte) (int, error) {
	logger.Debug("[DEBUG] browser: %s", p)
	return len(p), nil
}

// Run performs the whole launch and blocks until the final process ends.
// A nil return covers both a clean exit and a user interrupt of the final
// process; any error means the process should exit non-zero.
func (l *Launcher) Run(ctx context.Context) error {
	logger.Step("🔧 Preparing the Website Builder...\n")

	pm, err := l.Preflight()
	if err != nil {
		return err
	}
	if err := l.Install(ctx, pm); err != nil {
		return err
	}
	l.BootstrapEnv()
	if platform.SupportsShortcut(l.Platform) {
		l.MakeShortcut(ctx)
	}
	return l.Serve(ctx, pm, l.Mode())
}

// Preflight resolves the package manager executable.
func (l *Launcher) Preflight() (string, error) {
	pm, err := setup.CheckToolchain(l.LookPath, l.Config.PackageManager)
	if err != nil {
		logger.Error("[ERROR] %s was not found. Please install Node.js/%s and try again.\n",
			l.Config.PackageManager, l.Config.PackageManager)
		return "", err
	}
	return pm, nil
}

// Install runs the dependency installation. Failure and interruption are fatal.
func (l *Launcher) Install(ctx context.Context, pm string) error {
	logger.Step("\n➡️  Installing dependencies...\n")

	stage, stop := l.Interrupts(ctx)
	defer stop()

	cmd := l.command(pm, l.Config.InstallArgs)
	err := setup.InstallDependencies(stage, l.Supervisor, cmd)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, runner.ErrInterrupted):
		logger.Warn("\n[WARN] Cancelled by user.\n")
	default:
		logger.Error("\n[ERROR] The command %s failed.\n", cmd)
	}
	return err
}

// BootstrapEnv creates the env file from its template when missing.
// Nothing here is fatal.
func (l *Launcher) BootstrapEnv() setup.EnvResult {
	env := l.Config.Path(l.Config.EnvFile)
	tmpl := l.Config.Path(l.Config.EnvTemplate)

	res, err := setup.EnsureEnvFile(env, tmpl)
	if err != nil {
		logger.Warn("[WARN] Could not create %s from %s: %v\n", l.Config.EnvFile, l.Config.EnvTemplate, err)
		return res
	}
	switch res {
	case setup.EnvCreated:
		logger.Info("[INFO] ✅ %s was created from %s. Adjust it if needed.\n", l.Config.EnvFile, l.Config.EnvTemplate)
	case setup.EnvTemplateMissing:
		logger.Warn("[WARN] No %s found. Skipping copy.\n", l.Config.EnvTemplate)
	}
	return res
}

// Mode picks desktop or browser mode for this session.
func (l *Launcher) Mode() platform.Mode {
	mode := platform.SelectMode(l.Platform, l.Config.Mode)
	logger.Debug("[DEBUG] Selected %s mode (os %s, setting %s)\n", mode, l.Platform.OS, l.Config.Mode)
	return mode
}

func (l *Launcher) command(pm string, args []string) runner.Command {
	return runner.Command{
		Name: pm,
		Args: append([]string(nil), args...),
		Dir:  l.Config.Root,
	}
}
