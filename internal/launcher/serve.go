package launcher

import (
	"context"
	"errors"
	"time"

	"website-launcher/internal/logger"
	"website-launcher/internal/platform"
	"website-launcher/internal/runner"
)

// Serve starts the long-running process for mode and blocks until it ends.
// A desktop app that fails or is stopped with Ctrl+C hands over to browser
// mode once; the browser stage never falls back further.
func (l *Launcher) Serve(ctx context.Context, pm string, mode platform.Mode) error {
	if mode == platform.Desktop {
		err := l.runDesktop(ctx, pm)
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil:
			// The launch itself was cancelled, not just the desktop stage.
			return err
		case errors.Is(err, runner.ErrInterrupted):
			logger.Info("\n[INFO] Desktop app closed. Switching to browser mode.\n")
		default:
			logger.Warn("[WARN] The desktop app could not be started (%v). Falling back to browser mode.\n", err)
		}
	}
	return l.runBrowser(ctx, pm)
}

// runDesktop returns nil when the desktop shell exited cleanly,
// runner.ErrInterrupted when the user stopped it and any other error when
// it failed on its own.
func (l *Launcher) runDesktop(ctx context.Context, pm string) error {
	logger.Step("\n🖥️  Starting the desktop app (Ctrl+C to switch to the browser)...\n\n")

	// Each stage listens for its own Ctrl+C so the browser stage starts
	// with a fresh one.
	stage, stop := l.Interrupts(ctx)
	defer stop()

	return l.Supervisor.Run(stage, l.command(pm, l.Config.DesktopArgs))
}

func (l *Launcher) runBrowser(ctx context.Context, pm string) error {
	logger.Step("\n🚀 Starting the development server (Ctrl+C to quit)...\n\n")

	stage, stop := l.Interrupts(ctx)
	defer stop()

	err := l.Supervisor.Run(stage, l.command(pm, l.Config.DevArgs), l.openBrowserAfterDelay)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, runner.ErrInterrupted):
		logger.Info("\n[INFO] 🛑 Stopping the development server...\n")
		logger.Info("[INFO] ✅ Development server stopped.\n")
		return nil
	default:
		logger.Error("\n[ERROR] The development server reported an error: %v\n", err)
		return err
	}
}

// openBrowserAfterDelay opens the web UI once the server had a moment to
// bind. There is no readiness check; the page reloads itself once vite is up.
func (l *Launcher) openBrowserAfterDelay(ctx context.Context) {
	if delay := l.Config.BrowserDelay; delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}

	logger.Info("[INFO] Opening %s in your browser\n", l.Config.URL)
	if err := l.OpenURL(l.Config.URL); err != nil {
		logger.Warn("[WARN] Could not open the browser: %v. Visit %s manually.\n", err, l.Config.URL)
	}
}
