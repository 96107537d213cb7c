package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"website-launcher/internal/asset"
	"website-launcher/internal/logger"
	"website-launcher/internal/platform"
	"website-launcher/internal/shortcut"
)

// MakeShortcut refreshes the desktop shortcut. Every failure is logged as a
// warning and reported in the Result; none of them stop the launch.
func (l *Launcher) MakeShortcut(ctx context.Context) shortcut.Result {
	sc := l.Config.Shortcut
	if !sc.Enabled {
		logger.Debug("[DEBUG] Shortcut creation disabled\n")
		return shortcut.Result{Err: errors.New("disabled")}
	}

	exe, err := l.Executable()
	if err != nil {
		logger.Warn("[WARN] Could not determine the launcher path: %v\n", err)
		return shortcut.Result{Err: err}
	}
	if isTemporaryBuild(exe) {
		logger.Warn("[WARN] Launcher runs from a temporary build (%s). Skipping desktop shortcut.\n", exe)
		return shortcut.Result{Err: fmt.Errorf("temporary executable %s", exe)}
	}

	res := shortcut.Ensure(ctx, l.Shortcuts, shortcut.Options{
		Name:        sc.Name,
		Target:      exe,
		WorkingDir:  l.Config.Root,
		Description: sc.Description,
		Icon:        l.prepareIcon(),
		DesktopDir:  platform.DesktopDir(l.Platform),
	})
	if !res.OK() {
		logger.Warn("[WARN] Could not create the desktop shortcut: %v\n", res.Err)
		return res
	}
	logger.Info("[INFO] 🔗 Desktop shortcut updated: %s\n", res.Path)
	return res
}

// prepareIcon returns the icon path for the shortcut, or "" to fall back to
// the executable's own icon.
func (l *Launcher) prepareIcon() string {
	sc := l.Config.Shortcut
	if sc.Icon == "" {
		return ""
	}
	target := l.Config.Path(sc.Icon)
	if sc.IconResource == "" {
		return existing(target)
	}

	icon, err := asset.Materialize(l.Config.Path(sc.IconResource), target)
	if err != nil {
		if errors.Is(err, asset.ErrNoResource) {
			logger.Debug("[DEBUG] %v\n", err)
		} else {
			logger.Warn("[WARN] Could not prepare the shortcut icon: %v\n", err)
		}
		return ""
	}
	abs, err := filepath.Abs(icon)
	if err != nil {
		return icon
	}
	return abs
}

func existing(path string) string {
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// isTemporaryBuild reports executables produced by `go run`, whose path
// disappears as soon as the launcher exits.
func isTemporaryBuild(exe string) bool {
	return strings.Contains(strings.ReplaceAll(exe, `\`, "/"), "/go-build")
}
