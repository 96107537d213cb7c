package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"website-launcher/internal/config"
	"website-launcher/internal/launcher"
	"website-launcher/internal/logger"
	"website-launcher/internal/platform"
)

// shortcutCmd refreshes the desktop shortcut without starting anything.
var shortcutCmd = &cobra.Command{
	Use:   "shortcut",
	Short: "Create or refresh the desktop shortcut (Windows only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLauncher()
		if err != nil {
			return err
		}
		return refreshShortcut(cmd.Context(), l)
	},
}

// refreshShortcut only fails when a shortcut was attempted and could not be
// written; skipped shortcuts are warnings.
func refreshShortcut(ctx context.Context, l *launcher.Launcher) error {
	// Shortcuts are a Windows feature
	if !platform.SupportsShortcut(l.Platform) {
		logger.Warn("[WARN] Desktop shortcuts are only managed on Windows.\n")
		return nil
	}
	// Turned off in the settings file
	if !l.Config.Shortcut.Enabled {
		logger.Warn("[WARN] Desktop shortcut is disabled (shortcut.enabled: false in %s). Nothing to do.\n", config.DefaultFile)
		return nil
	}
	// MakeShortcut already printed the reason
	if res := l.MakeShortcut(ctx); !res.OK() {
		return reportedError{res.Err}
	}
	return nil
}
