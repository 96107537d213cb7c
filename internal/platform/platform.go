// Package platform holds the launcher's platform policy: which launch mode
// fits the current session and whether a desktop shortcut applies.
// Everything here is a pure function of Info so it can be tested for any OS.
package platform

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"website-launcher/internal/config"
)

// Mode is the launch mode chosen for the final long-running process.
type Mode string

const (
	Desktop Mode = "desktop"
	Browser Mode = "browser"
)

// Environment variables consulted by SelectMode on unix-like systems.
var (
	displayVars = []string{"DISPLAY", "WAYLAND_DISPLAY"}
	wslVars     = []string{"WSL_DISTRO_NAME", "WSL_INTEROP"}
)

// Info is a snapshot of the platform identity and environment.
type Info struct {
	OS  string
	Env map[string]string
}

// Current captures runtime.GOOS and the process environment.
func Current() Info {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return Info{OS: runtime.GOOS, Env: env}
}

// Getenv returns the value of key, or "" when unset.
func (i Info) Getenv(key string) string {
	return i.Env[key]
}

// IsWSL reports whether a Windows Subsystem for Linux indicator is present.
func (i Info) IsWSL() bool {
	for _, k := range wslVars {
		if i.Getenv(k) != "" {
			return true
		}
	}
	return false
}

// HasDisplay reports whether a display server variable is set.
func (i Info) HasDisplay() bool {
	for _, k := range displayVars {
		if i.Getenv(k) != "" {
			return true
		}
	}
	return false
}

// SelectMode decides between desktop and browser mode.
//
// An explicit override from launcher.yaml wins. Windows and macOS are
// assumed to be graphical. Everything else needs a display server variable,
// and a WSL indicator forces browser mode even when one is set.
func SelectMode(info Info, override string) Mode {
	switch override {
	case config.ModeDesktop:
		return Desktop
	case config.ModeBrowser:
		return Browser
	}

	switch info.OS {
	case "windows", "darwin":
		return Desktop
	}
	if info.IsWSL() {
		return Browser
	}
	if info.HasDisplay() {
		return Desktop
	}
	return Browser
}

// Signal is one environment fact that SelectMode looked at.
type Signal struct {
	Name  string
	Value string
}

// Signals lists the inputs SelectMode consults for info, for display.
func Signals(info Info) []Signal {
	signals := []Signal{{Name: "GOOS", Value: info.OS}}
	for _, k := range append(append([]string{}, displayVars...), wslVars...) {
		signals = append(signals, Signal{Name: k, Value: info.Getenv(k)})
	}
	return signals
}

// SupportsShortcut reports whether desktop shortcuts are managed on this platform.
func SupportsShortcut(info Info) bool {
	return info.OS == "windows"
}

// DesktopDir returns the user's desktop folder.
func DesktopDir(info Info) string {
	home := info.Getenv("USERPROFILE")
	if home == "" {
		home = info.Getenv("HOME")
	}
	if home == "" {
		return ""
	}
	return filepath.Join(home, "Desktop")
}
