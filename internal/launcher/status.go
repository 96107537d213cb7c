package launcher

import (
	"fmt"
	"os"
	"strings"

	"website-launcher/internal/platform"
)

// Check is one line of the status report.
type Check struct {
	Name   string
	Value  string
	OK     bool
	Detail string
}

// Status inspects the project without changing anything.
func (l *Launcher) Status() []Check {
	cfg := l.Config
	var checks []Check

	if pm, err := l.LookPath(cfg.PackageManager); err == nil {
		checks = append(checks, Check{Name: "toolchain", Value: cfg.PackageManager, OK: true, Detail: pm})
	} else {
		checks = append(checks, Check{Name: "toolchain", Value: cfg.PackageManager, Detail: "not found on PATH"})
	}

	checks = append(checks,
		fileCheck("env file", cfg.EnvFile, cfg.Path(cfg.EnvFile), "will be created from "+cfg.EnvTemplate),
		fileCheck("env template", cfg.EnvTemplate, cfg.Path(cfg.EnvTemplate), "missing, env file is not bootstrapped"),
	)

	if platform.SupportsShortcut(l.Platform) && cfg.Shortcut.Enabled {
		checks = append(checks,
			fileCheck("shortcut icon", cfg.Shortcut.Icon, cfg.Path(cfg.Shortcut.Icon), "will be decoded from "+cfg.Shortcut.IconResource),
		)
	} else {
		checks = append(checks, Check{Name: "shortcut", Value: "-", OK: true, Detail: "not managed on " + l.Platform.OS})
	}

	var signals []string
	for _, s := range platform.Signals(l.Platform) {
		if s.Value != "" {
			signals = append(signals, fmt.Sprintf("%s=%s", s.Name, s.Value))
		}
	}
	checks = append(checks, Check{
		Name:   "mode",
		Value:  string(platform.SelectMode(l.Platform, cfg.Mode)),
		OK:     true,
		Detail: fmt.Sprintf("setting %s; %s", cfg.Mode, strings.Join(signals, " ")),
	})
	checks = append(checks, Check{Name: "url", Value: cfg.URL, OK: true, Detail: fmt.Sprintf("opened after %s in browser mode", cfg.BrowserDelay)})
	return checks
}

func fileCheck(name, display, path, missing string) Check {
	if _, err := os.Stat(path); err != nil {
		return Check{Name: name, Value: display, Detail: missing}
	}
	return Check{Name: name, Value: display, OK: true, Detail: path}
}
