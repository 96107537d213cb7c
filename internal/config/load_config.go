package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default returns the settings used when launcher.yaml is absent.
func Default(root string) *Config {
	return &Config{
		Root:           root,
		PackageManager: "npm",
		InstallArgs:    []string{"install"},
		DevArgs:        []string{"run", "dev"},
		DesktopArgs:    []string{"run", "desktop"},
		EnvFile:        ".env",
		EnvTemplate:    ".env.example",
		URL:            "http://localhost:5173",
		BrowserDelay:   3 * time.Second,
		ShutdownGrace:  10 * time.Second,
		Mode:           ModeAuto,
		Shortcut: Shortcut{
			Enabled:      true,
			Name:         "Website Builder",
			Description:  "Start the Website Builder",
			Icon:         filepath.Join("assets", "launcher.ico"),
			IconResource: filepath.Join("assets", "launcher.ico.b64"),
		},
	}
}

// LoadConfig merges the YAML settings file over the defaults.
// An empty configFile means <root>/launcher.yaml, which may be missing.
// An explicitly named file must exist.
func LoadConfig(root, configFile string) (*Config, error) {
	cfg := Default(root)

	explicit := configFile != ""
	if !explicit {
		configFile = filepath.Join(root, DefaultFile)
	}

	raw, err := os.ReadFile(configFile)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", configFile, err)
	}

	// Fields present in the file replace the defaults; absent fields keep them.
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", configFile, err)
	}
	cfg.Root = root

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", configFile, err)
	}
	return cfg, nil
}

// Validate rejects settings the launcher cannot act on.
func (c *Config) Validate() error {
	if c.PackageManager == "" {
		return errors.New("package_manager must not be empty")
	}
	if len(c.InstallArgs) == 0 {
		return errors.New("install_args must not be empty")
	}
	if len(c.DevArgs) == 0 {
		return errors.New("dev_args must not be empty")
	}
	if len(c.DesktopArgs) == 0 {
		return errors.New("desktop_args must not be empty")
	}
	if c.EnvFile == "" {
		return errors.New("env_file must not be empty")
	}
	switch c.Mode {
	case ModeAuto, ModeDesktop, ModeBrowser:
	default:
		return fmt.Errorf("mode %q must be one of %s, %s, %s", c.Mode, ModeAuto, ModeDesktop, ModeBrowser)
	}
	if c.BrowserDelay < 0 {
		return errors.New("browser_delay must not be negative")
	}
	if c.ShutdownGrace <= 0 {
		return errors.New("shutdown_grace must be positive")
	}
	if c.Shortcut.Enabled && c.Shortcut.Name == "" {
		return errors.New("shortcut.name must not be empty when shortcuts are enabled")
	}
	return nil
}

// Path resolves a settings path against the project root.
// Absolute paths and empty strings are returned unchanged.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}
