package config

import "time"

// Launch modes accepted by the `mode` setting.
const (
	ModeAuto    = "auto"
	ModeDesktop = "desktop"
	ModeBrowser = "browser"
)

// DefaultFile is the settings file looked up in the project root when
// no --config flag is given.
const DefaultFile = "launcher.yaml"

// Shortcut describes the desktop shortcut created on Windows.
// - Enabled: set to false to skip shortcut handling entirely.
// - Name: file name of the shortcut without the .lnk extension.
// - Icon: icon file referenced by the shortcut, relative to the project root.
// - IconResource: encoded form of the icon, decoded into Icon when Icon is missing.
type Shortcut struct {
	Enabled      bool   `yaml:"enabled"`
	Name         string `yaml:"name"`
	Description  string `yaml:"description"`
	Icon         string `yaml:"icon"`
	IconResource string `yaml:"icon_resource"`
}

// Config is the launcher's settings after defaults and launcher.yaml have
// been merged. Every field has a working default, so the file is optional.
type Config struct {
	// Root is the project directory all commands run in. Not read from YAML.
	Root string `yaml:"-"`

	PackageManager string   `yaml:"package_manager"`
	InstallArgs    []string `yaml:"install_args"`
	DevArgs        []string `yaml:"dev_args"`
	DesktopArgs    []string `yaml:"desktop_args"`

	EnvFile     string `yaml:"env_file"`
	EnvTemplate string `yaml:"env_template"`

	URL           string        `yaml:"url"`
	BrowserDelay  time.Duration `yaml:"browser_delay"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
	Mode          string        `yaml:"mode"`

	Shortcut Shortcut `yaml:"shortcut"`
}
