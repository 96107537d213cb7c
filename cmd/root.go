package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"website-launcher/internal/config"
	"website-launcher/internal/launcher"
	"website-launcher/internal/logger"
)

// debug enables [DEBUG] output, including every command line that is run.
var debug bool

// noColor disables colored status lines.
var noColor bool

// projectDir is the website builder checkout; defaults to the working directory.
var projectDir string

// configPath names the launcher settings file; defaults to <projectDir>/launcher.yaml.
var configPath string

// reportedError marks errors whose message was already printed for the user.
type reportedError struct{ error }

// Unwrap keeps errors.Is working through the marker.
func (e reportedError) Unwrap() error { return e.error }

// rootCmd installs dependencies and starts the website builder.
// Running it without flags is the whole point of the tool.
var rootCmd = &cobra.Command{
	Use:   "website-launcher",                                   // The name of the CLI tool
	Short: "Install dependencies and start the Website Builder", // Short description shown in help output
	Long: `Installs npm dependencies, creates .env from .env.example when missing,
refreshes the desktop shortcut on Windows and starts the desktop app or the
development server. Stop it with Ctrl+C.`,
	Args: cobra.NoArgs,
	// Errors are printed once by Execute, never with the usage text
	SilenceUsage:  true,
	SilenceErrors: true,

	// PersistentPreRun runs before any subcommand and sets up logging.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug, noColor) // Verbose with --debug, plain with --no-color
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLauncher()
		if err != nil {
			return err
		}
		// The launcher prints its own [ERROR] lines
		if err := l.Run(cmd.Context()); err != nil {
			return reportedError{err}
		}
		return nil
	},
}

// newLauncher loads the settings for the selected project directory.
func newLauncher() (*launcher.Launcher, error) {
	// Default to the directory the launcher was started from
	dir := projectDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", projectDir, err)
	}
	// Fail early instead of letting npm complain about a missing package.json
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project directory %s does not exist", dir)
	}

	// Defaults overlaid with launcher.yaml, if any
	cfg, err := config.LoadConfig(dir, configPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("[DEBUG] Project root: %s\n", cfg.Root)
	return launcher.New(cfg), nil
}

// Execute registers flags and subcommands and runs the CLI.
// Any error exits with status 1.
func Execute() {
	// Register the global flags before any command is executed
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", "", "Website builder checkout (default: working directory)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Launcher settings file (default: <dir>/"+config.DefaultFile+")")

	// Single-step commands (defined in env.go, shortcut.go and status.go)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(shortcutCmd)
	rootCmd.AddCommand(statusCmd)

	// Run the selected command; any error ends the process with status 1
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.As(err, &reportedError{}) {
			logger.Error("[ERROR] %v\n", err)
		}
		os.Exit(1)
	}
}
