package setup

import (
	"context"
	"errors"
	"fmt"

	"website-launcher/internal/logger"
	"website-launcher/internal/runner"
)

// ErrToolchainMissing means the package manager is not on PATH.
var ErrToolchainMissing = errors.New("required executable not found")

// LookPathFunc resolves an executable name, like exec.LookPath.
type LookPathFunc func(file string) (string, error)

// CheckToolchain resolves the package manager executable and returns its path.
func CheckToolchain(lookPath LookPathFunc, name string) (string, error) {
	path, err := lookPath(name)
	if err != nil {
		logger.Debug("[DEBUG] LookPath(%s): %v\n", name, err)
		return "", fmt.Errorf("%w: %s", ErrToolchainMissing, name)
	}
	logger.Debug("[DEBUG] Resolved %s to %s\n", name, path)
	return path, nil
}

// InstallDependencies runs the package manager's install command, streaming
// its output. Any failure, interruption included, is returned to the caller
// as fatal.
func InstallDependencies(ctx context.Context, sup *runner.Supervisor, cmd runner.Command) error {
	if err := sup.Run(ctx, cmd); err != nil {
		return fmt.Errorf("dependency installation failed: %w", err)
	}
	return nil
}
