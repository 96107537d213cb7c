package setup

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"website-launcher/internal/logger"
)

// EnvResult tells what EnsureEnvFile did.
type EnvResult int

const (
	// EnvExists means the file was already there and was left untouched.
	EnvExists EnvResult = iota
	// EnvCreated means the file was copied from the template.
	EnvCreated
	// EnvTemplateMissing means neither file exists; nothing was written.
	EnvTemplateMissing
)

func (r EnvResult) String() string {
	switch r {
	case EnvExists:
		return "exists"
	case EnvCreated:
		return "created"
	case EnvTemplateMissing:
		return "template missing"
	}
	return fmt.Sprintf("EnvResult(%d)", int(r))
}

// EnsureEnvFile creates envPath from templatePath when envPath is absent.
// An existing envPath is never modified, and a missing template is not an error.
func EnsureEnvFile(envPath, templatePath string) (EnvResult, error) {
	if _, err := os.Lstat(envPath); err == nil {
		logger.Debug("[DEBUG] %s already exists. Skipping.\n", envPath)
		return EnvExists, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return EnvExists, fmt.Errorf("stat %s: %w", envPath, err)
	}

	if _, err := os.Stat(templatePath); errors.Is(err, os.ErrNotExist) {
		return EnvTemplateMissing, nil
	} else if err != nil {
		return EnvTemplateMissing, fmt.Errorf("stat %s: %w", templatePath, err)
	}

	if err := copyFile(templatePath, envPath); err != nil {
		if errors.Is(err, os.ErrExist) {
			// Someone created it between the check and the copy; theirs wins.
			return EnvExists, nil
		}
		return EnvTemplateMissing, err
	}
	return EnvCreated, nil
}

// copyFile copies src to dst byte for byte, preserving the source mode.
// dst is created exclusively, so an existing file is never truncated;
// a partially written dst is removed on failure.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source failed: %w", err)
	}
	defer in.Close()

	stat, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, stat.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create target failed: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close target failed: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}
	return nil
}
