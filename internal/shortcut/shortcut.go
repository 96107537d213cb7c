// Package shortcut creates the Windows desktop shortcut that starts the launcher.
package shortcut

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"website-launcher/internal/logger"
)

// Options describes the shortcut to create.
type Options struct {
	// Name is the shortcut file name without the .lnk extension.
	Name        string
	Target      string
	WorkingDir  string
	Description string
	// Icon is optional; an empty Icon keeps the target's own icon.
	Icon string
	// DesktopDir is used when Windows does not report a desktop folder.
	// The folder Windows reports wins because it follows OneDrive and other
	// redirections.
	DesktopDir string
}

// Maker creates or refreshes a shortcut and returns its path.
type Maker interface {
	Create(ctx context.Context, opts Options) (string, error)
}

// RunFunc executes a command and returns its combined output.
type RunFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// PowerShell creates shortcuts through the WScript.Shell COM object.
type PowerShell struct {
	Exe string
	Run RunFunc
}

// NewPowerShell returns a Maker that runs powershell.exe.
func NewPowerShell() *PowerShell {
	return &PowerShell{Exe: "powershell", Run: combinedOutput}
}

func combinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Create writes the shortcut, overwriting any previous one with the same name.
func (p *PowerShell) Create(ctx context.Context, opts Options) (string, error) {
	if opts.Name == "" || opts.Target == "" {
		return "", errors.New("shortcut needs a name and a target")
	}
	script := Script(opts)
	logger.Debug("[DEBUG] Shortcut script:\n%s\n", script)

	output, err := p.Run(ctx, p.Exe, "-NoProfile", "-NonInteractive", "-ExecutionPolicy", "Bypass", "-Command", script)
	if err != nil {
		return "", fmt.Errorf("powershell failed: %w\nOutput: %s", err, strings.TrimSpace(string(output)))
	}

	path := lastLine(string(output))
	if path == "" {
		return "", errors.New("powershell did not report the shortcut path")
	}
	return path, nil
}

// Script builds the PowerShell program that saves the shortcut and prints its path.
func Script(opts Options) string {
	var b strings.Builder

	b.WriteString("$desktop = [Environment]::GetFolderPath('Desktop')\n")
	if opts.DesktopDir != "" {
		fmt.Fprintf(&b, "if (-not $desktop) { $desktop = %s }\n", quote(opts.DesktopDir))
	}
	// A missing folder makes Save() fail with a COM error that names nothing.
	b.WriteString("New-Item -ItemType Directory -Force -Path $desktop | Out-Null\n")
	fmt.Fprintf(&b, "$path = Join-Path $desktop %s\n", quote(opts.Name+".lnk"))
	b.WriteString("$shell = New-Object -ComObject WScript.Shell\n")
	b.WriteString("$link = $shell.CreateShortcut($path)\n")
	fmt.Fprintf(&b, "$link.TargetPath = %s\n", quote(opts.Target))
	workDir := opts.WorkingDir
	if workDir == "" {
		workDir = filepath.Dir(opts.Target)
	}
	fmt.Fprintf(&b, "$link.WorkingDirectory = %s\n", quote(workDir))
	if opts.Description != "" {
		fmt.Fprintf(&b, "$link.Description = %s\n", quote(opts.Description))
	}
	if opts.Icon != "" {
		fmt.Fprintf(&b, "$link.IconLocation = %s\n", quote(opts.Icon+",0"))
	}
	b.WriteString("$link.Save()\n")
	b.WriteString("Write-Output $path\n")
	return b.String()
}

// quote returns s as a single-quoted PowerShell literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// Result is the outcome of a best-effort shortcut refresh.
type Result struct {
	Path string
	Err  error
}

// OK reports whether the shortcut was written.
func (r Result) OK() bool { return r.Err == nil }

// Ensure creates the shortcut and reports the outcome. It never fails the
// caller: a shortcut is a convenience, so errors are only returned in Result.
func Ensure(ctx context.Context, maker Maker, opts Options) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("shortcut creation panicked: %v", r)}
		}
	}()

	path, err := maker.Create(ctx, opts)
	if err != nil {
		return Result{Err: err}
	}
	return Result{Path: path}
}
