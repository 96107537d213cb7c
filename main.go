package main

import (
	"website-launcher/cmd"
)

// main delegates to cmd.Execute.
//
// website-launcher prepares a checkout of the Website Builder and starts it:
//   - verifies that npm is on PATH
//   - runs `npm install`, streaming its output
//   - creates .env from .env.example once, never overwriting user edits
//   - on Windows, refreshes a desktop shortcut pointing at this launcher
//   - starts the desktop app where a graphical session is available, falling
//     back to the browser-based development server, and opens the browser
//
// Ctrl+C stops the running child gracefully, killing it only if it does not
// exit within the shutdown grace period.
func main() {
	cmd.Execute()
}
