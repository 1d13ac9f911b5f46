// CLAUDE:SUMMARY Xvfb virtual display lifecycle for headful mode, with socket-based readiness.
package browser

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const x11SocketDir = "/tmp/.X11-unix"

// startXvfb launches a virtual display for headful mode and waits until
// the display accepts clients.
func (m *Manager) startXvfb() error {
	if m.xvfb != nil {
		return nil
	}

	bin, err := exec.LookPath("Xvfb")
	if err != nil {
		return fmt.Errorf("xvfb not installed: %w", err)
	}

	display := m.cfg.XvfbDisplay
	cmd := exec.Command(bin, display, "-screen", "0", "1920x1080x24", "-nolisten", "tcp")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start xvfb: %w", err)
	}
	m.xvfb = cmd

	if err := waitForDisplay(x11SocketDir, display, 5*time.Second); err != nil {
		m.stopXvfb()
		return err
	}

	m.cfg.Logger.Info("browser: xvfb ready", "display", display, "pid", cmd.Process.Pid)
	return nil
}

// waitForDisplay polls for the X socket. Xvfb creates <dir>/X<n> once
// display :<n> accepts connections, so this replaces a blind sleep.
func waitForDisplay(dir, display string, timeout time.Duration) error {
	sock := filepath.Join(dir, "X"+strings.TrimPrefix(display, ":"))
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(sock); err == nil {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("xvfb display %s not ready after %s", display, timeout)
}

// stopXvfb kills the Xvfb process if running.
func (m *Manager) stopXvfb() {
	if m.xvfb == nil {
		return
	}
	if m.xvfb.Process != nil {
		m.xvfb.Process.Kill()
		m.xvfb.Wait()
	}
	m.cfg.Logger.Info("browser: xvfb stopped")
	m.xvfb = nil
}
