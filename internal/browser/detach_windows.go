//go:build windows

package browser

import "os/exec"

// detachProcess is a no-op on Windows; setsid has no analogue and the
// browser process is left attached to the default job object.
func detachProcess(cmd *exec.Cmd) {}
