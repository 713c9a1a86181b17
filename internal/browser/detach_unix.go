//go:build !windows

package browser

import (
	"os/exec"
	"syscall"
)

// detachProcess puts the child in its own session via setsid, so it is
// not killed when the launching process's controlling terminal closes.
// Grounded on the original browsion product's process/launcher.rs, which
// does this with libc::setsid() via Command::pre_exec; webctl never
// detaches its own browser child at all.
func detachProcess(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
}
