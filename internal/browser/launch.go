package browser

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// LaunchOptions configures browser launch behavior.
type LaunchOptions struct {
	// Headless runs the browser without a visible window.
	Headless bool

	// Port for CDP remote debugging. If 0, uses default 9222.
	Port int

	// UserDataDir specifies the browser profile directory.
	// Special values:
	//   - Empty string: create a temporary directory (default)
	//   - "default": use the user's default Chrome profile
	//   - Any path: use that directory
	UserDataDir string

	// ProxyServer, if set, is passed as --proxy-server.
	ProxyServer string

	// Lang sets --lang (BCP-47 locale), e.g. "en-US".
	Lang string

	// Timezone, if set, is passed as --timezone and also exported as the
	// TZ environment variable for the child process.
	Timezone string

	// Fingerprint, if set, is passed as --fingerprint.
	Fingerprint string

	// CustomArgs are appended verbatim after the standard flag set.
	CustomArgs []string
}

// DefaultPort is the default CDP debugging port.
const DefaultPort = 9222

// UserDataDirDefault is the special value that means "use the user's Chrome profile".
const UserDataDirDefault = "default"

// buildArgs constructs the Chrome command line arguments.
// See DR-005 for rationale behind each flag.
func buildArgs(opts LaunchOptions) []string {
	port := opts.Port
	if port == 0 {
		port = DefaultPort
	}

	args := []string{
		// Required for CDP connection
		fmt.Sprintf("--remote-debugging-port=%d", port),
	}

	// Handle user data directory:
	// - Empty or "default": no flag (use user's Chrome profile)
	// - Any path: use that directory
	if opts.UserDataDir != "" && opts.UserDataDir != UserDataDirDefault {
		args = append(args, fmt.Sprintf("--user-data-dir=%s", opts.UserDataDir))
	}

	if opts.Fingerprint != "" {
		args = append(args, fmt.Sprintf("--fingerprint=%s", opts.Fingerprint))
	}
	if opts.ProxyServer != "" {
		args = append(args, fmt.Sprintf("--proxy-server=%s", opts.ProxyServer))
	}
	lang := opts.Lang
	if lang == "" {
		lang = "en-US"
	}
	args = append(args, fmt.Sprintf("--lang=%s", lang))
	if opts.Timezone != "" {
		args = append(args, fmt.Sprintf("--timezone=%s", opts.Timezone))
	}

	args = append(args,
		// Prevent first-run dialogs
		"--no-first-run",
		"--no-default-browser-check",

		// Reduce background network noise
		"--disable-background-networking",
		"--disable-sync",
		"--disable-default-apps",
		"--metrics-recording-only",

		// Prevent throttling that breaks CDP responsiveness
		"--disable-background-timer-throttling",
		"--disable-backgrounding-occluded-windows",
		"--disable-renderer-backgrounding",
		"--disable-hang-monitor",
		"--disable-ipc-flooding-protection",

		// Disable monitoring/crash reporting/automation fingerprinting
		"--disable-breakpad",
		"--disable-crash-reporter",
		"--disable-client-side-phishing-detection",
		"--disable-in-process-stack-traces",
		"--disable-blink-features=AutomationControlled",

		// Prevent blocking dialogs
		"--disable-prompt-on-repost",

		// Container/CI compatibility
		"--disable-dev-shm-usage",

		// Consistent screenshot colours
		"--force-color-profile=srgb",
	)

	// Allow popups in headed mode for debugging; block in headless (invisible anyway)
	if !opts.Headless {
		args = append(args, "--disable-popup-blocking")
	}

	// Platform-specific flags to avoid system dialogs
	switch runtime.GOOS {
	case "darwin":
		args = append(args, "--use-mock-keychain")
	case "linux":
		args = append(args, "--password-store=basic")
	}

	if opts.Headless {
		args = append(args, "--headless")
	}

	args = append(args, opts.CustomArgs...)

	// Open about:blank to avoid any default page loading
	args = append(args, "about:blank")

	return args
}

// createTempDataDir creates a temporary directory for browser profile data.
func createTempDataDir() (string, error) {
	return os.MkdirTemp("", "browsion-chrome-*")
}

// spawnProcess starts the browser process with the given binary and options.
// It does not wait for the process to exit.
// Returns the command, the data directory (empty if using default profile), and any error.
func spawnProcess(binPath string, opts LaunchOptions) (*exec.Cmd, string, error) {
	var dataDir string
	var createdTempDir bool

	switch opts.UserDataDir {
	case "":
		// Empty: create a temporary directory
		var err error
		dataDir, err = createTempDataDir()
		if err != nil {
			return nil, "", fmt.Errorf("create temp dir: %w", err)
		}
		opts.UserDataDir = dataDir
		createdTempDir = true
	case UserDataDirDefault:
		// "default": use user's Chrome profile, no temp dir
		dataDir = ""
	default:
		// Custom path: use as-is
		dataDir = opts.UserDataDir
	}

	args := buildArgs(opts)
	cmd := exec.Command(binPath, args...)

	// Detach from controlling terminal
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if opts.Timezone != "" {
		cmd.Env = append(os.Environ(), "TZ="+opts.Timezone)
	}

	// Detach into its own session so the browser outlives the launching
	// process's process group (e.g. a terminal the CLI was run from).
	detachProcess(cmd)

	if err := cmd.Start(); err != nil {
		// Clean up temp dir on failure
		if createdTempDir && dataDir != "" {
			_ = os.RemoveAll(dataDir)
		}
		return nil, "", fmt.Errorf("start browser: %w", err)
	}

	return cmd, dataDir, nil
}
