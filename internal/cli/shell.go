package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive browsion shell",
	Long:  "shell opens a REPL against a running browsion server, letting you run any browsion command without repeating --server/--api-key on every line.",
	RunE:  runShell,
}

// activeProfile is the profile id the REPL prefixes onto "profile"
// subcommands and shows in the prompt, set with "use <profile-id>".
var activeProfile string

func runShell(cmd *cobra.Command, args []string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          shellPrompt(),
		InterruptPrompt: "^C",
		EOFPrompt:       "^D",
	})
	if err != nil {
		return outputError(fmt.Sprintf("start shell: %v", err))
	}
	defer rl.Close()

	for {
		rl.SetPrompt(shellPrompt())
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if handled := handleShellBuiltin(line); handled {
			continue
		}

		runShellLine(line)
	}
}

// handleShellBuiltin intercepts REPL-only commands that aren't browsion
// subcommands: "use", "exit"/"quit".
func handleShellBuiltin(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "exit", "quit":
		fmt.Fprintln(os.Stdout, "bye")
		os.Exit(0)
	case "use":
		if len(fields) != 2 {
			fmt.Fprintln(os.Stderr, "usage: use <profile-id>")
			return true
		}
		activeProfile = fields[1]
		fmt.Fprintf(os.Stdout, "now using profile %s\n", activeProfile)
		return true
	}
	return false
}

// runShellLine executes one line as a full browsion CLI invocation,
// substituting the active profile for a leading "profile <cmd>" call
// that omits the profile id.
func runShellLine(line string) {
	args := strings.Fields(line)
	if len(args) >= 2 && args[0] == "profile" && activeProfile != "" {
		switch args[1] {
		case "show", "rm", "remove", "delete", "launch", "kill", "status":
			if len(args) == 2 {
				args = append(args, activeProfile)
			}
		}
	}

	recognized, err := ExecuteArgs(args)
	if !recognized {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		return
	}
	if err != nil && !IsPrintedError(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func shellPrompt() string {
	useColor := shouldUseShellColor()
	if activeProfile == "" {
		if useColor {
			return color.New(color.FgBlue).Sprint("browsion") + color.New(color.FgWhite, color.Bold).Sprint("> ")
		}
		return "browsion> "
	}
	if useColor {
		return color.New(color.FgBlue).Sprint("browsion") + " [" + color.New(color.FgCyan).Sprint(activeProfile) + "]" + color.New(color.FgWhite, color.Bold).Sprint("> ")
	}
	return fmt.Sprintf("browsion [%s]> ", activeProfile)
}

func shouldUseShellColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return true
}
