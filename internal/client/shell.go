package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/command-line-assistant/clad/internal/capture"
)

// bashInteractiveSnippet binds Ctrl+G to launch the interactive chat
// client, transcribing original_source/integrations.py's
// BASH_INTERACTIVE.
const bashInteractiveSnippet = `# Command Line Assistant Interactive Mode Integration
__c_interactive() {
    local old_tty=$(stty -g)
    local c_binary=/usr/bin/c

    cleanup() {
        stty "$old_tty"
    }
    trap cleanup EXIT

    stty sane
    stty echo
    stty icanon

    if command -v $c_binary >/dev/null 2>&1; then
        $c_binary chat --interactive
    else
        echo "Error: Command Line Assistant is not installed"
        return 1
    fi

    cleanup
}
bind -x '"\C-g": __c_interactive'
`

var (
	shellEnableCapture      bool
	shellEnableInteractive  bool
	shellDisableInteractive bool
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Manage shell integrations",
	RunE:  runShell,
}

func init() {
	shellCmd.Flags().BoolVar(&shellEnableCapture, "enable-capture", false, "Capture terminal output for the current session")
	shellCmd.Flags().BoolVar(&shellEnableInteractive, "enable-interactive", false, "Enable the interactive-mode key binding")
	shellCmd.Flags().BoolVar(&shellDisableInteractive, "disable-interactive", false, "Disable the interactive-mode key binding")
	rootCmd.AddCommand(shellCmd)
}

func bashRCDPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".bashrc.d")
}

func interactiveIntegrationFile() string {
	return filepath.Join(bashRCDPath(), "cla-interactive.bashrc")
}

func runShell(cmd *cobra.Command, args []string) error {
	render := NewRenderer(plainOutput)

	switch {
	case shellEnableInteractive:
		return writeBashFunctions(render, interactiveIntegrationFile(), bashInteractiveSnippet)
	case shellDisableInteractive:
		return removeBashFunctions(render, interactiveIntegrationFile())
	case shellEnableCapture:
		return enableCapture(render)
	default:
		render.Warning("No operation specified. Use --help to see available options.")
		return exitErr(ExitShellError, fmt.Errorf("no shell operation specified"))
	}
}

func writeBashFunctions(render *Renderer, path, contents string) error {
	if err := os.MkdirAll(bashRCDPath(), 0755); err != nil {
		return exitErr(ExitShellError, err)
	}

	if _, err := os.Stat(path); err == nil {
		render.Warning("The integration is already present and enabled at %s! "+
			"Restart your terminal or source ~/.bashrc in case it's not working.", path)
		return nil
	}

	if !bashrcLoadsRCD() {
		render.Warning("In order to use shell integration, ensure your ~/.bashrc file loads files from ~/.bashrc.d. See /etc/skel/.bashrc for an example.")
	}

	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		return exitErr(ExitShellError, err)
	}
	render.Success("Integration successfully added at %s. In order to use it, please restart your terminal or source ~/.bashrc", path)
	return nil
}

func removeBashFunctions(render *Renderer, path string) error {
	if _, err := os.Stat(path); err != nil {
		render.Warning("It seems that the integration is not enabled. Skipping operation.")
		return nil
	}
	if err := os.Remove(path); err != nil {
		return exitErr(ExitShellError, err)
	}
	render.Success("Integration disabled successfully.")
	return nil
}

func bashrcLoadsRCD() bool {
	home, _ := os.UserHomeDir()
	for _, name := range []string{".bashrc", ".bash_profile", ".profile"} {
		contents, err := os.ReadFile(filepath.Join(home, name))
		if err != nil {
			continue
		}
		if strings.Contains(string(contents), ".bashrc.d") {
			return true
		}
	}
	return false
}

func enableCapture(render *Renderer) error {
	render.Success("Starting terminal reader. Press Ctrl + D to stop the capturing.")
	render.Success("Terminal capture log is being written to %s", capture.LogFilePath())

	if err := os.MkdirAll(bashRCDPath(), 0755); err != nil {
		return exitErr(ExitShellError, err)
	}

	if err := capture.StartCapture(); err != nil {
		return exitErr(ExitShellError, err)
	}
	return nil
}
