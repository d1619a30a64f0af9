package client

import (
	"os"
	"strconv"

	"github.com/command-line-assistant/clad/internal/xdg"
)

// LegalNotice and AlwaysLegalMessage are shown once per parent shell
// process before the first AI-generated response, transcribing
// original_source/commands/chat.py's LEGAL_NOTICE/ALWAYS_LEGAL_MESSAGE.
const (
	LegalNotice = "This feature uses AI technology. Do not include any personal information or " +
		"other sensitive information in your input. Interactions may be used to " +
		"improve the product or service."
	AlwaysLegalMessage = "Always review AI-generated content prior to use."
)

func legalStateFile() string {
	return xdg.StatePath("legal")
}

// showLegalNoticeOnce writes a state file keyed on the parent process id
// and returns true the first time it's called for a given parent
// process, mirroring _handle_legal_message's "print once per shell"
// behavior.
func showLegalNoticeOnce() bool {
	path := legalStateFile()
	parentPID := strconv.Itoa(os.Getppid())

	if contents, err := os.ReadFile(path); err == nil && string(contents) == parentPID {
		return false
	}

	if err := os.MkdirAll(parentDirOf(path), 0755); err != nil {
		return true
	}
	_ = os.WriteFile(path, []byte(parentPID), 0644)
	return true
}

func parentDirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

// displayResponse prints the legal notice (once) followed by the
// response body, matching _display_response's framing rules.
func displayResponse(render *Renderer, response string) {
	if showLegalNoticeOnce() {
		render.Notice(LegalNotice)
	}

	const rule = "────────────────────────────────────────────────────────────────────"
	render.Notice(rule)
	render.Normal("")
	render.Normal(response)
	render.Normal("")
	render.Notice(rule)
	render.Notice(AlwaysLegalMessage)
}
