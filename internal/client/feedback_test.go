package client

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/command-line-assistant/clad/internal/xdg"
)

func TestRunFeedbackWritesMessageToLog(t *testing.T) {
	withStateHome(t)
	feedbackMessage = "the assistant's answer was wrong about systemctl"
	defer func() { feedbackMessage = "" }()

	if err := runFeedback(&cobra.Command{}, nil); err != nil {
		t.Fatalf("runFeedback: %v", err)
	}

	contents, err := os.ReadFile(xdg.StatePath("feedback.log"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(contents), feedbackMessage) {
		t.Errorf("feedback.log = %q, want it to contain %q", contents, feedbackMessage)
	}
}

func TestRunFeedbackRequiresMessage(t *testing.T) {
	withStateHome(t)
	feedbackMessage = ""

	if err := runFeedback(&cobra.Command{}, nil); err == nil {
		t.Fatal("expected an error when no feedback text is provided")
	}
}
