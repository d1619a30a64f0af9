package client

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/command-line-assistant/clad/internal/xdg"
)

var feedbackMessage string

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Submit feedback about the assistant's responses",
	RunE:  runFeedback,
}

func init() {
	feedbackCmd.Flags().StringVarP(&feedbackMessage, "message", "m", "", "Feedback text")
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedback(cmd *cobra.Command, args []string) error {
	render := NewRenderer(plainOutput)

	render.Notice("Do not include any personal information or other sensitive information " +
		"in your feedback. Feedback may be used to improve the product or service.")

	message := strings.TrimSpace(strings.Join(append([]string{feedbackMessage}, args...), " "))
	if message == "" {
		render.Warning("No feedback text provided. Use -m/--message \"your feedback\".")
		return exitErr(ExitFeedbackError, fmt.Errorf("no feedback text provided"))
	}

	path := xdg.StatePath("feedback.log")
	if err := os.MkdirAll(parentDirOf(path), 0755); err != nil {
		return exitErr(ExitFeedbackError, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return exitErr(ExitFeedbackError, err)
	}
	defer f.Close()

	entry := fmt.Sprintf("[%s] %s\n", time.Now().Format(time.RFC3339), message)
	if _, err := f.WriteString(entry); err != nil {
		return exitErr(ExitFeedbackError, err)
	}

	render.Success("Feedback recorded at %s. Thank you.", path)
	return nil
}
