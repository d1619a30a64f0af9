package client

import (
	"github.com/spf13/cobra"

	"github.com/command-line-assistant/clad/internal/daemon"
)

var (
	historyFirst    bool
	historyLast     bool
	historyFilter   string
	historyClear    bool
	historyClearAll bool
	historyFromChat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or clear the assistant's conversation history",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historyFirst, "first", false, "Show the first interaction in a chat")
	historyCmd.Flags().BoolVar(&historyLast, "last", false, "Show the last interaction in a chat")
	historyCmd.Flags().StringVar(&historyFilter, "filter", "", "Show interactions containing this substring")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Clear history for one chat")
	historyCmd.Flags().BoolVar(&historyClearAll, "clear-all", false, "Clear history for all chats")
	historyCmd.Flags().StringVar(&historyFromChat, "from", DefaultChatName, "Chat to operate on")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	bus, err := NewBusClient()
	if err != nil {
		return exitErr(ExitUnavailable, err)
	}
	defer bus.Close()

	userID, err := resolveUserID(bus)
	if err != nil {
		return exitErr(exitCodeFor(err, ExitUnavailable), err)
	}

	render := NewRenderer(plainOutput)

	switch {
	case historyClearAll:
		if err := bus.ClearAllHistory(userID); err != nil {
			return exitErr(exitCodeFor(err, ExitHistoryError), err)
		}
		render.Normal("Cleared all history.")
		return nil
	case historyClear:
		if err := bus.ClearHistory(userID, historyFromChat); err != nil {
			return exitErr(exitCodeFor(err, ExitHistoryError), err)
		}
		render.Normal("Cleared history for chat %s.", historyFromChat)
		return nil
	case historyFirst:
		entries, err := bus.GetFirstConversation(userID, historyFromChat)
		if err != nil {
			return exitErr(exitCodeFor(err, ExitHistoryError), err)
		}
		renderHistory(render, entries)
		return nil
	case historyLast:
		entries, err := bus.GetLastConversation(userID, historyFromChat)
		if err != nil {
			return exitErr(exitCodeFor(err, ExitHistoryError), err)
		}
		renderHistory(render, entries)
		return nil
	case historyFilter != "":
		entries, err := bus.GetFilteredConversation(userID, historyFilter, historyFromChat)
		if err != nil {
			return exitErr(exitCodeFor(err, ExitHistoryError), err)
		}
		renderHistory(render, entries)
		return nil
	default:
		entries, err := bus.GetHistory(userID)
		if err != nil {
			return exitErr(exitCodeFor(err, ExitHistoryError), err)
		}
		renderHistory(render, entries)
		return nil
	}
}

func renderHistory(render *Renderer, entries []daemon.HistoryEntry) {
	for _, e := range entries {
		render.Normal("[%s] %s", e.CreatedAt, e.ChatName)
		render.Normal("> %s", e.Question)
		render.Normal("%s", e.Response)
		render.Normal("")
	}
}
